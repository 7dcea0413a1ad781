package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/domain"
	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/port"
)

// PostgresStore handles all relational database operations.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and returns a store instance.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

const eventColumns = `id, user_id, source, event_type, content, timestamp,
	project_id, mood, sentiment, intensity, tags, raw_metadata, created_at`

// --- Events ---

// InsertEvent appends a new knowledge event. Every accepted call is an
// unconditional append: there is no natural key and no dedup.
func (s *PostgresStore) InsertEvent(ctx context.Context, e *domain.KnowledgeEvent) (*domain.KnowledgeEvent, error) {
	metadata, err := json.Marshal(orEmptyMap(e.RawMetadata))
	if err != nil {
		return nil, fmt.Errorf("marshal raw_metadata: %w", err)
	}

	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	query := `INSERT INTO knowledge_events
	          (user_id, source, event_type, content, timestamp, project_id, mood, tags, raw_metadata)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb)
	          RETURNING ` + eventColumns

	row := s.db.QueryRowContext(ctx, query,
		e.UserID, e.Source, e.EventType, e.Content, ts,
		e.ProjectID, e.Mood, pq.Array(orEmptySlice(e.Tags)), metadata,
	)

	return scanEvent(row)
}

// GetEventByID retrieves an event by ID.
func (s *PostgresStore) GetEventByID(ctx context.Context, id string) (*domain.KnowledgeEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM knowledge_events WHERE id = $1`

	e, err := scanEvent(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrEventNotFound
	}
	return e, err
}

// ListEventsSince returns a user's events with timestamp >= since, oldest first.
func (s *PostgresStore) ListEventsSince(ctx context.Context, userID string, since time.Time) ([]domain.KnowledgeEvent, error) {
	query := `SELECT ` + eventColumns + `
	          FROM knowledge_events
	          WHERE user_id = $1 AND timestamp >= $2
	          ORDER BY timestamp ASC`

	rows, err := s.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListUserIDsWithEvents returns all users that have at least one event.
func (s *PostgresStore) ListUserIDsWithEvents(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM knowledge_events`)
	if err != nil {
		return nil, fmt.Errorf("list users with events: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- Insights ---

const insightColumns = `id, user_id, scope, title, body, sources, confidence,
	created_at, seen_at, dismissed_at, muted, meta`

// InsertInsight stores a new insight.
func (s *PostgresStore) InsertInsight(ctx context.Context, i *domain.Insight) (*domain.Insight, error) {
	meta, err := json.Marshal(orEmptyMap(i.Meta))
	if err != nil {
		return nil, fmt.Errorf("marshal meta: %w", err)
	}

	query := `INSERT INTO insights (user_id, scope, title, body, sources, confidence, meta)
	          VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
	          RETURNING ` + insightColumns

	row := s.db.QueryRowContext(ctx, query,
		i.UserID, i.Scope, i.Title, i.Body, pq.Array(orEmptySlice(i.Sources)), i.Confidence, meta,
	)

	return scanInsight(row)
}

// HasRecentInsight reports whether a non-dismissed insight with the same
// (user, scope, pattern) exists at or after since. Plain read: concurrent
// generator runs can both pass this check, which is accepted.
func (s *PostgresStore) HasRecentInsight(ctx context.Context, userID, scope, pattern string, since time.Time) (bool, error) {
	query := `SELECT EXISTS (
	            SELECT 1 FROM insights
	            WHERE user_id = $1 AND scope = $2 AND meta->>'pattern' = $3
	              AND dismissed_at IS NULL
	              AND created_at >= $4
	          )`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, userID, scope, pattern, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("check recent insight: %w", err)
	}
	return exists, nil
}

// ListActiveInsights returns non-dismissed, non-muted insights for a user,
// ordered by confidence then recency. This ordering is a contract with the
// UI's "recent insights" surface.
func (s *PostgresStore) ListActiveInsights(ctx context.Context, userID string, limit int) ([]domain.Insight, error) {
	query := `SELECT ` + insightColumns + `
	          FROM insights
	          WHERE user_id = $1 AND dismissed_at IS NULL AND muted = false
	          ORDER BY confidence DESC, created_at DESC
	          LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list active insights: %w", err)
	}
	defer rows.Close()

	var insights []domain.Insight
	for rows.Next() {
		i, err := scanInsight(rows)
		if err != nil {
			return nil, err
		}
		insights = append(insights, *i)
	}
	return insights, rows.Err()
}

// MarkSeen sets seen_at once; later calls keep the first timestamp.
func (s *PostgresStore) MarkSeen(ctx context.Context, id string) error {
	return s.updateInsight(ctx, id, `UPDATE insights SET seen_at = COALESCE(seen_at, now()) WHERE id = $1`)
}

// Dismiss sets dismissed_at.
func (s *PostgresStore) Dismiss(ctx context.Context, id string) error {
	return s.updateInsight(ctx, id, `UPDATE insights SET dismissed_at = now() WHERE id = $1`)
}

// Mute sets the muted flag.
func (s *PostgresStore) Mute(ctx context.Context, id string) error {
	return s.updateInsight(ctx, id, `UPDATE insights SET muted = true WHERE id = $1`)
}

func (s *PostgresStore) updateInsight(ctx context.Context, id, query string) error {
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("update insight: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return port.ErrInsightNotFound
	}
	return nil
}

// --- scanning helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.KnowledgeEvent, error) {
	var e domain.KnowledgeEvent
	var metadata []byte

	err := row.Scan(
		&e.ID, &e.UserID, &e.Source, &e.EventType, &e.Content, &e.Timestamp,
		&e.ProjectID, &e.Mood, &e.Sentiment, &e.Intensity,
		pq.Array(&e.Tags), &metadata, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &e.RawMetadata); err != nil {
			return nil, fmt.Errorf("unmarshal raw_metadata: %w", err)
		}
	}
	return &e, nil
}

func collectEvents(rows *sql.Rows) ([]domain.KnowledgeEvent, error) {
	var events []domain.KnowledgeEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func scanInsight(row rowScanner) (*domain.Insight, error) {
	var i domain.Insight
	var meta []byte

	err := row.Scan(
		&i.ID, &i.UserID, &i.Scope, &i.Title, &i.Body, pq.Array(&i.Sources),
		&i.Confidence, &i.CreatedAt, &i.SeenAt, &i.DismissedAt, &i.Muted, &meta,
	)
	if err != nil {
		return nil, fmt.Errorf("scan insight: %w", err)
	}

	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &i.Meta); err != nil {
			return nil, fmt.Errorf("unmarshal meta: %w", err)
		}
	}
	return &i, nil
}

func orEmptyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func orEmptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
