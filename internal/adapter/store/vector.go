package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/domain"
)

// VectorStore handles pgvector-specific operations for event embeddings.
type VectorStore struct {
	store     *PostgresStore
	dimension int
}

// NewVectorStore creates a vector store backed by the given Postgres store.
func NewVectorStore(store *PostgresStore, dimension int) *VectorStore {
	return &VectorStore{store: store, dimension: dimension}
}

// Dimension returns the vector column size fixed at provisioning time.
func (v *VectorStore) Dimension() int {
	return v.dimension
}

// ListUnembedded returns up to limit events without an embedding row,
// newest first. The recency bias is deliberate: under backlog, recent
// activity becomes searchable before historical debt is cleared.
func (v *VectorStore) ListUnembedded(ctx context.Context, limit int) ([]domain.KnowledgeEvent, error) {
	query := `SELECT e.id, e.user_id, e.source, e.event_type, e.content, e.timestamp,
	                 e.project_id, e.mood, e.sentiment, e.intensity, e.tags, e.raw_metadata, e.created_at
	          FROM knowledge_events e
	          LEFT JOIN event_embeddings emb ON emb.event_id = e.id
	          WHERE emb.event_id IS NULL
	          ORDER BY e.timestamp DESC
	          LIMIT $1`

	rows, err := v.store.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list unembedded: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// UpsertEmbedding inserts or overwrites the vector for an event, so the
// pipeline is safe to re-run after a partial failure.
func (v *VectorStore) UpsertEmbedding(ctx context.Context, eventID string, vector []float32) error {
	query := `INSERT INTO event_embeddings (event_id, vector)
	          VALUES ($1, $2::vector)
	          ON CONFLICT (event_id) DO UPDATE SET
	              vector = EXCLUDED.vector,
	              created_at = now()`

	if _, err := v.store.db.ExecContext(ctx, query, eventID, vectorToString(vector)); err != nil {
		return fmt.Errorf("upsert embedding: %w", err)
	}
	return nil
}

// SearchNearest returns up to k events of the same user nearest to the
// anchor's vector, ascending by cosine distance, excluding the anchor.
// The user filter is applied to both the anchor and every candidate, so a
// cross-user result is structurally impossible. An anchor without an
// embedding yields zero rows.
func (v *VectorStore) SearchNearest(ctx context.Context, userID, anchorEventID string, k int) ([]domain.Neighbor, error) {
	query := `SELECT e.id, e.user_id, e.source, e.event_type, e.content, e.timestamp,
	                 e.project_id, e.mood, e.sentiment, e.intensity, e.tags, e.raw_metadata, e.created_at,
	                 (emb.vector <=> anchor.vector) AS distance
	          FROM event_embeddings anchor
	          JOIN knowledge_events ae ON ae.id = anchor.event_id AND ae.user_id = $2
	          JOIN event_embeddings emb ON emb.event_id <> anchor.event_id
	          JOIN knowledge_events e ON e.id = emb.event_id AND e.user_id = $2
	          WHERE anchor.event_id = $1
	          ORDER BY emb.vector <=> anchor.vector
	          LIMIT $3`

	rows, err := v.store.db.QueryContext(ctx, query, anchorEventID, userID, k)
	if err != nil {
		return nil, fmt.Errorf("search nearest: %w", err)
	}
	defer rows.Close()

	var results []domain.Neighbor
	for rows.Next() {
		var n domain.Neighbor
		var metadata []byte
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Source, &n.EventType, &n.Content, &n.Timestamp,
			&n.ProjectID, &n.Mood, &n.Sentiment, &n.Intensity,
			pq.Array(&n.Tags), &metadata, &n.CreatedAt, &n.Distance,
		); err != nil {
			return nil, fmt.Errorf("scan neighbor: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &n.RawMetadata); err != nil {
				return nil, fmt.Errorf("unmarshal raw_metadata: %w", err)
			}
		}
		results = append(results, n)
	}
	return results, rows.Err()
}

// CountEmbeddings returns the total number of stored vectors.
func (v *VectorStore) CountEmbeddings(ctx context.Context) (int, error) {
	var n int
	if err := v.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM event_embeddings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count embeddings: %w", err)
	}
	return n, nil
}

// vectorToString converts a float32 slice to pgvector string format: [0.1,0.2,0.3].
func vectorToString(v []float32) string {
	parts := make([]string, len(v))
	for i, val := range v {
		parts[i] = fmt.Sprintf("%g", val)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
