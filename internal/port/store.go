package port

import (
	"context"
	"time"

	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/domain"
)

// EventStore is the append-only activity log. Events are written once and
// never mutated by this core.
type EventStore interface {
	// InsertEvent appends a new event and returns it with id and timestamps
	// filled in. Every accepted call is an unconditional append: no dedup.
	InsertEvent(ctx context.Context, e *domain.KnowledgeEvent) (*domain.KnowledgeEvent, error)

	// GetEventByID returns an event, or ErrEventNotFound.
	GetEventByID(ctx context.Context, id string) (*domain.KnowledgeEvent, error)

	// ListEventsSince returns a user's events with timestamp >= since,
	// oldest first.
	ListEventsSince(ctx context.Context, userID string, since time.Time) ([]domain.KnowledgeEvent, error)

	// ListUserIDsWithEvents returns the ids of all users with at least one event.
	ListUserIDsWithEvents(ctx context.Context) ([]string, error)
}

// VectorIndex is the embedding side of the store: which events still need
// vectors, upserting vectors, and nearest-neighbor lookup.
type VectorIndex interface {
	// ListUnembedded returns up to limit events that have no embedding row,
	// newest first. Under sustained backlog this prioritizes making recent
	// activity searchable over clearing historical debt.
	ListUnembedded(ctx context.Context, limit int) ([]domain.KnowledgeEvent, error)

	// UpsertEmbedding inserts or overwrites the vector for an event.
	UpsertEmbedding(ctx context.Context, eventID string, vector []float32) error

	// SearchNearest returns up to k events of the same user nearest to the
	// anchor event's vector, ascending by distance, excluding the anchor.
	// Returns an empty slice when the anchor has no embedding yet.
	SearchNearest(ctx context.Context, userID, anchorEventID string, k int) ([]domain.Neighbor, error)

	// CountEmbeddings returns the total number of stored vectors.
	CountEmbeddings(ctx context.Context) (int, error)
}

// InsightStore persists generated insights and serves the active-insight
// read path. The generator only inserts; seen/dismiss/mute come from
// user-facing actions.
type InsightStore interface {
	// InsertInsight stores a new insight and returns it with id filled in.
	InsertInsight(ctx context.Context, i *domain.Insight) (*domain.Insight, error)

	// HasRecentInsight reports whether a non-dismissed insight with the same
	// (user, scope, pattern) was created at or after since. This is the
	// soft dedup guard: a plain read, not a transactional check.
	HasRecentInsight(ctx context.Context, userID, scope, pattern string, since time.Time) (bool, error)

	// ListActiveInsights returns non-dismissed, non-muted insights ordered
	// by confidence then recency, up to limit.
	ListActiveInsights(ctx context.Context, userID string, limit int) ([]domain.Insight, error)

	// MarkSeen sets seen_at if not already set.
	MarkSeen(ctx context.Context, id string) error

	// Dismiss sets dismissed_at.
	Dismiss(ctx context.Context, id string) error

	// Mute sets the muted flag.
	Mute(ctx context.Context, id string) error
}
