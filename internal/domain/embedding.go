package domain

import "time"

// EventEmbedding is the vector representation of one KnowledgeEvent's
// content, stored in pgvector. At most one row exists per event; the
// pipeline upserts, so re-runs after a partial failure never duplicate.
type EventEmbedding struct {
	EventID   string    `json:"event_id"   db:"event_id"`
	Vector    []float32 `json:"-"          db:"vector"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Neighbor is returned by semantic retrieval: an event belonging to the
// same user as the anchor, with its cosine distance to the anchor.
type Neighbor struct {
	KnowledgeEvent
	Distance float64 `json:"distance"`
}
