package domain

import "time"

// KnowledgeEvent is an immutable, append-only record of a user activity
// worth remembering. Rows are written once by the capture sink and never
// updated or deleted; duplicate rows for the same (user, source, timestamp)
// are expected and must be tolerated by all readers.
type KnowledgeEvent struct {
	ID          string         `json:"id"           db:"id"`
	UserID      string         `json:"user_id"      db:"user_id"`
	Source      string         `json:"source"       db:"source"` // "feature.action", e.g. "journal.entry"
	EventType   string         `json:"event_type"   db:"event_type"`
	Content     string         `json:"content"      db:"content"`
	Timestamp   time.Time      `json:"timestamp"    db:"timestamp"`
	ProjectID   *string        `json:"project_id,omitempty" db:"project_id"`
	Mood        *string        `json:"mood,omitempty"       db:"mood"`
	Sentiment   *string        `json:"sentiment,omitempty"  db:"sentiment"` // reserved for future enrichment
	Intensity   *float64       `json:"intensity,omitempty"  db:"intensity"` // reserved for future enrichment
	Tags        []string       `json:"tags"         db:"tags"`
	RawMetadata map[string]any `json:"raw_metadata" db:"raw_metadata"`
	CreatedAt   time.Time      `json:"created_at"   db:"created_at"`
}

// EventType constants.
const (
	EventTypeCreate = "create"
	EventTypeUpdate = "update"
	EventTypeUpsert = "upsert"
	EventTypeDelete = "delete"
	EventTypeLog    = "log"
)

// ValidEventType reports whether t is one of the recognized event types.
func ValidEventType(t string) bool {
	switch t {
	case EventTypeCreate, EventTypeUpdate, EventTypeUpsert, EventTypeDelete, EventTypeLog:
		return true
	}
	return false
}
