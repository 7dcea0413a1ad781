package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/domain"
	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/port"
)

// CaptureService is the single entry point every feature uses to feed the
// knowledge log. It is a best-effort sink: Record cannot fail from the
// caller's perspective. The log is a side channel and must never block or
// break the feature operation that triggered it, so validation rejections
// are silent no-ops and storage errors are logged and swallowed.
type CaptureService struct {
	events port.EventStore
}

// NewCaptureService creates a new capture sink.
func NewCaptureService(events port.EventStore) *CaptureService {
	return &CaptureService{events: events}
}

// RecordRequest carries one activity worth remembering.
type RecordRequest struct {
	UserID      string
	Source      string // "feature.action", e.g. "journal.entry"
	EventType   string
	Content     string
	Timestamp   *time.Time // nil = capture time; callers may backdate
	ProjectID   *string
	Mood        *string
	Tags        []string
	RawMetadata map[string]any
}

// Record appends one knowledge event. It never returns an error: invalid
// input is dropped silently, and storage failures only show up in logs.
func (s *CaptureService) Record(ctx context.Context, req RecordRequest) {
	content := strings.TrimSpace(req.Content)
	if req.UserID == "" || req.Source == "" || content == "" {
		return
	}
	if !domain.ValidEventType(req.EventType) {
		slog.Debug("capture dropped: bad event type", "source", req.Source, "event_type", req.EventType)
		return
	}

	event := &domain.KnowledgeEvent{
		UserID:      req.UserID,
		Source:      req.Source,
		EventType:   req.EventType,
		Content:     content,
		ProjectID:   req.ProjectID,
		Mood:        req.Mood,
		Tags:        req.Tags,
		RawMetadata: req.RawMetadata,
	}
	if req.Timestamp != nil {
		event.Timestamp = *req.Timestamp
	}

	if _, err := s.events.InsertEvent(ctx, event); err != nil {
		slog.Error("capture failed", "user_id", req.UserID, "source", req.Source, "error", err)
	}
}
