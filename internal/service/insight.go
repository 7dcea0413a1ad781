package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/domain"
	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/port"
)

const (
	// insightWindowDays is the trailing window of events each run scans.
	insightWindowDays = 30

	// insightMinEvents is the per-user floor below which no detectors run.
	// Too few events means low-confidence noise.
	insightMinEvents = 5

	// insightDedupDays is the cooldown during which an already-surfaced
	// pattern is not re-notified.
	insightDedupDays = 7
)

// InsightService is the batch job that turns recent events into insights.
// Each run walks every user with events, runs the detector engine over
// their trailing window, and inserts deduplicated insights.
//
// The dedup guard is a plain read followed later by a write; overlapping
// runs can both pass it and insert duplicates. That soft guarantee is
// accepted, not fixed here.
type InsightService struct {
	events   port.EventStore
	insights port.InsightStore
	engine   *port.DetectorEngine

	now func() time.Time // injectable clock for tests
}

// NewInsightService creates a new insight generator.
func NewInsightService(events port.EventStore, insights port.InsightStore, engine *port.DetectorEngine) *InsightService {
	return &InsightService{
		events:   events,
		insights: insights,
		engine:   engine,
		now:      time.Now,
	}
}

// InsightRunStats summarizes one generator run.
type InsightRunStats struct {
	Users    int `json:"users"`
	Skipped  int `json:"skipped"`
	Created  int `json:"created"`
	Deduped  int `json:"deduped"`
	Failures int `json:"detector_failures"`
}

// Run performs one generator pass over all users. A failure for one user
// does not stop the others.
func (s *InsightService) Run(ctx context.Context) (InsightRunStats, error) {
	var stats InsightRunStats

	users, err := s.events.ListUserIDsWithEvents(ctx)
	if err != nil {
		return stats, fmt.Errorf("list users: %w", err)
	}
	stats.Users = len(users)

	for _, userID := range users {
		if err := s.runUser(ctx, userID, &stats); err != nil {
			slog.Error("insight run failed for user", "user_id", userID, "error", err)
		}
	}

	slog.Info("insight run complete",
		"users", stats.Users, "created", stats.Created,
		"deduped", stats.Deduped, "detector_failures", stats.Failures)
	return stats, nil
}

func (s *InsightService) runUser(ctx context.Context, userID string, stats *InsightRunStats) error {
	now := s.now()
	since := now.AddDate(0, 0, -insightWindowDays)

	events, err := s.events.ListEventsSince(ctx, userID, since)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	if len(events) < insightMinEvents {
		stats.Skipped++
		return nil
	}

	candidates, failures := s.engine.DetectAll(events)
	for name, derr := range failures {
		stats.Failures++
		slog.Error("detector failed", "detector", name, "user_id", userID, "error", derr)
	}

	cooldown := now.AddDate(0, 0, -insightDedupDays)
	for _, c := range candidates {
		dup, err := s.insights.HasRecentInsight(ctx, userID, c.Scope, c.Pattern, cooldown)
		if err != nil {
			slog.Error("dedup check failed", "pattern", c.Pattern, "user_id", userID, "error", err)
			continue
		}
		if dup {
			stats.Deduped++
			continue
		}

		sources := c.SourceIDs
		if len(sources) > domain.MaxInsightSources {
			sources = sources[:domain.MaxInsightSources]
		}

		meta := c.Meta
		if meta == nil {
			meta = map[string]any{"pattern": c.Pattern}
		}
		meta["window_days"] = insightWindowDays

		if _, err := s.insights.InsertInsight(ctx, &domain.Insight{
			UserID:     userID,
			Scope:      c.Scope,
			Title:      c.Title,
			Body:       c.Body,
			Sources:    sources,
			Confidence: c.Confidence,
			Meta:       meta,
		}); err != nil {
			slog.Error("insert insight failed", "pattern", c.Pattern, "user_id", userID, "error", err)
			continue
		}
		stats.Created++
	}
	return nil
}
