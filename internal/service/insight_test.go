package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/adapter/detector"
	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/domain"
	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/port"
)

// base is a Wednesday afternoon, away from weekend/morning windows.
var base = time.Date(2025, 6, 11, 15, 0, 0, 0, time.UTC)

func newGenerator(events *fakeEventStore, insights *fakeInsightStore, detectors ...port.Detector) *InsightService {
	if len(detectors) == 0 {
		detectors = []port.Detector{
			detector.NewMoodModeDetector(),
			detector.NewProductivityDetector(),
			detector.NewWeekendDetector(),
			detector.NewMorningDetector(),
		}
	}
	svc := NewInsightService(events, insights, port.NewDetectorEngine(detectors...))
	svc.now = func() time.Time { return base }
	return svc
}

func seedMoodEvents(t *testing.T, store *fakeEventStore, userID string, moods ...string) {
	t.Helper()
	for i, m := range moods {
		mood := m
		_, err := store.InsertEvent(context.Background(), &domain.KnowledgeEvent{
			UserID:    userID,
			Source:    "habit.checkin",
			EventType: domain.EventTypeLog,
			Content:   "daily check-in",
			Mood:      &mood,
			Timestamp: base.AddDate(0, 0, -(i + 1)),
		})
		require.NoError(t, err)
	}
}

func TestRunSkipsUsersBelowEventFloor(t *testing.T) {
	events := &fakeEventStore{}
	insights := &fakeInsightStore{}
	seedMoodEvents(t, events, "u1", "overwhelmed", "overwhelmed", "overwhelmed", "overwhelmed")

	stats, err := newGenerator(events, insights).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)
	assert.Empty(t, insights.insights, "4 events is below the 5-event floor")
}

func TestRunMoodScenario(t *testing.T) {
	events := &fakeEventStore{}
	insights := &fakeInsightStore{}
	seedMoodEvents(t, events, "u1", "overwhelmed", "calm", "overwhelmed", "calm", "overwhelmed")

	stats, err := newGenerator(events, insights).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Created)
	require.Len(t, insights.insights, 1)

	ins := insights.insights[0]
	assert.Equal(t, domain.ScopeEmotion, ins.Scope)
	assert.True(t, strings.Contains(ins.Title, "overwhelmed") || strings.Contains(ins.Body, "overwhelmed"))
	assert.InDelta(t, 0.7, ins.Confidence, 1e-9, "confidence is the detector's static constant")
	assert.LessOrEqual(t, len(ins.Sources), domain.MaxInsightSources)
	assert.Equal(t, "mood_mode", ins.Meta["pattern"])
	assert.Equal(t, insightWindowDays, ins.Meta["window_days"])
}

func TestRunSourcesAreCappedSample(t *testing.T) {
	events := &fakeEventStore{}
	insights := &fakeInsightStore{}
	seedMoodEvents(t, events, "u1",
		"tired", "tired", "tired", "tired", "tired", "tired", "tired", "tired")

	_, err := newGenerator(events, insights).Run(context.Background())

	require.NoError(t, err)
	require.Len(t, insights.insights, 1)
	assert.Len(t, insights.insights[0].Sources, domain.MaxInsightSources)
	assert.Equal(t, 8, insights.insights[0].Meta["count"], "meta keeps the full count")
}

func TestRunDeduplicatesWithinCooldown(t *testing.T) {
	events := &fakeEventStore{}
	insights := &fakeInsightStore{}
	seedMoodEvents(t, events, "u1", "overwhelmed", "calm", "overwhelmed", "calm", "overwhelmed")

	gen := newGenerator(events, insights)
	_, err := gen.Run(context.Background())
	require.NoError(t, err)

	stats, err := gen.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Deduped)
	assert.Zero(t, stats.Created)
	assert.Len(t, insights.insights, 1, "same pattern within 7 days is not re-surfaced")
}

func TestRunDismissedInsightDoesNotSuppressNewOne(t *testing.T) {
	events := &fakeEventStore{}
	insights := &fakeInsightStore{}
	seedMoodEvents(t, events, "u1", "overwhelmed", "calm", "overwhelmed", "calm", "overwhelmed")

	gen := newGenerator(events, insights)
	_, err := gen.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, insights.Dismiss(context.Background(), insights.insights[0].ID))

	stats, err := gen.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Created, "dedup only considers non-dismissed insights")
}

type failingDetector struct{}

func (failingDetector) Name() string        { return "explosive" }
func (failingDetector) Description() string { return "always fails" }
func (failingDetector) Detect([]domain.KnowledgeEvent) (*domain.InsightCandidate, error) {
	return nil, errors.New("boom")
}

func TestRunIsolatesDetectorFailures(t *testing.T) {
	events := &fakeEventStore{}
	insights := &fakeInsightStore{}
	seedMoodEvents(t, events, "u1", "overwhelmed", "calm", "overwhelmed", "calm", "overwhelmed")

	gen := newGenerator(events, insights, failingDetector{}, detector.NewMoodModeDetector())
	stats, err := gen.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failures)
	assert.Equal(t, 1, stats.Created, "other detectors still run")
}

func TestRunScopesUsersIndependently(t *testing.T) {
	events := &fakeEventStore{}
	insights := &fakeInsightStore{}
	seedMoodEvents(t, events, "u1", "overwhelmed", "calm", "overwhelmed", "calm", "overwhelmed")
	seedMoodEvents(t, events, "u2", "happy", "happy")

	stats, err := newGenerator(events, insights).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Users)
	assert.Equal(t, 1, stats.Skipped, "u2 is below the floor")
	require.Len(t, insights.insights, 1)
	assert.Equal(t, "u1", insights.insights[0].UserID)
}

func TestRunIgnoresEventsOutsideWindow(t *testing.T) {
	events := &fakeEventStore{}
	insights := &fakeInsightStore{}

	// Five mood events, but all older than 30 days.
	for i := 0; i < 5; i++ {
		mood := "overwhelmed"
		_, err := events.InsertEvent(context.Background(), &domain.KnowledgeEvent{
			UserID:    "u1",
			Source:    "habit.checkin",
			EventType: domain.EventTypeLog,
			Content:   "old check-in",
			Mood:      &mood,
			Timestamp: base.AddDate(0, 0, -40-i),
		})
		require.NoError(t, err)
	}

	_, err := newGenerator(events, insights).Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, insights.insights)
}
