package detector

import (
	"fmt"
	"time"

	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/domain"
)

const (
	weekendSourceCategory = "project"
	weekendThreshold      = 3
	weekendConfidence     = 0.65
)

// WeekendDetector counts project activity falling on Saturday or Sunday.
type WeekendDetector struct{}

// NewWeekendDetector creates a new weekend-concentration detector.
func NewWeekendDetector() *WeekendDetector {
	return &WeekendDetector{}
}

func (d *WeekendDetector) Name() string        { return "weekend_concentration" }
func (d *WeekendDetector) Description() string { return "Project activity concentrated on weekends" }

func (d *WeekendDetector) Detect(events []domain.KnowledgeEvent) (*domain.InsightCandidate, error) {
	var sourceIDs []string
	for i := range events {
		e := &events[i]
		if !inSourceCategory(e, weekendSourceCategory) {
			continue
		}
		switch e.Timestamp.Weekday() {
		case time.Saturday, time.Sunday:
			sourceIDs = append(sourceIDs, e.ID)
		}
	}

	count := len(sourceIDs)
	if count < weekendThreshold {
		return nil, nil
	}

	return &domain.InsightCandidate{
		Scope:      domain.ScopeProject,
		Pattern:    d.Name(),
		Title:      "Your projects move on weekends",
		Body:       fmt.Sprintf("%d project updates in the last month happened on a Saturday or Sunday. Weekends look like your building time.", count),
		Confidence: weekendConfidence,
		SourceIDs:  capSources(sourceIDs),
		Meta: map[string]any{
			"pattern":   d.Name(),
			"count":     count,
			"threshold": weekendThreshold,
			"category":  weekendSourceCategory,
		},
	}, nil
}
