package detector

import (
	"fmt"

	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/domain"
)

const (
	morningSourceCategory = "journal"
	morningHourStart      = 6  // inclusive
	morningHourEnd        = 12 // exclusive
	morningThreshold      = 2
	morningConfidence     = 0.6
)

// MorningDetector counts journal activity logged in the morning hours.
type MorningDetector struct{}

// NewMorningDetector creates a new morning-concentration detector.
func NewMorningDetector() *MorningDetector {
	return &MorningDetector{}
}

func (d *MorningDetector) Name() string        { return "morning_concentration" }
func (d *MorningDetector) Description() string { return "Journal activity concentrated in the morning" }

func (d *MorningDetector) Detect(events []domain.KnowledgeEvent) (*domain.InsightCandidate, error) {
	var sourceIDs []string
	for i := range events {
		e := &events[i]
		if !inSourceCategory(e, morningSourceCategory) {
			continue
		}
		hour := e.Timestamp.Hour()
		if hour >= morningHourStart && hour < morningHourEnd {
			sourceIDs = append(sourceIDs, e.ID)
		}
	}

	count := len(sourceIDs)
	if count < morningThreshold {
		return nil, nil
	}

	return &domain.InsightCandidate{
		Scope:      domain.ScopeDaily,
		Pattern:    d.Name(),
		Title:      "You're a morning writer",
		Body:       fmt.Sprintf("%d of your recent journal entries were written between %d:00 and %d:00. Mornings seem to be when you reflect best.", count, morningHourStart, morningHourEnd),
		Confidence: morningConfidence,
		SourceIDs:  capSources(sourceIDs),
		Meta: map[string]any{
			"pattern":    d.Name(),
			"count":      count,
			"threshold":  morningThreshold,
			"category":   morningSourceCategory,
			"hour_start": morningHourStart,
			"hour_end":   morningHourEnd,
		},
	}, nil
}
