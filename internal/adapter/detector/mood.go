package detector

import (
	"fmt"

	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/domain"
)

const (
	moodThreshold  = 3
	moodConfidence = 0.7
)

// MoodModeDetector surfaces the most frequent mood among mood-tagged
// events when it recurs often enough to be a pattern.
type MoodModeDetector struct{}

// NewMoodModeDetector creates a new mood-mode detector.
func NewMoodModeDetector() *MoodModeDetector {
	return &MoodModeDetector{}
}

func (d *MoodModeDetector) Name() string        { return "mood_mode" }
func (d *MoodModeDetector) Description() string { return "Recurring mood across recent events" }

func (d *MoodModeDetector) Detect(events []domain.KnowledgeEvent) (*domain.InsightCandidate, error) {
	sources := make(map[string][]string)
	var order []string // first-appearance order, for a deterministic tie-break

	for _, e := range events {
		if e.Mood == nil || *e.Mood == "" {
			continue
		}
		mood := *e.Mood
		if _, seen := sources[mood]; !seen {
			order = append(order, mood)
		}
		sources[mood] = append(sources[mood], e.ID)
	}

	var topMood string
	topCount := 0
	for _, mood := range order {
		if n := len(sources[mood]); n > topCount {
			topMood, topCount = mood, n
		}
	}

	if topCount < moodThreshold {
		return nil, nil
	}

	return &domain.InsightCandidate{
		Scope:      domain.ScopeEmotion,
		Pattern:    d.Name(),
		Title:      fmt.Sprintf("You've often felt %s lately", topMood),
		Body:       fmt.Sprintf("Your mood was logged as %q %d times over the last month. It may be worth a closer look at what those moments have in common.", topMood, topCount),
		Confidence: moodConfidence,
		SourceIDs:  capSources(sources[topMood]),
		Meta: map[string]any{
			"pattern":   d.Name(),
			"mood":      topMood,
			"count":     topCount,
			"threshold": moodThreshold,
		},
	}, nil
}
