package port

import (
	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/domain"
)

// Detector is a pluggable pattern rule (Strategy Pattern). Each detector
// evaluates a user's recent events against a fixed threshold and proposes
// at most one insight candidate. Confidence is a static constant per
// detector, not a learned score.
type Detector interface {
	// Name returns the unique pattern name of this detector
	// (e.g. "mood_mode", "weekend_concentration").
	Name() string

	// Description returns a human-readable description of what this detector looks for.
	Description() string

	// Detect evaluates the events and returns a candidate, or nil when the
	// pattern threshold is not met.
	Detect(events []domain.KnowledgeEvent) (*domain.InsightCandidate, error)
}

// DetectorEngine runs multiple detectors independently.
type DetectorEngine struct {
	detectors []Detector
}

// NewDetectorEngine creates a new engine with the given detectors.
func NewDetectorEngine(detectors ...Detector) *DetectorEngine {
	return &DetectorEngine{detectors: detectors}
}

// DetectAll runs every registered detector over the events. One detector's
// failure does not block the others: errors are collected per detector name
// and returned alongside the successful candidates.
func (e *DetectorEngine) DetectAll(events []domain.KnowledgeEvent) ([]*domain.InsightCandidate, map[string]error) {
	candidates := make([]*domain.InsightCandidate, 0, len(e.detectors))
	failures := make(map[string]error)

	for _, d := range e.detectors {
		c, err := d.Detect(events)
		if err != nil {
			failures[d.Name()] = err
			continue
		}
		if c != nil {
			candidates = append(candidates, c)
		}
	}
	return candidates, failures
}

// AvailableDetectors returns the names of all registered detectors.
func (e *DetectorEngine) AvailableDetectors() []string {
	names := make([]string, 0, len(e.detectors))
	for _, d := range e.detectors {
		names = append(names, d.Name())
	}
	return names
}
