package detector

import (
	"fmt"
	"strings"

	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/domain"
)

const (
	lexicalSourceCategory = "journal"
	lexicalThreshold      = 3
	lexicalConfidence     = 0.6
)

// productivityVocabulary is the fixed keyword list matched against journal
// content. Matching is plain lowercase substring search, not NLP.
var productivityVocabulary = []string{
	"productive", "focus", "focused", "deep work", "flow",
	"finished", "completed", "shipped", "accomplished",
}

// ProductivityDetector counts journal entries whose content mentions
// productivity-adjacent terms.
type ProductivityDetector struct{}

// NewProductivityDetector creates a new lexical productivity detector.
func NewProductivityDetector() *ProductivityDetector {
	return &ProductivityDetector{}
}

func (d *ProductivityDetector) Name() string        { return "productivity_language" }
func (d *ProductivityDetector) Description() string { return "Productivity terms recurring in journal entries" }

func (d *ProductivityDetector) Detect(events []domain.KnowledgeEvent) (*domain.InsightCandidate, error) {
	var sourceIDs []string
	for i := range events {
		e := &events[i]
		if !inSourceCategory(e, lexicalSourceCategory) {
			continue
		}
		content := strings.ToLower(e.Content)
		for _, term := range productivityVocabulary {
			if strings.Contains(content, term) {
				sourceIDs = append(sourceIDs, e.ID)
				break
			}
		}
	}

	count := len(sourceIDs)
	if count < lexicalThreshold {
		return nil, nil
	}

	return &domain.InsightCandidate{
		Scope:      domain.ScopeDaily,
		Pattern:    d.Name(),
		Title:      "A productivity streak is showing in your journal",
		Body:       fmt.Sprintf("%d of your recent journal entries mention being productive or focused. Whatever you're doing, it seems to be working.", count),
		Confidence: lexicalConfidence,
		SourceIDs:  capSources(sourceIDs),
		Meta: map[string]any{
			"pattern":   d.Name(),
			"count":     count,
			"threshold": lexicalThreshold,
			"category":  lexicalSourceCategory,
		},
	}, nil
}
