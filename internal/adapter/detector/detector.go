// Package detector contains the rule-based pattern detectors run by the
// insight generator. Each detector is independent: it scans one user's
// recent events against a fixed threshold and proposes at most one insight
// candidate with a static confidence constant.
package detector

import (
	"strings"

	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/domain"
)

// inSourceCategory reports whether the event's two-part source
// ("feature.action") belongs to the given feature category.
func inSourceCategory(e *domain.KnowledgeEvent, category string) bool {
	return strings.HasPrefix(e.Source, category+".")
}

// capSources keeps the first few supporting event ids as evidence.
func capSources(ids []string) []string {
	if len(ids) > domain.MaxInsightSources {
		return ids[:domain.MaxInsightSources]
	}
	return ids
}
