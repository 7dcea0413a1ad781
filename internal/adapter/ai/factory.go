package ai

import (
	"fmt"

	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/port"
	"github.com/arturoeanton/go-knowledge-engine-ollama/pkg/config"
)

// NewProvider builds the single active embedding provider from static
// configuration. Provider choice and output dimensionality are
// deployment-time decisions, never per-call.
func NewProvider(cfg *config.Config) (port.EmbeddingProvider, error) {
	switch cfg.EmbeddingProvider {
	case "ollama":
		return NewOllamaProvider(OllamaConfig{
			BaseURL:   cfg.OllamaURL,
			Model:     cfg.OllamaModel,
			Token:     cfg.OllamaToken,
			Dimension: cfg.EmbeddingDimension,
		}), nil
	case "openai":
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:    cfg.OpenAIAPIKey,
			BaseURL:   cfg.OpenAIBaseURL,
			Model:     cfg.OpenAIModel,
			Dimension: cfg.EmbeddingDimension,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", port.ErrUnknownProvider, cfg.EmbeddingProvider)
	}
}
