package ai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig holds the configuration for the OpenAI embed endpoint.
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string // empty = api.openai.com; set for compatible gateways
	Model     string // e.g. text-embedding-3-small
	Dimension int
}

// OpenAIProvider implements port.EmbeddingProvider using the OpenAI API.
type OpenAIProvider struct {
	cfg    OpenAIConfig
	client *openai.Client
}

// NewOpenAIProvider creates a new OpenAI-backed embedding provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIProvider{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
	}
}

// ModelName returns the embedding model identifier.
func (p *OpenAIProvider) ModelName() string {
	return p.cfg.Model
}

// Dimension returns the configured output vector size.
func (p *OpenAIProvider) Dimension() int {
	return p.cfg.Dimension
}

// Embed generates a vector embedding for the given text.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, &ProviderError{Provider: "openai", Transient: false, Message: "empty response"}
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one call, one
// vector per input text, in input order.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(p.cfg.Model),
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	vectors := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, &ProviderError{Provider: "openai", Transient: false, Message: "embedding index out of range"}
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{
			Provider:  "openai",
			Status:    apiErr.HTTPStatusCode,
			Transient: transientStatus(apiErr.HTTPStatusCode),
			Message:   apiErr.Message,
		}
	}
	// Transport-level failure (connection refused, timeout).
	return &ProviderError{Provider: "openai", Transient: true, Message: err.Error()}
}
