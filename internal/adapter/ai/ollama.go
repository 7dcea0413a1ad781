package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// OllamaConfig holds the configuration for the Ollama embed endpoint.
type OllamaConfig struct {
	BaseURL   string // e.g. http://localhost:11434 or https://api.ollama.com
	Model     string // e.g. bge-m3
	Token     string // Bearer token for Ollama Cloud (empty = no auth)
	Dimension int
}

// OllamaProvider implements port.EmbeddingProvider using the Ollama REST API.
type OllamaProvider struct {
	cfg        OllamaConfig
	httpClient *http.Client
}

// NewOllamaProvider creates a new Ollama-backed embedding provider.
func NewOllamaProvider(cfg OllamaConfig) *OllamaProvider {
	return &OllamaProvider{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

// ModelName returns the embedding model identifier.
func (o *OllamaProvider) ModelName() string {
	return o.cfg.Model
}

// Dimension returns the configured output vector size.
func (o *OllamaProvider) Dimension() int {
	return o.cfg.Dimension
}

// Embed generates a vector embedding for the given text.
func (o *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := o.embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, &ProviderError{Provider: "ollama", Transient: false, Message: "empty response"}
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one call, one
// vector per input text, in input order.
func (o *OllamaProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return o.embed(ctx, texts)
}

// embed posts to /api/embed; input may be a string or a []string.
func (o *OllamaProvider) embed(ctx context.Context, input any) ([][]float32, error) {
	payload := map[string]any{
		"model": o.cfg.Model,
		"input": input,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.BaseURL+"/api/embed", bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+o.cfg.Token)
	}

	httpResp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: "ollama", Transient: true, Message: err.Error()}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		return nil, &ProviderError{
			Provider:  "ollama",
			Status:    httpResp.StatusCode,
			Transient: transientStatus(httpResp.StatusCode),
			Message:   string(body),
		}
	}

	var resp struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("ollama embed decode: %w", err)
	}

	return resp.Embeddings, nil
}
