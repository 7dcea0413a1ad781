package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/adapter/ai"
	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/port"
)

// EmbedderService keeps the vector store caught up with the event log. It
// is a poll-based batch job: each run selects events without embeddings
// (newest first), embeds them through the single configured provider, and
// upserts the vectors. Runs are idempotent; two runs with no new events
// leave the vector store unchanged.
type EmbedderService struct {
	provider port.EmbeddingProvider
	index    port.VectorIndex

	batchSize   int
	callTimeout time.Duration
	retryDelay  time.Duration
}

// NewEmbedderService creates a new embedding pipeline.
func NewEmbedderService(provider port.EmbeddingProvider, index port.VectorIndex, batchSize int, callTimeout, retryDelay time.Duration) *EmbedderService {
	return &EmbedderService{
		provider:    provider,
		index:       index,
		batchSize:   batchSize,
		callTimeout: callTimeout,
		retryDelay:  retryDelay,
	}
}

// RunStats summarizes one pipeline run.
type RunStats struct {
	Selected int `json:"selected"`
	Embedded int `json:"embedded"`
}

// Run performs one pipeline pass. On any provider or storage failure the
// run aborts and the untouched events stay unembedded for the next run;
// there is no partial acceptance of a malformed provider response.
func (s *EmbedderService) Run(ctx context.Context) (RunStats, error) {
	var stats RunStats

	events, err := s.index.ListUnembedded(ctx, s.batchSize)
	if err != nil {
		return stats, fmt.Errorf("select unembedded: %w", err)
	}
	stats.Selected = len(events)
	if len(events) == 0 {
		return stats, nil
	}

	texts := make([]string, len(events))
	for i := range events {
		texts[i] = events[i].Content
	}

	vectors, err := s.embedBatch(ctx, texts)
	if err != nil {
		return stats, err
	}

	// Provider contract: one vector per input text, in input order. A
	// count mismatch fails the whole batch with nothing persisted.
	if len(vectors) != len(texts) {
		slog.Error("embedding batch shape mismatch",
			"model", s.provider.ModelName(), "sent", len(texts), "received", len(vectors))
		return stats, fmt.Errorf("%w: sent %d, received %d", port.ErrEmbeddingShape, len(texts), len(vectors))
	}

	for i := range events {
		if err := s.index.UpsertEmbedding(ctx, events[i].ID, vectors[i]); err != nil {
			return stats, fmt.Errorf("persist embedding for %s: %w", events[i].ID, err)
		}
		stats.Embedded++
	}

	slog.Info("embedding run complete", "selected", stats.Selected, "embedded", stats.Embedded)
	return stats, nil
}

// embedBatch calls the provider with a bounded timeout and retries exactly
// once, after a fixed delay, when the failure looks transient (cold-start,
// rate limit, timeout). A second failure, or a permanent one, aborts the
// run: the next scheduled run retries the same backlog. Predictable
// halt-and-retry beats partial, hard-to-reason-about progress.
func (s *EmbedderService) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := s.callProvider(ctx, texts)
	if err == nil {
		return vectors, nil
	}
	if !ai.IsTransient(err) {
		return nil, fmt.Errorf("embed batch: %w", err)
	}

	slog.Warn("transient embed failure, retrying once", "delay", s.retryDelay, "error", err)
	select {
	case <-time.After(s.retryDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	vectors, err = s.callProvider(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed batch after retry: %w", err)
	}
	return vectors, nil
}

func (s *EmbedderService) callProvider(ctx context.Context, texts []string) ([][]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return s.provider.EmbedBatch(callCtx, texts)
}
