package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/domain"
	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/port"
)

// RetrievalService answers "what else did I log that resembles this":
// nearest-neighbor lookup over stored embeddings, strictly scoped to the
// anchor's owner. Ranking is pure embedding distance; there is no recency
// weighting because the feature is exploratory, not a relevance feed.
type RetrievalService struct {
	events port.EventStore
	index  port.VectorIndex
}

// NewRetrievalService creates a new semantic retrieval service.
func NewRetrievalService(events port.EventStore, index port.VectorIndex) *RetrievalService {
	return &RetrievalService{events: events, index: index}
}

// Similar returns up to k events of the same user nearest to the anchor,
// ascending by distance, excluding the anchor itself. An anchor that is
// still waiting on the embedding pipeline yields an empty result, never a
// fallback to another similarity method. An anchor owned by a different
// user is ErrEventNotFound.
func (s *RetrievalService) Similar(ctx context.Context, userID, anchorEventID string, k int) ([]domain.Neighbor, error) {
	anchor, err := s.events.GetEventByID(ctx, anchorEventID)
	if err != nil {
		return nil, fmt.Errorf("load anchor: %w", err)
	}
	if anchor.UserID != userID {
		return nil, port.ErrEventNotFound
	}

	neighbors, err := s.index.SearchNearest(ctx, userID, anchorEventID, k)
	if err != nil {
		return nil, fmt.Errorf("search nearest: %w", err)
	}

	slog.Debug("semantic retrieval", "user_id", userID, "anchor", anchorEventID, "results", len(neighbors))
	return neighbors, nil
}
