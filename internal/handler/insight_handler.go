package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/port"
)

// defaultInsightPageSize is the fixed page size of the active-insight feed.
const defaultInsightPageSize = 20

// InsightHandler exposes the active-insight feed and the user-facing
// lifecycle actions (seen, dismiss, mute). The generator itself never
// touches those fields.
type InsightHandler struct {
	insights port.InsightStore
}

// NewInsightHandler creates a new insight handler.
func NewInsightHandler(insights port.InsightStore) *InsightHandler {
	return &InsightHandler{insights: insights}
}

// Register sets up insight routes.
func (h *InsightHandler) Register(router fiber.Router) {
	insights := router.Group("/insights")
	insights.Get("/", h.List)
	insights.Post("/:id/seen", h.MarkSeen)
	insights.Post("/:id/dismiss", h.Dismiss)
	insights.Post("/:id/mute", h.Mute)
}

// List returns non-dismissed, non-muted insights ordered by confidence
// then recency. The ordering is part of the UI contract.
func (h *InsightHandler) List(c fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}

	limit := defaultInsightPageSize
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be between 1 and 100"})
		}
		limit = n
	}

	insights, err := h.insights.ListActiveInsights(c.Context(), userID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"insights": insights})
}

// MarkSeen records the first time the user saw an insight.
func (h *InsightHandler) MarkSeen(c fiber.Ctx) error {
	return h.mutate(c, h.insights.MarkSeen)
}

// Dismiss suppresses an insight from active surfaces.
func (h *InsightHandler) Dismiss(c fiber.Ctx) error {
	return h.mutate(c, h.insights.Dismiss)
}

// Mute suppresses an insight without dismissing it.
func (h *InsightHandler) Mute(c fiber.Ctx) error {
	return h.mutate(c, h.insights.Mute)
}

func (h *InsightHandler) mutate(c fiber.Ctx, fn func(ctx context.Context, id string) error) error {
	if err := fn(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, port.ErrInsightNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "insight not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"ok": true})
}
