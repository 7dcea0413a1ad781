package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/port"
	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/service"
)

// EventHandler exposes the capture sink and semantic retrieval.
type EventHandler struct {
	capture   *service.CaptureService
	retrieval *service.RetrievalService
}

// NewEventHandler creates a new event handler.
func NewEventHandler(capture *service.CaptureService, retrieval *service.RetrievalService) *EventHandler {
	return &EventHandler{capture: capture, retrieval: retrieval}
}

// Register sets up event routes.
func (h *EventHandler) Register(router fiber.Router) {
	events := router.Group("/events")
	events.Post("/", h.Record)
	events.Get("/:id/similar", h.Similar)
}

// Record accepts one activity record. The capture sink is best-effort:
// a well-formed request is always 202, even when validation drops it.
func (h *EventHandler) Record(c fiber.Ctx) error {
	var body struct {
		UserID      string         `json:"user_id"`
		Source      string         `json:"source"`
		EventType   string         `json:"event_type"`
		Content     string         `json:"content"`
		Timestamp   *time.Time     `json:"timestamp,omitempty"`
		ProjectID   *string        `json:"project_id,omitempty"`
		Mood        *string        `json:"mood,omitempty"`
		Tags        []string       `json:"tags,omitempty"`
		RawMetadata map[string]any `json:"raw_metadata,omitempty"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	h.capture.Record(c.Context(), service.RecordRequest{
		UserID:      body.UserID,
		Source:      body.Source,
		EventType:   body.EventType,
		Content:     body.Content,
		Timestamp:   body.Timestamp,
		ProjectID:   body.ProjectID,
		Mood:        body.Mood,
		Tags:        body.Tags,
		RawMetadata: body.RawMetadata,
	})

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"accepted": true})
}

// Similar returns the K nearest events of the same user, ascending by
// vector distance, excluding the anchor.
func (h *EventHandler) Similar(c fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}

	k := 10
	if v := c.Query("k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "k must be between 1 and 100"})
		}
		k = n
	}

	neighbors, err := h.retrieval.Similar(c.Context(), userID, c.Params("id"), k)
	if err != nil {
		if errors.Is(err, port.ErrEventNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	results := make([]fiber.Map, len(neighbors))
	for i, n := range neighbors {
		results[i] = fiber.Map{
			"id":        n.ID,
			"source":    n.Source,
			"content":   n.Content,
			"timestamp": n.Timestamp,
			"distance":  n.Distance,
		}
	}

	return c.JSON(fiber.Map{"results": results})
}
