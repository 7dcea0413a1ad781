package middleware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/domain"
	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/service"
)

// CaptureMiddleware feeds mutating API requests into the knowledge log as
// account-scope activity, when the caller identifies the acting user via
// the X-User-ID header. The sink is best-effort and the write runs in a
// goroutine, so request latency and outcome are unaffected. Event routes
// are skipped to avoid recording the recorder.
func CaptureMiddleware(sink *service.CaptureService) fiber.Handler {
	return func(c fiber.Ctx) error {
		// Capture request data BEFORE handler execution (Fiber reuses context objects)
		method := c.Method()
		path := c.Path()
		userID := c.Get("X-User-ID")

		err := c.Next()

		if userID == "" || !mutating(method) || strings.Contains(path, "/events") {
			return err
		}

		status := c.Response().StatusCode()
		go sink.Record(context.Background(), service.RecordRequest{
			UserID:    userID,
			Source:    "api." + strings.ToLower(method),
			EventType: domain.EventTypeLog,
			Content:   fmt.Sprintf("%s %s", method, path),
			RawMetadata: map[string]any{
				"status":      status,
				"recorded_at": time.Now().Format(time.RFC3339),
			},
		})

		return err
	}
}

func mutating(method string) bool {
	switch method {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
		return true
	}
	return false
}
