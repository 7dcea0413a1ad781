package handler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// JobFunc runs one pass of a background job and returns run stats for
// display (the embedding pipeline and the insight generator both fit).
type JobFunc func(ctx context.Context) (any, error)

// JobStatus is the tracked state of one job family.
type JobStatus struct {
	Name        string    `json:"name"`
	Status      string    `json:"status"` // idle, running, complete, error
	Runs        int       `json:"runs"`
	LastRunID   string    `json:"last_run_id,omitempty"`
	StartedAt   time.Time `json:"started_at,omitempty"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
	LastStats   any       `json:"last_stats,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
}

// JobTracker manages the background jobs in memory: their run functions
// and the status of the most recent run of each.
type JobTracker struct {
	mu      sync.RWMutex
	jobs    map[string]*JobStatus
	runners map[string]JobFunc
}

// NewJobTracker creates a new job tracker.
func NewJobTracker() *JobTracker {
	return &JobTracker{
		jobs:    make(map[string]*JobStatus),
		runners: make(map[string]JobFunc),
	}
}

// RegisterJob registers a named job.
func (t *JobTracker) RegisterJob(name string, fn JobFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[name] = &JobStatus{Name: name, Status: "idle"}
	t.runners[name] = fn
}

// RunJob executes the named job once, tracking status around the run.
// Overlapping runs of the same job are not prevented here: embedding runs
// are upsert-safe, and the insight dedup window is an accepted soft guard.
func (t *JobTracker) RunJob(ctx context.Context, name string) error {
	t.mu.Lock()
	fn, ok := t.runners[name]
	if !ok {
		t.mu.Unlock()
		return fiber.ErrNotFound
	}
	job := t.jobs[name]
	job.Status = "running"
	job.Runs++
	job.LastRunID = uuid.NewString()
	job.StartedAt = time.Now()
	job.CompletedAt = time.Time{}
	job.LastError = ""
	t.mu.Unlock()

	stats, err := fn(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	job.CompletedAt = time.Now()
	job.LastStats = stats
	if err != nil {
		job.Status = "error"
		job.LastError = err.Error()
		return err
	}
	job.Status = "complete"
	return nil
}

// GetJob returns a snapshot of a job's status.
func (t *JobTracker) GetJob(name string) (*JobStatus, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	job, ok := t.jobs[name]
	if !ok {
		return nil, false
	}
	snapshot := *job
	return &snapshot, true
}

// JobsHandler handles job inspection and manual trigger endpoints.
type JobsHandler struct {
	tracker *JobTracker
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(tracker *JobTracker) *JobsHandler {
	return &JobsHandler{tracker: tracker}
}

// Register sets up job routes.
func (h *JobsHandler) Register(router fiber.Router) {
	jobs := router.Group("/jobs")
	jobs.Get("/:name", h.GetStatus)
	jobs.Post("/:name/run", h.Trigger)
}

// GetStatus returns the current status of a job family.
func (h *JobsHandler) GetStatus(c fiber.Ctx) error {
	job, ok := h.tracker.GetJob(c.Params("name"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "job not found"})
	}
	return c.JSON(job)
}

// Trigger starts a job run in the background and returns immediately.
func (h *JobsHandler) Trigger(c fiber.Ctx) error {
	name := c.Params("name")
	if _, ok := h.tracker.GetJob(name); !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "job not found"})
	}

	go func() {
		if err := h.tracker.RunJob(context.Background(), name); err != nil {
			slog.Error("manual job run failed", "job", name, "error", err)
		}
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"started": name})
}
