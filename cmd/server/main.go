package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/adapter/ai"
	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/adapter/detector"
	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/adapter/store"
	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/handler"
	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/middleware"
	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/port"
	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/service"
	"github.com/arturoeanton/go-knowledge-engine-ollama/pkg/config"

	_ "github.com/lib/pq"
)

const (
	jobEmbeddings = "embeddings"
	jobInsights   = "insights"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("🚀 Starting Knowledge Engine",
		"port", cfg.Port,
		"provider", cfg.EmbeddingProvider,
		"dimension", cfg.EmbeddingDimension,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Database ─────────────────────────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	// Schema is created once here, at bootstrap. No lazy init anywhere else.
	if err := pgStore.InitSchema(ctx, cfg.EmbeddingDimension); err != nil {
		slog.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}

	vectorStore := store.NewVectorStore(pgStore, cfg.EmbeddingDimension)

	// ── Embedding provider (one active implementation, chosen here) ─────
	provider, err := ai.NewProvider(cfg)
	if err != nil {
		slog.Error("failed to build embedding provider", "error", err)
		os.Exit(1)
	}

	// ── Detector Engine (Strategy Pattern) ──────────────────────────────
	engine := port.NewDetectorEngine(
		detector.NewMoodModeDetector(),
		detector.NewProductivityDetector(),
		detector.NewWeekendDetector(),
		detector.NewMorningDetector(),
	)

	// ── Services ─────────────────────────────────────────────────────────
	captureService := service.NewCaptureService(pgStore)
	embedderService := service.NewEmbedderService(provider, vectorStore,
		cfg.EmbedBatchSize, cfg.EmbedCallTimeout, cfg.EmbedRetryDelay)
	retrievalService := service.NewRetrievalService(pgStore, vectorStore)
	insightService := service.NewInsightService(pgStore, pgStore, engine)

	// ── Background jobs ──────────────────────────────────────────────────
	jobTracker := handler.NewJobTracker()
	jobTracker.RegisterJob(jobEmbeddings, func(ctx context.Context) (any, error) {
		return embedderService.Run(ctx)
	})
	jobTracker.RegisterJob(jobInsights, func(ctx context.Context) (any, error) {
		return insightService.Run(ctx)
	})

	go scheduleJob(ctx, jobTracker, jobEmbeddings, cfg.EmbedInterval)
	go scheduleJob(ctx, jobTracker, jobInsights, cfg.InsightInterval)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-User-ID"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))
	app.Use(middleware.CaptureMiddleware(captureService))

	// Health check
	app.Get("/api/v1/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     cfg.AppName,
			"model":   provider.ModelName(),
			"version": "1.0.0",
		})
	})

	api := app.Group("/api/v1")

	eventHandler := handler.NewEventHandler(captureService, retrievalService)
	eventHandler.Register(api)

	insightHandler := handler.NewInsightHandler(pgStore)
	insightHandler.Register(api)

	jobsHandler := handler.NewJobsHandler(jobTracker)
	jobsHandler.Register(api)

	// ── Start ────────────────────────────────────────────────────────────
	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = app.ShutdownWithContext(shutdownCtx)
	}()

	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// scheduleJob runs the named job on a fixed interval until ctx is canceled.
// A failed run is logged; the next tick retries the same backlog.
func scheduleJob(ctx context.Context, tracker *handler.JobTracker, name string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := tracker.RunJob(ctx, name); err != nil {
				slog.Error("scheduled job run failed", "job", name, "error", err)
			}
		}
	}
}
