// Package main is the entrypoint for the credit analysis API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/ai"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/api"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/api/handler"
	mw "github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/api/middleware"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/assessment"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/cache"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/company"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/config"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/ingest"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(newLogger(cfg.Log.Level))
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	if err := store.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	generator, err := ai.NewGenerator(ctx, cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	slog.Info("AI provider initialized", "provider", generator.Name())

	pgStore := store.NewPostgresStore(pool)
	fetcher := company.NewFetcher(pgStore)
	analysis := assessment.NewService(generator, fetcher, cfg.AI.InferenceTimeout)
	pipeline := ingest.NewPipeline(ingest.NewWriter(pgStore), redisCache, cfg.Ingest.LockTTL)

	deps := api.Dependencies{
		Auth:      mw.NewAuth(pgStore),
		RateLimit: mw.NewRateLimit(redisCache, cfg.Server.RateLimitPerMinute),

		HealthHandler:    handler.NewHealthHandler(pgStore, redisCache),
		ListCompanies:    handler.NewListCompaniesHandler(fetcher),
		GetCompany:       handler.NewGetCompanyHandler(fetcher),
		AssessCompany:    handler.NewAssessmentHandler(analysis),
		NarrativeHandler: handler.NewNarrativeHandler(analysis),
		ProposalHandler:  handler.NewProposalHandler(analysis),
		IngestHandler:    handler.NewIngestHandler(pipeline, cfg.Server.MaxUploadBytes),
		CreateKeyHandler: handler.NewCreateKeyHandler(pgStore),
	}

	router := api.NewRouter(deps)

	// WriteTimeout must outlast two sequential inference calls.
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2*cfg.AI.InferenceTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
