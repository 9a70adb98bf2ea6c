package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/ai"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/cache"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/config"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/store"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
)

// app holds the configuration and the constructors for the backends a
// command needs. Tests replace the constructors with in-memory versions.
type app struct {
	cfg *config.Config

	openStore    func(ctx context.Context, cfg *config.Config) (store.Store, func(), error)
	openCache    func(ctx context.Context, cfg *config.Config) (cache.Cache, func(), error)
	newGenerator func(ctx context.Context, cfg *config.Config) (models.TextGenerator, error)
	migrate      func(cfg *config.Config) (uint, bool, error)
}

func newApp() *app {
	return &app{
		openStore:    openPostgres,
		openCache:    openRedis,
		newGenerator: func(ctx context.Context, cfg *config.Config) (models.TextGenerator, error) { return ai.NewGenerator(ctx, cfg.AI) },
		migrate:      runMigrations,
	}
}

// init loads configuration once and installs the stderr logger.
func (a *app) init() error {
	if a.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		a.cfg = cfg
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: a.cfg.Log.Level,
	})))
	return nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return store.NewPostgresStore(pool), pool.Close, nil
}

func openRedis(ctx context.Context, cfg *config.Config) (cache.Cache, func(), error) {
	c, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("create redis cache: %w", err)
	}
	if err := c.Ping(ctx); err != nil {
		c.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, func() { c.Close() }, nil
}

func runMigrations(cfg *config.Config) (uint, bool, error) {
	if err := store.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsDir); err != nil {
		return 0, false, err
	}
	return store.MigrationVersion(cfg.Database.URL, cfg.Database.MigrationsDir)
}
