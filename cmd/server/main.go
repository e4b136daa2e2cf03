// Command server runs the SheetGuard HTTP API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/sheetguard/internal/config"
	"github.com/JonMunkholm/sheetguard/internal/core"
	"github.com/JonMunkholm/sheetguard/internal/logging"
	"github.com/JonMunkholm/sheetguard/internal/store"
	"github.com/JonMunkholm/sheetguard/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Overload lets a local .env win over the shell environment.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	profiles, history, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	if cfg.Database.Seed {
		seeded, err := store.Seed(ctx, profiles)
		if err != nil {
			return fmt.Errorf("seed profiles: %w", err)
		}
		if seeded {
			logger.Info("seeded starter profiles", "count", len(store.SeedProfiles()))
		}
	}

	svc := core.NewService(profiles, history, core.Options{
		MaxFileSize:   cfg.Analysis.MaxFileSize,
		Timeout:       cfg.Analysis.Timeout,
		MaxConcurrent: cfg.Analysis.MaxConcurrent,
		MaxWaitTime:   cfg.Analysis.MaxWaitTime,
	}, logger)

	server := web.NewServer(svc, cfg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := svc.Limiter().Status(); status.Active > 0 {
			logger.Info("waiting for analyses to finish", "active", status.Active)
			if err := svc.Limiter().WaitForDrain(shutdownCtx); err != nil {
				logger.Warn("analyses did not finish in time", "error", err)
			}
		}
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// openStores connects to PostgreSQL and applies migrations when a database
// is configured, and falls back to in-memory stores otherwise.
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.ProfileRepository, store.HistoryRepository, func(), error) {
	if !cfg.Database.Enabled() {
		logger.Warn("DATABASE_URL not set, profiles and history are kept in memory")
		return store.NewMemoryProfiles(), store.NewMemoryHistory(cfg.History.MaxEntries), func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("connected to database", "database", poolConfig.ConnConfig.Database)

	if err := store.Migrate(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}

	return store.NewPostgresProfiles(pool), store.NewPostgresHistory(pool, cfg.History.MaxEntries), pool.Close, nil
}
