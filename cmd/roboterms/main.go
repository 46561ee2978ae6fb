package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"roboterms/internal/config"
	"roboterms/internal/infra/db"
	httpinfra "roboterms/internal/infra/http"
	"roboterms/internal/infra/logging"
)

type migrator interface {
	Migrate(ctx context.Context) error
}

func main() {
	cfg := config.FromEnv()
	logger := logging.New(cfg.LogLevel, os.Stdout)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	store, err := db.NewStore(cfg, logger)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := prepareSchema(ctx, cfg, store, logger); err != nil {
		log.Fatalf("failed to prepare schema: %v", err)
	}

	srv := httpinfra.NewServer(cfg, store, logger)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

// prepareSchema applies migrations when AUTO_MIGRATE is set. Otherwise the
// schema is expected to exist already (robotermsctl migrate).
func prepareSchema(ctx context.Context, cfg config.Config, m migrator, logger *slog.Logger) error {
	if !cfg.AutoMigrate {
		return nil
	}
	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("migrations applied")
	return nil
}
