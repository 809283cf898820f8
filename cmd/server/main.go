// Package main implements the entry point for the tasks API server, which
// serves the recurring task list, runs the daily reset pass and delivers
// push reminders when the delayed queue calls back.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/berkedogan/tasks-api/internal/config"
	"github.com/berkedogan/tasks-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, redo, reset, status, version) and exit")
	flag.Parse()

	if err := run(context.Background(), *migrateCmd); err != nil {
		log.Printf("tasks-api: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, migrateCmd string) error {
	cfg, appLogger, err := initializeApp()
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	db, err := setupAppDatabase(ctx, cfg, appLogger)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() { _ = db.Close() }()
		return handleMigrations(ctx, db, migrateCmd, appLogger)
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		_ = db.Close()
		return err
	}
	return app.Run(ctx)
}

// initializeApp loads the environment, configuration and logger.
func initializeApp() (*config.Config, *slog.Logger, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("qstash_enabled", cfg.QStash.Enabled()),
		slog.Bool("push_enabled", cfg.Push.Enabled()),
		slog.Bool("reset_cron_enabled", cfg.Reset.Schedule != ""))

	return cfg, l, nil
}
