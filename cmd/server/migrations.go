package main

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/berkedogan/tasks-api/internal/platform/postgres"
)

// handleMigrations runs a goose command with a correlation id attached to
// every log line it produces.
func handleMigrations(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	migrationLogger := logger.With(
		slog.String("correlation_id", uuid.NewString()),
		slog.String("component", "migrations"),
		slog.String("command", command),
	)

	start := time.Now()
	migrationLogger.Info("Starting migration operation")

	if err := postgres.RunMigrations(ctx, db, command, migrationLogger); err != nil {
		migrationLogger.Error("Migration operation failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return err
	}

	migrationLogger.Info("Migration operation completed",
		slog.Duration("duration", time.Since(start)))
	return nil
}
