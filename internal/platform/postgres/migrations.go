package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"slices"

	"github.com/pressly/goose/v3"
)

// MigrationsTable is the goose version table.
const MigrationsTable = "schema_migrations"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationCommands are the goose commands the service exposes.
var migrationCommands = []string{"up", "down", "redo", "reset", "status", "version"}

// slogGooseLogger adapts goose.Logger to slog. Fatalf does not exit so the
// caller decides how to terminate.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// ValidMigrationCommand reports whether command is supported by RunMigrations.
func ValidMigrationCommand(command string) bool {
	return slices.Contains(migrationCommands, command)
}

// RunMigrations runs a goose command against db using the embedded migrations.
func RunMigrations(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	if !ValidMigrationCommand(command) {
		return fmt.Errorf("unsupported migration command %q (supported: %v)", command, migrationCommands)
	}
	if logger == nil {
		logger = slog.Default()
	}

	goose.SetBaseFS(migrationsFS)
	goose.SetTableName(MigrationsTable)
	goose.SetLogger(&slogGooseLogger{logger: logger})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.RunContext(ctx, command, db, "migrations"); err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}
	return nil
}
