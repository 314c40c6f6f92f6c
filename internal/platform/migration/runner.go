// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration provides a thin wrapper around golang-migrate for
// running database schema migrations.
//
// The API server applies pending migrations at startup; the manage CLI
// exposes the same runner for explicit up, down and version commands.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers "pgx5" scheme for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// file source reads .sql files from disk.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Runner applies the SQL files found under a directory to one database.
type Runner struct {
	databaseURL string
	sourceURL   string
	logger      *slog.Logger
}

// NewRunner prepares a runner for dsn and the migrations directory at path.
func NewRunner(dsn, path string, logger *slog.Logger) *Runner {
	return &Runner{
		databaseURL: toPgx5DSN(dsn),
		sourceURL:   "file://" + path,
		logger:      logger,
	}
}

// RunUp applies all pending UP migrations. Kept as the one-call form used at startup.
func RunUp(dsn, path string, logger *slog.Logger) error {
	return NewRunner(dsn, path, logger).Up()
}

// Up applies all pending migrations.
func (runner *Runner) Up() error {
	return runner.with(func(migrator *migrate.Migrate, from uint) error {
		if err := migrator.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				runner.logger.Info("migration_already_up_to_date")
				return nil
			}
			return fmt.Errorf("migration: up failed: %w", err)
		}
		runner.logVersion(migrator, from)
		return nil
	})
}

// Down rolls back the given number of migrations.
func (runner *Runner) Down(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("migration: steps must be positive, got %d", steps)
	}
	return runner.with(func(migrator *migrate.Migrate, from uint) error {
		if err := migrator.Steps(-steps); err != nil {
			return fmt.Errorf("migration: down failed: %w", err)
		}
		runner.logVersion(migrator, from)
		return nil
	})
}

// Version returns the applied schema version and its dirty flag.
func (runner *Runner) Version() (uint, bool, error) {
	var (
		version uint
		dirty   bool
	)
	err := runner.with(func(migrator *migrate.Migrate, _ uint) error {
		var err error
		version, dirty, err = migrator.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		return err
	})
	return version, dirty, err
}

// with opens a migrator, refuses dirty databases and always closes it.
func (runner *Runner) with(action func(migrator *migrate.Migrate, from uint) error) error {
	migrator, err := migrate.New(runner.sourceURL, runner.databaseURL)
	if err != nil {
		return fmt.Errorf("migration: failed to initialize: %w", err)
	}
	defer func() {
		sourceError, dbError := migrator.Close()
		if sourceError != nil {
			runner.logger.Error("migration_source_close_failed", slog.Any("error", sourceError))
		}
		if dbError != nil {
			runner.logger.Error("migration_db_close_failed", slog.Any("error", dbError))
		}
	}()

	migrator.Log = &migrateLogger{logger: runner.logger}

	currentVersion, isDirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration: failed to get current version: %w", err)
	}
	if isDirty {
		return fmt.Errorf("migration: database is in a dirty state at version %d (manual intervention required)", currentVersion)
	}

	return action(migrator, currentVersion)
}

func (runner *Runner) logVersion(migrator *migrate.Migrate, from uint) {
	newVersion, _, _ := migrator.Version()
	runner.logger.Info("migration_successful",
		slog.Int("from_version", int(from)),
		slog.Int("to_version", int(newVersion)),
	)
}

// toPgx5DSN rewrites postgres:// and postgresql:// URLs to the pgx5:// scheme
// golang-migrate expects.
func toPgx5DSN(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}

// migrateLogger adapts golang-migrate's logger interface to slog.
type migrateLogger struct {
	logger  *slog.Logger
	verbose bool
}

// Printf implements migrate.Logger.
func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Verbose implements migrate.Logger.
func (l *migrateLogger) Verbose() bool {
	return l.verbose
}
