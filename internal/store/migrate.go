package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// Migrate applies every pending up migration found under migrations/ in fsys.
// Applied versions are tracked in the schema_migrations table.
func (s *Store) Migrate(ctx context.Context, fsys fs.FS) error {
	return s.runMigrations(ctx, fsys, "up", (*migrate.Migrate).Up)
}

// MigrateDown rolls back every applied migration.
func (s *Store) MigrateDown(ctx context.Context, fsys fs.FS) error {
	return s.runMigrations(ctx, fsys, "down", (*migrate.Migrate).Down)
}

func (s *Store) runMigrations(ctx context.Context, fsys fs.FS, direction string, step func(*migrate.Migrate) error) error {
	src, err := iofs.New(fsys, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	target, err := migrateURL(s.dbURL)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, target)
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			s.logger.Warn("close migrator", zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
		}
	}()
	m.Log = migrateLogger{s.logger.Sugar()}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.GracefulStop <- true
		case <-done:
		}
	}()

	if err := step(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		s.logger.Info("schema has no migrations applied", zap.String("direction", direction))
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	default:
		s.logger.Info("schema migrated", zap.String("direction", direction), zap.Uint("version", version), zap.Bool("dirty", dirty))
	}
	return nil
}

// migrateURL points a postgres:// DSN at the pgx v5 migrate driver.
func migrateURL(dbURL string) (string, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "", fmt.Errorf("parse db url: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		u.Scheme = "pgx5"
	case "pgx5":
	default:
		return "", fmt.Errorf("unsupported db url scheme %q", u.Scheme)
	}
	return u.String(), nil
}

type migrateLogger struct {
	logger *zap.SugaredLogger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Debugf(format, v...)
}

func (l migrateLogger) Verbose() bool {
	return false
}
