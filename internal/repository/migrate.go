package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrDirtySchema is returned when a previous migration stopped halfway.
// The schema has to be repaired by hand before the service can start.
var ErrDirtySchema = errors.New("schema is dirty")

// schemaMigrator is the part of *migrate.Migrate used to bring a schema up.
type schemaMigrator interface {
	Version() (uint, bool, error)
	Up() error
}

// Migrate applies every pending migration through a connection borrowed
// from db. The pool itself stays open.
func Migrate(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		source.Close()
		return fmt.Errorf("acquire connection: %w", err)
	}

	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
	if err != nil {
		source.Close()
		conn.Close()
		return fmt.Errorf("init migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		source.Close()
		driver.Close()
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	return applyMigrations(m, logger)
}

func applyMigrations(m schemaMigrator, logger *zap.Logger) error {
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read schema version: %w", err)
	}

	if dirty {
		logger.Error("schema is dirty, refusing to migrate", zap.Uint("version", version))
		return fmt.Errorf("%w at version %d", ErrDirtySchema, version)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("schema is up to date", zap.Uint("version", version))
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	newVersion, _, _ := m.Version()
	logger.Info("schema migrated", zap.Uint("version", newVersion))

	return nil
}
