package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// seedTitle and seedRecipe describe the drink created by Reset.
const (
	seedTitle  = "water"
	seedRecipe = `[{"name":"water","color":"blue","parts":1}]`
)

// newMigrator wires the embedded migrations to db.
// The returned Migrate must not be closed, as that would close db as well.
func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations: %w", err)
	}

	drv, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// MigrateSchema applies all pending migrations.
// This is idempotent - safe to call multiple times.
func MigrateSchema(db *sql.DB) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Reset drops and recreates the schema, then seeds a single default drink.
// Every existing drink is lost.
func (s *SQLiteStorage) Reset(ctx context.Context) error {
	m, err := newMigrator(s.db)
	if err != nil {
		return err
	}

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to revert migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO drinks (title, recipe) VALUES (?, ?)",
		seedTitle, seedRecipe)
	if err != nil {
		return fmt.Errorf("failed to seed drinks: %w", err)
	}

	return nil
}
