// Package migrations holds the versioned, forward-only schema pipeline for
// the medication database. Each step is an embedded SQL file pair; the
// applied version is tracked in the database itself, so re-running the
// pipeline on an up-to-date database is a no-op.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var migrationFiles embed.FS

// MigrateUp applies all pending migrations, bringing the database to the
// latest schema version. Safe to run on every open.
func MigrateUp(db *sql.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}
	// m is not closed: closing it would close the db connection, which the
	// caller owns.

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("applying migrations: %w", err)
	}

	return nil
}

// MigrateTo migrates the database to a specific version. Used by tests to
// build fixture databases at historical schema versions.
func MigrateTo(db *sql.DB, version uint) error {
	m, err := newMigrate(db)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}

	if err := m.Migrate(version); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("migrating to version %d: %w", version, err)
	}

	return nil
}

// SchemaVersion returns the currently applied schema version and whether the
// database is dirty (a previous migration failed partway). A database with
// no schema at all reports version 0.
func SchemaVersion(db *sql.DB) (uint, bool, error) {
	m, err := newMigrate(db)
	if err != nil {
		return 0, false, fmt.Errorf("creating migrate instance: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("reading schema version: %w", err)
	}

	return version, dirty, nil
}

// newMigrate wires the embedded SQL files and the SQLite driver into a
// migrate instance for the given connection.
func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	sourceDriver, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return nil, fmt.Errorf("reading migration files: %w", err)
	}

	dbDriver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		sourceDriver.Close()
		return nil, fmt.Errorf("creating database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", dbDriver)
	if err != nil {
		sourceDriver.Close()
		return nil, fmt.Errorf("creating migrate instance: %w", err)
	}

	return m, nil
}
