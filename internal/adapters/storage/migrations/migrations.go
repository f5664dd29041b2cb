// Package migrations aplica el esquema embebido con golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"vet-records/internal/adapters/storage"
	"vet-records/internal/adapters/storage/sqlite"
	"vet-records/internal/ports/store"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Up aplica todas las migraciones pendientes. Sin cambios no es error.
func Up(driver, dsn string) error {
	m, err := open(driver, dsn)
	if err != nil {
		return err
	}
	defer closeQuietly(m)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Down revierte una migración.
func Down(driver, dsn string) error {
	m, err := open(driver, dsn)
	if err != nil {
		return err
	}
	defer closeQuietly(m)

	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Version devuelve la versión aplicada (0 si no hay ninguna).
func Version(driver, dsn string) (uint, bool, error) {
	m, err := open(driver, dsn)
	if err != nil {
		return 0, false, err
	}
	defer closeQuietly(m)

	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migrate version: %w", err)
	}
	return v, dirty, nil
}

func open(driver, dsn string) (*migrate.Migrate, error) {
	dir, url, err := target(driver, dsn)
	if err != nil {
		return nil, err
	}

	src, err := iofs.New(files, dir)
	if err != nil {
		return nil, fmt.Errorf("migrations source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return nil, fmt.Errorf("migrate init: %w", err)
	}
	return m, nil
}

// target devuelve el directorio embebido y la URL de golang-migrate para el driver.
func target(driver, dsn string) (string, string, error) {
	switch storage.Normalize(driver) {
	case store.DriverPostgres:
		for _, prefix := range []string{"postgres://", "postgresql://"} {
			if strings.HasPrefix(dsn, prefix) {
				return "postgres", "pgx5://" + strings.TrimPrefix(dsn, prefix), nil
			}
		}
		if strings.HasPrefix(dsn, "pgx5://") {
			return "postgres", dsn, nil
		}
		return "", "", fmt.Errorf("migrate: postgres dsn must be a URL (postgres://...)")
	case store.DriverSQLite:
		return "sqlite", "sqlite://" + sqlite.FilePath(dsn), nil
	default:
		return "", "", fmt.Errorf("unknown db driver %q", driver)
	}
}

func closeQuietly(m *migrate.Migrate) {
	_, _ = m.Close()
}
