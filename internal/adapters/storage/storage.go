// Package storage elige el driver configurado y devuelve el pool con su dialecto.
package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"vet-records/internal/adapters/storage/postgres"
	"vet-records/internal/adapters/storage/sqlite"
	"vet-records/internal/ports/store"
)

func Open(driver, dsn string, maxOpen int) (*sql.DB, store.Dialect, error) {
	switch Normalize(driver) {
	case store.DriverPostgres:
		db, err := postgres.Open(dsn, maxOpen)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, postgres.Dialect{}, nil
	case store.DriverSQLite:
		db, err := sqlite.Open(dsn)
		if err != nil {
			return nil, nil, err
		}
		return db, sqlite.Dialect{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown db driver %q", driver)
	}
}

// Normalize acepta alias comunes ("postgres", "sqlite3").
func Normalize(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "pgx", "postgres", "postgresql", "":
		return store.DriverPostgres
	case "sqlite", "sqlite3":
		return store.DriverSQLite
	default:
		return driver
	}
}
