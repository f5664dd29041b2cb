// Package testutil provee una base SQLite migrada por test.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"vet-records/internal/adapters/storage"
	"vet-records/internal/adapters/storage/migrations"
	"vet-records/internal/ports/store"
)

// DB es una base de test con el esquema completo aplicado.
type DB struct {
	*sql.DB
	Dialect store.Dialect
	DSN     string
}

// NewSQLite crea un archivo en t.TempDir(), aplica migraciones y lo cierra al final del test.
func NewSQLite(t *testing.T) *DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "vet.db")
	require.NoError(t, migrations.Up(store.DriverSQLite, dsn))

	db, dialect, err := storage.Open(store.DriverSQLite, dsn, 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &DB{DB: db, Dialect: dialect, DSN: dsn}
}

// SeedVet inserta un veterinario (no hay servicio para ellos) y devuelve su id.
func (d *DB) SeedVet(t *testing.T, name string, active bool) int64 {
	t.Helper()

	var id int64
	err := d.QueryRow(d.Dialect.Rebind(`INSERT INTO veterinarian (name, is_active) VALUES (?, ?) RETURNING vet_id`),
		name, active).Scan(&id)
	require.NoError(t, err)
	return id
}

// Count devuelve la cantidad de filas de table que cumplen where (puede ser "").
func (d *DB) Count(t *testing.T, table, where string, args ...any) int {
	t.Helper()

	q := "SELECT COUNT(*) FROM " + table
	if where != "" {
		q += " WHERE " + where
	}
	var n int
	require.NoError(t, d.QueryRow(d.Dialect.Rebind(q), args...).Scan(&n))
	return n
}
