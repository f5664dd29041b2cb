package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"vet-records/internal/ports/store"
)

const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// Open abre (o crea) la base en path. Se usa una sola conexión: SQLite
// serializa escrituras y así las transacciones no compiten por el lock.
func Open(path string) (*sql.DB, error) {
	path = strings.TrimPrefix(strings.TrimSpace(path), "file:")
	if path == "" {
		path = "vet-records.db"
	}
	if raw, _, _ := strings.Cut(path, "?"); raw == ":memory:" {
		return nil, fmt.Errorf("sqlite: in-memory databases are not supported, use a file path")
	}

	if dir := filepath.Dir(FilePath(path)); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	db, err := sql.Open(store.DriverSQLite, DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// DSN agrega los pragmas requeridos (FKs, busy timeout) a path.
func DSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return "file:" + path + sep + pragmas
}

// FilePath quita los parámetros de query de un DSN.
func FilePath(dsn string) string {
	p, _, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	return p
}
