// Package query implementa las consultas de solo lectura que usan la validación
// de referencias y el chequeo previo de unicidad.
package query

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"vet-records/internal/ports/store"
)

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

type Runner struct {
	db      *sql.DB
	dialect store.Dialect
}

func NewRunner(db *sql.DB, dialect store.Dialect) *Runner {
	return &Runner{db: db, dialect: dialect}
}

// Exists reporta si source tiene una fila con column = id.
func (r *Runner) Exists(ctx context.Context, source, column string, id int64) (bool, error) {
	if err := checkIdent(source, column); err != nil {
		return false, err
	}
	q := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ? LIMIT 1", source, column)
	return r.one(ctx, q, id)
}

// Taken reporta si otra fila de table ya usa value en column.
func (r *Runner) Taken(ctx context.Context, table, column string, value any, idColumn string, excludeID int64) (bool, error) {
	if err := checkIdent(table, column, idColumn); err != nil {
		return false, err
	}
	if excludeID <= 0 {
		q := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ? LIMIT 1", table, column)
		return r.one(ctx, q, value)
	}
	q := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ? AND %s <> ? LIMIT 1", table, column, idColumn)
	return r.one(ctx, q, value, excludeID)
}

func (r *Runner) one(ctx context.Context, q string, args ...any) (bool, error) {
	var x int
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(q), args...).Scan(&x)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func checkIdent(names ...string) error {
	for _, n := range names {
		if !identRe.MatchString(n) {
			return fmt.Errorf("query: invalid identifier %q", n)
		}
	}
	return nil
}
