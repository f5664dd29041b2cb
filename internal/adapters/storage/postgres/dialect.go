package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"vet-records/internal/ports/store"
)

// SQLSTATE: clase 23 = integrity constraint violation.
const (
	integrityClass      = "23"
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type Dialect struct{}

func (Dialect) Name() string { return store.DriverPostgres }

// Rebind reemplaza cada '?' fuera de literales por $1, $2, ...
func (Dialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func (Dialect) Violation(err error) (store.Violation, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return store.Violation{}, false
	}
	if !strings.HasPrefix(pgErr.Code, integrityClass) {
		return store.Violation{}, false
	}
	return store.Violation{
		Code:       pgErr.Code,
		Constraint: pgErr.ConstraintName,
		Table:      pgErr.TableName,
		Column:     pgErr.ColumnName,
		Unique:     pgErr.Code == uniqueViolation,
		ForeignKey: pgErr.Code == foreignKeyViolation,
	}, true
}

// SoftDelete invoca sp_soft_delete (ver migración), que devuelve la confirmación.
func (Dialect) SoftDelete(ctx context.Context, tx *sql.Tx, table, idColumn string, id int64) (string, error) {
	var msg string
	err := tx.QueryRowContext(ctx, `SELECT sp_soft_delete($1, $2, $3)`, table, idColumn, id).Scan(&msg)
	return msg, err
}
