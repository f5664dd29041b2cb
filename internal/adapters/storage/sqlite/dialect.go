package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"vet-records/internal/ports/store"
)

// "UNIQUE constraint failed: owner.document_id"
var uniqueMsgRe = regexp.MustCompile(`UNIQUE constraint failed: ([a-z_][a-z0-9_]*)\.([a-z_][a-z0-9_]*)`)

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

type Dialect struct{}

func (Dialect) Name() string { return store.DriverSQLite }

func (Dialect) Rebind(query string) string { return query }

func (Dialect) Violation(err error) (store.Violation, bool) {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return store.Violation{}, false
	}
	code := se.Code()
	if code&0xff != sqlite3.SQLITE_CONSTRAINT {
		return store.Violation{}, false
	}

	v := store.Violation{
		Code:       strconv.Itoa(code),
		Unique:     code == sqlite3.SQLITE_CONSTRAINT_UNIQUE,
		ForeignKey: code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY,
	}
	// ON DELETE RESTRICT se reporta como SQLITE_CONSTRAINT_TRIGGER (1811).
	if code == sqlite3.SQLITE_CONSTRAINT_TRIGGER && strings.Contains(se.Error(), "FOREIGN KEY constraint failed") {
		v.ForeignKey = true
	}
	// SQLite no expone el nombre de la restricción; solo tabla.columna en el texto.
	if m := uniqueMsgRe.FindStringSubmatch(se.Error()); m != nil {
		v.Table, v.Column = m[1], m[2]
	}
	return v, true
}

// SoftDelete emula el procedimiento de Postgres: UPDATE idempotente del flag
// y el mismo mensaje de confirmación.
func (Dialect) SoftDelete(ctx context.Context, tx *sql.Tx, table, idColumn string, id int64) (string, error) {
	if !identRe.MatchString(table) || !identRe.MatchString(idColumn) {
		return "", fmt.Errorf("sqlite: invalid identifier %s.%s", table, idColumn)
	}

	q := fmt.Sprintf("UPDATE %s SET is_active = 0 WHERE %s = ?", table, idColumn)
	res, err := tx.ExecContext(ctx, q, id)
	if err != nil {
		return "", err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return fmt.Sprintf("record %s=%d not found in %s", idColumn, id, table), nil
	}
	return fmt.Sprintf("record %s=%d deactivated in %s", idColumn, id, table), nil
}
