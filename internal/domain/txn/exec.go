package txn

import (
	"context"
	"database/sql"
)

// Exec devuelve un WriteFunc que corre una sentencia y reporta las filas afectadas.
func Exec(query string, args ...any) WriteFunc {
	return func(ctx context.Context, tx *sql.Tx) (Result, error) {
		r, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return Result{}, err
		}
		n, err := r.RowsAffected()
		if err != nil {
			return Result{}, err
		}
		return Result{RowsAffected: n}, nil
	}
}

// InsertReturning corre un INSERT ... RETURNING <id>.
func InsertReturning(query string, args ...any) WriteFunc {
	return func(ctx context.Context, tx *sql.Tx) (Result, error) {
		var id int64
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return Result{}, err
		}
		return Result{RowsAffected: 1, ID: id}, nil
	}
}
