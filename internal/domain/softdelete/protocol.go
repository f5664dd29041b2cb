// Package softdelete marca registros como inactivos en lugar de borrarlos.
package softdelete

import (
	"context"
	"database/sql"
	"fmt"

	"vet-records/internal/domain/failure"
	"vet-records/internal/domain/schema"
	"vet-records/internal/domain/txn"
)

// Procedure es el procedimiento del store que apaga el flag de actividad.
// Debe ser idempotente y devolver un mensaje de confirmación.
type Procedure interface {
	SoftDelete(ctx context.Context, tx *sql.Tx, table, idColumn string, id int64) (string, error)
}

type Protocol struct {
	coord *txn.Coordinator
	proc  Procedure
}

func New(coord *txn.Coordinator, proc Procedure) *Protocol {
	return &Protocol{coord: coord, proc: proc}
}

// Delete devuelve el mensaje del procedimiento, sin modificar.
// Llamarlo sobre un registro ya inactivo no es un error.
func (p *Protocol) Delete(ctx context.Context, meta *schema.Meta, id int64, fields map[string]any) (string, error) {
	if !meta.SoftDelete {
		return "", fmt.Errorf("%s soft delete: %w", meta.Type, failure.ErrUnsupported)
	}
	if id <= 0 {
		return "", &failure.ValidationError{Field: "id", Reason: "must be a positive integer", Kind: failure.KindFormat}
	}

	logFields := map[string]any{"id": id}
	for k, v := range fields {
		logFields[k] = v
	}

	res, err := p.coord.Execute(ctx, txn.Op{Entity: string(meta.Type), Action: txn.ActionSoftDelete, Fields: logFields},
		func(ctx context.Context, tx *sql.Tx) (txn.Result, error) {
			msg, err := p.proc.SoftDelete(ctx, tx, meta.Table, meta.IDColumn, id)
			if err != nil {
				return txn.Result{}, err
			}
			return txn.Result{ID: id, Message: msg}, nil
		}, nil)
	if err != nil {
		return "", err
	}
	return res.Message, nil
}
