// Package uniqueness protege los campos únicos en dos fases: una consulta previa
// (error legible por campo) y la reclasificación del error del store tras la
// escritura, que cubre la ventana de carrera entre escritores concurrentes.
package uniqueness

import (
	"context"
	"fmt"
	"strings"

	"vet-records/internal/domain/failure"
	"vet-records/internal/domain/schema"
	"vet-records/internal/ports/store"
)

// Finder consulta si un valor ya está tomado por otra fila.
// excludeID <= 0 significa "no excluir ninguna".
type Finder interface {
	Taken(ctx context.Context, table, column string, value any, idColumn string, excludeID int64) (bool, error)
}

// Classifier extrae violaciones estructuradas de errores del store.
type Classifier interface {
	Violation(err error) (store.Violation, bool)
}

type Guard struct {
	finder     Finder
	classifier Classifier
}

func New(finder Finder, classifier Classifier) *Guard {
	return &Guard{finder: finder, classifier: classifier}
}

// PreCheck devuelve *failure.DuplicateKeyError si algún valor ya existe.
// Valores vacíos no se verifican: se guardan como NULL.
func (g *Guard) PreCheck(ctx context.Context, meta *schema.Meta, values []schema.UniqueValue, selfID int64) error {
	for _, v := range values {
		if strings.TrimSpace(v.Text) == "" {
			continue
		}
		taken, err := g.finder.Taken(ctx, meta.Table, v.Unique.Column, v.Arg, meta.IDColumn, selfID)
		if err != nil {
			return fmt.Errorf("unique check %s.%s: %w", meta.Table, v.Unique.Column, err)
		}
		if taken {
			return duplicate(meta, v.Unique)
		}
	}
	return nil
}

// Reconcile traduce err a *failure.DuplicateKeyError cuando nombra una restricción
// única de meta. Devuelve nil si err no corresponde a ninguna.
func (g *Guard) Reconcile(meta *schema.Meta, err error) error {
	if err == nil || len(meta.Unique) == 0 {
		return nil
	}

	if g.classifier != nil {
		if v, ok := g.classifier.Violation(err); ok && v.Unique {
			if u, ok := meta.UniqueByConstraint(v.Constraint); ok {
				return duplicate(meta, u)
			}
			if u, ok := meta.UniqueByColumn(v.Table, v.Column); ok {
				return duplicate(meta, u)
			}
		}
	}

	// fallback: drivers que solo exponen texto
	msg := strings.ToLower(err.Error())
	for _, u := range meta.Unique {
		if strings.Contains(msg, strings.ToLower(u.Constraint)) ||
			strings.Contains(msg, strings.ToLower(meta.Table+"."+u.Column)) {
			return duplicate(meta, u)
		}
	}
	return nil
}

func duplicate(meta *schema.Meta, u schema.Unique) error {
	return &failure.DuplicateKeyError{Entity: string(meta.Type), Field: u.Field}
}
