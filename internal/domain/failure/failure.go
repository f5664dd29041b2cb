// Package failure define la taxonomía de errores que devuelven los servicios de entidades.
package failure

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrUnsupported = errors.New("operation not supported")
)

// Kind clasifica una ValidationError.
type Kind string

const (
	KindMissing   Kind = "missing"
	KindFormat    Kind = "format"
	KindNumber    Kind = "number"
	KindReference Kind = "reference"
)

// ValidationError: error corregible por quien llama (un campo + motivo legible).
// Con Kind == KindReference representa una referencia colgante o inactiva.
type ValidationError struct {
	Field  string
	Reason string
	Kind   Kind

	// RefID solo aplica a KindReference.
	RefID int64
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Referential() bool {
	return e.Kind == KindReference
}

// DuplicateKeyError indica que el valor de un campo único ya está en uso.
type DuplicateKeyError struct {
	Entity string
	Field  string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s: %s already exists", e.Entity, e.Field)
}

// FatalError envuelve una falla no clasificada del store.
// Error() no expone el error original; el detalle queda en logs bajo Incident.
type FatalError struct {
	Entity   string
	Action   string
	Incident string
	Err      error
}

func NewFatal(entity, action string, err error) *FatalError {
	return &FatalError{
		Entity:   entity,
		Action:   action,
		Incident: uuid.NewString(),
		Err:      err,
	}
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s %s: operation failed, check logs (incident %s)", e.Entity, e.Action, e.Incident)
}

func (e *FatalError) Unwrap() error { return e.Err }

func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

func IsReferential(err error) bool {
	ve, ok := AsValidation(err)
	return ok && ve.Referential()
}

func AsDuplicate(err error) (*DuplicateKeyError, bool) {
	var de *DuplicateKeyError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

func AsFatal(err error) (*FatalError, bool) {
	var fe *FatalError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// IsDomain reporta si err ya es un resultado de dominio (validación o duplicado)
// y no debe reclasificarse como fatal.
func IsDomain(err error) bool {
	if _, ok := AsValidation(err); ok {
		return true
	}
	_, ok := AsDuplicate(err)
	return ok
}
