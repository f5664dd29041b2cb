// Package validation decide si un registro candidato es admisible.
package validation

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"vet-records/internal/domain/failure"
	"vet-records/internal/domain/schema"
)

const (
	ReasonRequired  = "is required"
	ReasonDigits    = "must contain only digits"
	ReasonEmail     = "must be a valid email (user@domain.tld)"
	ReasonCode      = "must contain only letters, digits or hyphens"
	ReasonDate      = "must be a date YYYY-MM-DD"
	ReasonTimestamp = "must be a timestamp YYYY-MM-DD HH:MM[:SS]"
	ReasonNumber    = "must be a non-negative number"
)

var (
	emailRe = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)
	codeRe  = regexp.MustCompile(`^[A-Za-z0-9\-]+$`)
)

// Lookup es la consulta de solo lectura usada para las FKs.
type Lookup interface {
	Exists(ctx context.Context, source, column string, id int64) (bool, error)
}

type Validator struct {
	lookup Lookup
}

func New(lookup Lookup) *Validator {
	return &Validator{lookup: lookup}
}

// Validate aplica las reglas en orden fijo: obligatorios, formatos, numéricos,
// referencias. Devuelve la primera violación como *failure.ValidationError.
// Cualquier otro error proviene del lookup.
func (v *Validator) Validate(ctx context.Context, meta *schema.Meta, values []schema.Value) error {
	for _, check := range []func([]schema.Value) error{checkRequired, checkFormats, checkNumbers} {
		if err := check(values); err != nil {
			return err
		}
	}
	return v.checkReferences(ctx, values)
}

func checkRequired(values []schema.Value) error {
	for _, val := range values {
		if val.Field.Rule.Required && strings.TrimSpace(val.Text) == "" {
			return invalid(val.Field, failure.KindMissing, ReasonRequired)
		}
	}
	return nil
}

func checkFormats(values []schema.Value) error {
	for _, val := range values {
		s := strings.TrimSpace(val.Text)
		if s == "" {
			continue
		}

		switch val.Field.Rule.Format {
		case schema.FormatDigits:
			if !allDigits(s) {
				return invalid(val.Field, failure.KindFormat, ReasonDigits)
			}
		case schema.FormatEmail:
			if !emailRe.MatchString(s) {
				return invalid(val.Field, failure.KindFormat, ReasonEmail)
			}
		case schema.FormatCode:
			if !codeRe.MatchString(s) {
				return invalid(val.Field, failure.KindFormat, ReasonCode)
			}
		case schema.FormatDate:
			if _, ok := schema.ParseDate(s); !ok {
				return invalid(val.Field, failure.KindFormat, ReasonDate)
			}
		case schema.FormatTimestamp:
			if _, ok := schema.ParseTimestamp(s); !ok {
				return invalid(val.Field, failure.KindFormat, ReasonTimestamp)
			}
		}
	}
	return nil
}

func checkNumbers(values []schema.Value) error {
	for _, val := range values {
		if !val.Field.Rule.Number {
			continue
		}
		s := strings.TrimSpace(val.Text)
		if s == "" {
			// opcional y vacío; los obligatorios ya fallaron antes
			continue
		}
		if _, ok := ParseNonNegative(s); !ok {
			return invalid(val.Field, failure.KindNumber, ReasonNumber)
		}
	}
	return nil
}

func (v *Validator) checkReferences(ctx context.Context, values []schema.Value) error {
	for _, val := range values {
		ref := val.Field.Rule.Ref
		if ref == nil {
			continue
		}

		id, err := strconv.ParseInt(strings.TrimSpace(val.Text), 10, 64)
		if err != nil || id <= 0 {
			return referenceError(val.Field, ref, id)
		}

		ok, err := v.lookup.Exists(ctx, ref.Source, ref.Column, id)
		if err != nil {
			return fmt.Errorf("lookup %s.%s=%d: %w", ref.Source, ref.Column, id, err)
		}
		if !ok {
			return referenceError(val.Field, ref, id)
		}
	}
	return nil
}

// ParseNonNegative interpreta s como número finito >= 0.
func ParseNonNegative(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func invalid(f schema.Field, kind failure.Kind, reason string) error {
	return &failure.ValidationError{Field: f.Name, Reason: reason, Kind: kind}
}

func referenceError(f schema.Field, ref *schema.Reference, id int64) error {
	reason := fmt.Sprintf("does not exist: %d", id)
	if ref.ActiveOnly {
		reason = fmt.Sprintf("invalid or inactive %s: %d", ref.Column, id)
	}
	return &failure.ValidationError{
		Field:  f.Name,
		Reason: reason,
		Kind:   failure.KindReference,
		RefID:  id,
	}
}
