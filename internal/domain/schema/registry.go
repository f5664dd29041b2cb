// Package schema describe cada tipo de entidad: campos, reglas, restricciones de
// unicidad y referencias. Es data pura; no hace I/O.
package schema

import (
	"fmt"
	"strings"
)

type EntityType string

const (
	Owner       EntityType = "owner"
	Pet         EntityType = "pet"
	Appointment EntityType = "appointment"
	Invoice     EntityType = "invoice"
)

// Format es la regla de forma que se aplica a un campo no vacío.
type Format int

const (
	FormatNone Format = iota
	FormatDigits
	FormatEmail
	FormatCode
	FormatDate
	FormatTimestamp
)

// Reference apunta a la tabla o vista contra la que se valida una FK.
type Reference struct {
	Source string
	Column string
	// ActiveOnly: Source ya filtra filas activas (vistas vw_*_active).
	ActiveOnly bool
}

type Rule struct {
	Required bool
	Format   Format
	// Number: el valor debe interpretarse como número >= 0.
	Number bool
	Ref    *Reference
}

type Field struct {
	Name   string
	Column string
	Rule   Rule
}

// Unique asocia una restricción del store con el campo que protege.
type Unique struct {
	Field      string
	Column     string
	Constraint string
}

type Meta struct {
	Type     EntityType
	Table    string
	IDColumn string
	Fields   []Field
	Unique   []Unique

	SoftDelete bool
	Updatable  bool

	// Identity: campos que se agregan a los logs de escritura.
	Identity []string
}

func (m *Meta) Field(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// UniqueByConstraint resuelve el nombre de una restricción (case-insensitive).
func (m *Meta) UniqueByConstraint(name string) (Unique, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Unique{}, false
	}
	for _, u := range m.Unique {
		if strings.ToLower(u.Constraint) == name {
			return u, true
		}
	}
	return Unique{}, false
}

func (m *Meta) UniqueByColumn(table, column string) (Unique, bool) {
	if !strings.EqualFold(table, m.Table) {
		return Unique{}, false
	}
	for _, u := range m.Unique {
		if strings.EqualFold(u.Column, column) {
			return u, true
		}
	}
	return Unique{}, false
}

// Registry indexa las entidades por tipo.
type Registry struct {
	byType map[EntityType]*Meta
	order  []EntityType
}

func NewRegistry(metas ...*Meta) (*Registry, error) {
	r := &Registry{byType: make(map[EntityType]*Meta, len(metas))}
	for _, m := range metas {
		if m == nil || m.Type == "" {
			return nil, fmt.Errorf("schema: entity without type")
		}
		if _, dup := r.byType[m.Type]; dup {
			return nil, fmt.Errorf("schema: entity %s registered twice", m.Type)
		}
		if err := m.check(); err != nil {
			return nil, err
		}
		r.byType[m.Type] = m
		r.order = append(r.order, m.Type)
	}
	return r, nil
}

func (r *Registry) Lookup(t EntityType) (*Meta, bool) {
	m, ok := r.byType[t]
	return m, ok
}

func (r *Registry) Types() []EntityType {
	return append([]EntityType(nil), r.order...)
}

// ByConstraint busca en todas las entidades la restricción única con ese nombre.
func (r *Registry) ByConstraint(name string) (*Meta, Unique, bool) {
	for _, t := range r.order {
		m := r.byType[t]
		if u, ok := m.UniqueByConstraint(name); ok {
			return m, u, true
		}
	}
	return nil, Unique{}, false
}

func (m *Meta) check() error {
	if m.Table == "" || m.IDColumn == "" {
		return fmt.Errorf("schema: %s needs table and id column", m.Type)
	}
	seen := map[string]struct{}{}
	for _, f := range m.Fields {
		if f.Name == "" || f.Column == "" {
			return fmt.Errorf("schema: %s has a field without name or column", m.Type)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("schema: %s.%s declared twice", m.Type, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	for _, u := range m.Unique {
		f, ok := m.Field(u.Field)
		if !ok || f.Column != u.Column {
			return fmt.Errorf("schema: %s unique %s does not match a field", m.Type, u.Constraint)
		}
	}
	for _, name := range m.Identity {
		if _, ok := m.Field(name); !ok {
			return fmt.Errorf("schema: %s identity field %s unknown", m.Type, name)
		}
	}
	return nil
}
