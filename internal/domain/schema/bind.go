package schema

import "fmt"

// Accessor lee un campo de un registro tipado.
// Text es lo que ve el validador; Arg es lo que se envía a la columna.
type Accessor[T any] struct {
	Text func(T) string
	Arg  func(T) any
}

// Value es un campo ya extraído de un registro, en el orden de Meta.Fields.
type Value struct {
	Field Field
	Text  string
	Arg   any
}

type UniqueValue struct {
	Unique Unique
	Text   string
	Arg    any
}

// Entity enlaza un Meta con un tipo de registro concreto.
// El mapeo campo -> accessor se resuelve una sola vez en Bind.
type Entity[T any] struct {
	Meta *Meta

	accessors []Accessor[T]
	unique    []int
	identity  []int
}

// Bind falla si falta un accessor para algún campo declarado o si sobra alguno.
func Bind[T any](m *Meta, accessors map[string]Accessor[T]) (*Entity[T], error) {
	if len(accessors) != len(m.Fields) {
		return nil, fmt.Errorf("schema: %s expects %d accessors, got %d", m.Type, len(m.Fields), len(accessors))
	}

	e := &Entity[T]{Meta: m, accessors: make([]Accessor[T], len(m.Fields))}
	index := make(map[string]int, len(m.Fields))
	for i, f := range m.Fields {
		a, ok := accessors[f.Name]
		if !ok || a.Text == nil || a.Arg == nil {
			return nil, fmt.Errorf("schema: %s.%s has no accessor", m.Type, f.Name)
		}
		e.accessors[i] = a
		index[f.Name] = i
	}
	for _, u := range m.Unique {
		e.unique = append(e.unique, index[u.Field])
	}
	for _, name := range m.Identity {
		e.identity = append(e.identity, index[name])
	}
	return e, nil
}

func MustBind[T any](m *Meta, accessors map[string]Accessor[T]) *Entity[T] {
	e, err := Bind(m, accessors)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Entity[T]) Values(rec T) []Value {
	out := make([]Value, len(e.accessors))
	for i, a := range e.accessors {
		out[i] = Value{Field: e.Meta.Fields[i], Text: a.Text(rec), Arg: a.Arg(rec)}
	}
	return out
}

// Args devuelve los valores de columna en el orden de Columns.
func (e *Entity[T]) Args(rec T) []any {
	out := make([]any, len(e.accessors))
	for i, a := range e.accessors {
		out[i] = a.Arg(rec)
	}
	return out
}

func (e *Entity[T]) Columns() []string {
	out := make([]string, len(e.Meta.Fields))
	for i, f := range e.Meta.Fields {
		out[i] = f.Column
	}
	return out
}

func (e *Entity[T]) UniqueValues(rec T) []UniqueValue {
	out := make([]UniqueValue, 0, len(e.unique))
	for j, i := range e.unique {
		a := e.accessors[i]
		out = append(out, UniqueValue{Unique: e.Meta.Unique[j], Text: a.Text(rec), Arg: a.Arg(rec)})
	}
	return out
}

// Identity devuelve los campos identificatorios para logs.
func (e *Entity[T]) Identity(rec T) map[string]any {
	out := make(map[string]any, len(e.identity))
	for _, i := range e.identity {
		out[e.Meta.Fields[i].Name] = e.accessors[i].Text(rec)
	}
	return out
}
