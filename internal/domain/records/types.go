package records

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vet-records/internal/domain/schema"
	"vet-records/internal/domain/validation"
)

// Decimal acepta número o string en JSON y conserva el texto original,
// para que la validación (y no el decoder) reporte valores inválidos.
type Decimal string

func (d *Decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*d = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = Decimal(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decimal: %w", err)
	}
	*d = Decimal(n.String())
	return nil
}

func (d Decimal) String() string { return strings.TrimSpace(string(d)) }

// arg devuelve el float si parsea; si no, el texto (la validación ya lo habrá rechazado).
func (d Decimal) arg() any {
	if f, ok := validation.ParseNonNegative(d.String()); ok {
		return f
	}
	return d.String()
}

// timeText lee DATE/TIMESTAMP tanto de Postgres (time.Time) como de SQLite (texto).
type timeText struct {
	layout string
	value  string
	valid  bool
}

func (t *timeText) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.value, t.valid = "", false
	case time.Time:
		t.value, t.valid = v.Format(t.layout), true
	case string:
		t.value, t.valid = normalizeTime(t.layout, v), true
	case []byte:
		t.value, t.valid = normalizeTime(t.layout, string(v)), true
	default:
		return fmt.Errorf("timeText: unsupported type %T", src)
	}
	return nil
}

func normalizeTime(layout, s string) string {
	if layout == schema.DateLayout {
		if len(s) >= len(schema.DateLayout) {
			if t, ok := schema.ParseDate(s[:len(schema.DateLayout)]); ok {
				return t.Format(layout)
			}
		}
		return s
	}
	return schema.NormalizeTimestamp(s)
}

func dateCol() *timeText      { return &timeText{layout: schema.DateLayout} }
func timestampCol() *timeText { return &timeText{layout: schema.TimestampLayout} }

func text(s string) string { return strings.TrimSpace(s) }

// nullable manda NULL en lugar de "".
func nullable(s string) any {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return s
}

func idText(id int64) string { return strconv.FormatInt(id, 10) }

func nullString(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}
