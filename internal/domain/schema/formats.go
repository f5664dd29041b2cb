package schema

import (
	"strings"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

var timestampLayouts = []string{
	TimestampLayout,
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseTimestamp acepta "YYYY-MM-DD HH:MM[:SS]" (con espacio o 'T').
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeTimestamp devuelve s en TimestampLayout; si no parsea lo deja igual.
func NormalizeTimestamp(s string) string {
	t, ok := ParseTimestamp(s)
	if !ok {
		return strings.TrimSpace(s)
	}
	return t.Format(TimestampLayout)
}

func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
