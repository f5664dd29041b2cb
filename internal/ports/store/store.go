package store

import (
	"context"
	"database/sql"
)

// Drivers soportados (nombres de database/sql).
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// Violation es una violación de integridad reportada por el store.
type Violation struct {
	Code       string
	Constraint string
	Table      string
	Column     string
	Unique     bool
	ForeignKey bool
}

// Dialect encapsula lo que cambia entre stores: placeholders, errores estructurados
// y el procedimiento de baja lógica.
type Dialect interface {
	Name() string

	// Rebind traduce placeholders '?' al formato del driver.
	Rebind(query string) string

	// Violation extrae una violación de integridad del error, si la hay.
	Violation(err error) (Violation, bool)

	// SoftDelete ejecuta el procedimiento de baja lógica dentro de tx y devuelve
	// su mensaje de confirmación.
	SoftDelete(ctx context.Context, tx *sql.Tx, table, idColumn string, id int64) (string, error)
}
