package auth

import "context"

// Roles de la clínica.
const (
	RoleAdmin     = "admin"
	RoleReception = "recepcion"
	RoleVet       = "veterinario"
)

// Claims representa la identidad extraída del token.
type Claims struct {
	UserID string
	Email  string
	Role   string
}

// AuthVerifier valida un bearer token; nil en el router significa modo dev.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
