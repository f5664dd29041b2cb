package middleware

import (
	"net/http"
	"strings"

	"vet-records/internal/domain/schema"
	"vet-records/internal/ports/auth"
)

// roleAccess: entidades visibles por rol.
var roleAccess = map[string][]schema.EntityType{
	auth.RoleAdmin:     {schema.Owner, schema.Pet, schema.Appointment, schema.Invoice},
	auth.RoleReception: {schema.Owner, schema.Pet, schema.Appointment},
	auth.RoleVet:       {schema.Pet, schema.Appointment},
}

func CanAccess(role string, entity schema.EntityType) bool {
	for _, e := range roleAccess[strings.ToLower(strings.TrimSpace(role))] {
		if e == entity {
			return true
		}
	}
	return false
}

// RequireAccess: 401 sin identidad, 403 si el rol no alcanza a la entidad.
func RequireAccess(entity schema.EntityType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetClaims(r.Context())
			if !ok || strings.TrimSpace(claims.UserID) == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !CanAccess(claims.Role, entity) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
