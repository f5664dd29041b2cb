package middleware

import (
	"context"
	"net/http"
	"strings"

	"vet-records/internal/ports/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

const (
	headerDebugUser = "X-Debug-User-ID"
	headerDebugRole = "X-Debug-Role"
)

// AuthContext resuelve la identidad (usuario + rol) y la deja en el contexto.
// Nunca corta el request: sin identidad, RequireAccess responde 401.
// Con verifier nil la identidad sale de los headers X-Debug-*.
func AuthContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := identify(r, verifier)
			if ok {
				r = r.WithContext(WithClaims(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func identify(r *http.Request, verifier auth.AuthVerifier) (auth.Claims, bool) {
	if verifier == nil {
		uid := strings.TrimSpace(r.Header.Get(headerDebugUser))
		if uid == "" {
			return auth.Claims{}, false
		}
		return auth.Claims{UserID: uid, Role: normalizeRole(r.Header.Get(headerDebugRole))}, true
	}

	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return auth.Claims{}, false
	}
	// token inválido o vencido = request anónimo
	claims, err := verifier.Verify(r.Context(), token)
	if err != nil {
		return auth.Claims{}, false
	}
	claims.Role = normalizeRole(claims.Role)
	return claims, true
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// GetClaims devuelve la identidad que dejó AuthContext, si hay.
func GetClaims(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(auth.Claims)
	return c, ok
}

// bearerToken extrae el token de "Authorization: Bearer <token>".
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
