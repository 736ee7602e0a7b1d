package middleware

import (
	"context"
	"net/http"
	"strings"

	"care-journal/internal/ports/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// Header para inyectar identidad en modo dev (sin verifier).
const debugUserHeader = "X-Debug-User-ID"

// AuthContext resuelve la identidad del request y la deja en el contexto.
// Con verifier: Bearer token válido => claims. Sin verifier (dev): el header
// X-Debug-User-ID hace de identidad. En ambos casos un request sin identidad
// sigue su curso; cada handler decide si exige auth (la vista pública de
// invitación no la exige).
func AuthContext(verifier auth.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := resolveClaims(r, verifier)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveClaims(r *http.Request, verifier auth.TokenVerifier) (auth.Claims, bool) {
	if verifier == nil {
		uid := strings.TrimSpace(r.Header.Get(debugUserHeader))
		if uid == "" {
			return auth.Claims{}, false
		}
		return auth.Claims{UserID: uid}, true
	}

	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return auth.Claims{}, false
	}
	claims, err := verifier.Verify(r.Context(), token)
	if err != nil {
		// Token inválido se trata igual que ausencia de token: el handler
		// responde 401 al no encontrar claims.
		return auth.Claims{}, false
	}
	return claims, true
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(auth.Claims)
	return c, ok
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
