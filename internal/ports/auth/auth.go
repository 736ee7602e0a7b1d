// Package auth define el contrato de verificación de sesión.
// Los adapters (jwtverify en prod, el modo dev del middleware) producen
// Claims; el resto del sistema solo consume UserID.
package auth

import "context"

// Claims es la identidad extraída de un token de sesión válido.
type Claims struct {
	UserID string
	Email  string
}

// TokenVerifier valida un token crudo y devuelve sus claims.
// Token inválido o vencido => error; el caller decide el status HTTP.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
