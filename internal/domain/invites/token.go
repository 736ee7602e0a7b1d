package invites

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenBytes rinde tokens de 32 caracteres exactos en base64 URL-safe.
const tokenBytes = 24

// TokenGenerator produce tokens opacos de largo fijo. Inyectable en tests.
type TokenGenerator func() (string, error)

// NewToken genera un token criptográficamente no adivinable.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("invite token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
