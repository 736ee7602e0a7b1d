// Package jwtverify valida tokens HS256 emitidos por el servicio de cuentas.
package jwtverify

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"care-journal/internal/ports/auth"
)

var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Verifier struct {
	key []byte
}

var _ auth.TokenVerifier = (*Verifier)(nil)

func New(key []byte) *Verifier {
	return &Verifier{key: key}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	var c claims
	tok, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil || !tok.Valid {
		return auth.Claims{}, ErrInvalidToken
	}
	if c.Subject == "" {
		return auth.Claims{}, ErrInvalidToken
	}

	return auth.Claims{
		UserID: c.Subject,
		Email:  c.Email,
	}, nil
}
