package consents

import (
	"context"
	"time"
)

type Repository interface {
	CreateConsent(ctx context.Context, c Consent) error

	// GetByMembership devuelve el consent de la membresía. Dentro de una
	// transacción, el adapter debe bloquear la fila (FOR UPDATE en postgres)
	// para que mutaciones concurrentes sobre la misma membresía serialicen.
	GetByMembership(ctx context.Context, membershipID string) (Consent, error)

	UpdateConsent(ctx context.Context, c Consent) error

	InsertGrants(ctx context.Context, gs []Grant) error

	// SoftDeleteGrants marca DeletedAt en todos los grants vigentes de la
	// membresía. No borra filas: replace-not-mutate.
	SoftDeleteGrants(ctx context.Context, membershipID string, at time.Time) error

	// ListActiveGrants devuelve los grants no borrados de la membresía,
	// sin mirar el estado del consent (eso lo decide el servicio).
	ListActiveGrants(ctx context.Context, membershipID string) ([]Grant, error)
}
