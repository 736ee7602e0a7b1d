package invites

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, i Invite) error
	GetByID(ctx context.Context, id string) (Invite, error)
	GetByToken(ctx context.Context, token string) (Invite, error)

	// FindPending devuelve la invitación no aceptada y no vencida para
	// (caso, email), si existe.
	FindPending(ctx context.Context, caseID, email string, now time.Time) (Invite, error)

	// ListPending devuelve las invitaciones vigentes del caso, más reciente primero.
	ListPending(ctx context.Context, caseID string, now time.Time) ([]Invite, error)

	Update(ctx context.Context, i Invite) error

	// Delete elimina la fila (cancelación explícita de un admin).
	Delete(ctx context.Context, id string) error
}
