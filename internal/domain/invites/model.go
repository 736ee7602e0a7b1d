package invites

import (
	"time"

	"care-journal/internal/domain/memberships"
	"care-journal/internal/domain/scopes"
)

// Type distingue invitaciones de familia y de clínicos.
type Type string

const (
	TypeFamily    Type = "FAMILY"
	TypeClinician Type = "CLINICIAN"
)

// Invite es una oferta pendiente de unirse a un caso, atada a un mailbox
// concreto (no a "quien tenga el link"). Estados: PENDING -> ACCEPTED o
// CANCELED (terminales), o vencida por now >= ExpiresAt — derivado, no
// almacenado, sin sweep de fondo.
type Invite struct {
	ID     string
	CaseID string
	Email  string // comparación case-insensitive

	Type      Type
	Role      memberships.Authority // solo FAMILY
	Specialty scopes.Specialty      // solo CLINICIAN, se fija al aceptar

	Token       string // opaco, no adivinable, largo fijo
	InvitedByID string

	CreatedAt  time.Time
	ExpiresAt  time.Time
	AcceptedAt *time.Time
}

// Expired trata la igualdad exacta como vencida (now >= ExpiresAt),
// para que el borde no dependa del microsegundo de comparación.
func (i Invite) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
