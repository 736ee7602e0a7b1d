package consents

import (
	"time"

	"care-journal/internal/domain/scopes"
)

// Status es el estado del consent clínico.
// ACTIVE <-> PAUSED; REVOKED es terminal, sin camino de vuelta.
type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusPaused  Status = "PAUSED"
	StatusRevoked Status = "REVOKED"
)

// Consent autoriza a una membresía clínica a ver datos del caso.
// Una por (caso, membresía clínica).
type Consent struct {
	ID           string
	CaseID       string
	MembershipID string

	Status    Status
	GrantedAt time.Time
	RevokedAt *time.Time
}

// Grant une un Consent con un Scope: "este clínico puede ver esta categoría
// mientras el consent esté ACTIVE". Los grants se reemplazan soft-borrando
// filas viejas e insertando nuevas, nunca mutando en el lugar: el historial
// de qué se otorgó y cuándo queda intacto para auditoría.
type Grant struct {
	ID           string
	ConsentID    string
	MembershipID string
	Scope        scopes.Code

	CreatedAt time.Time
	DeletedAt *time.Time
}
