package cases

import "time"

// Case es el expediente del niño/paciente que se comparte.
// Todo lo demás (membresías, invites, consents, eventos) lo referencia.
type Case struct {
	ID               string
	ChildDisplayName string

	CreatedAt time.Time
	UpdatedAt time.Time
}
