package events

import (
	"time"

	"care-journal/internal/domain/scopes"
)

// Event es una observación del diario con cero o más tags de scope.
// El filtro de acceso lo trata opaco: solo mira la lista de códigos.
type Event struct {
	ID       string
	CaseID   string
	AuthorID string

	Type     EventType
	FreeText string

	OccurredAt time.Time
	LoggedAt   time.Time

	Scopes []scopes.Code

	DeletedAt *time.Time
}

// Backdated marca registros cargados bastante después de ocurridos.
func (e Event) Backdated() bool {
	return e.LoggedAt.Sub(e.OccurredAt) > 5*time.Minute
}

// View es lo que un viewer concreto ve de un evento: los tags ya
// redactados a su set otorgado y la señal de redacción parcial.
type View struct {
	Event
	Shown           []scopes.Code
	PartiallyHidden bool
}
