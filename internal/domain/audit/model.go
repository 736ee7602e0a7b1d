package audit

import "time"

// Action clasifica el efecto de la entrada sobre privilegios o datos.
type Action string

const (
	ActionGrant  Action = "GRANT"
	ActionRevoke Action = "REVOKE"
	ActionEdit   Action = "EDIT"
	ActionDelete Action = "DELETE"
	ActionView   Action = "VIEW"
	ActionExport Action = "EXPORT"
)

// Tipos de objeto auditados.
const (
	ObjectMembership = "Membership"
	ObjectConsent    = "Consent"
	ObjectGrant      = "PermissionGrant"
	ObjectInvite     = "Invite"
	ObjectEvent      = "Event"
	ObjectCase       = "Case"
	ObjectExport     = "Export"
)

// Entry es una entrada del audit trail. Append-only: nunca se actualiza
// ni se borra, y se escribe en la misma unidad atómica que la mutación
// que describe.
type Entry struct {
	ID          string
	CaseID      string
	ActorUserID string
	Action      Action
	ObjectType  string
	ObjectID    string
	Metadata    map[string]any
	At          time.Time
}
