package memberships

import (
	"time"

	"care-journal/internal/domain/scopes"
)

// ActorKind distingue familia de equipo clínico. Es una variante etiquetada,
// no una jerarquía: las reglas de autorización asimétricas (familia exenta
// de scopes, clínicos no) se ramifican explícito donde se aplican.
type ActorKind string

const (
	KindFamily   ActorKind = "FAMILY"
	KindCareTeam ActorKind = "CARE_TEAM"
)

// Authority es el nivel de autoridad dentro de FAMILY.
// Para CARE_TEAM no aplica: un clínico nunca administra el caso.
type Authority string

const (
	AuthorityAdmin  Authority = "ADMIN"
	AuthorityEditor Authority = "EDITOR"
	AuthorityViewer Authority = "VIEWER"
)

func (a Authority) rank() int {
	switch a {
	case AuthorityAdmin:
		return 3
	case AuthorityEditor:
		return 2
	case AuthorityViewer:
		return 1
	default:
		return 0
	}
}

// AtLeast ordena ADMIN > EDITOR > VIEWER.
func (a Authority) AtLeast(min Authority) bool {
	return a.rank() >= min.rank()
}

func ValidAuthority(a Authority) bool {
	return a.rank() > 0
}

// Membership vincula una cuenta de usuario a un caso.
// Invariante: a lo sumo una membresía no-revocada y no-borrada por (caso, usuario).
// La revocación es soft (RevokedAt); nunca se borra en duro mientras el
// audit trail la referencie.
type Membership struct {
	ID     string
	CaseID string
	UserID string

	Kind      ActorKind
	Authority Authority        // solo FAMILY
	Specialty scopes.Specialty // solo CARE_TEAM

	AddedAt   time.Time
	RevokedAt *time.Time
	DeletedAt *time.Time
}

// Active indica membresía vigente: ni revocada ni soft-borrada.
func (m Membership) Active() bool {
	return m.RevokedAt == nil && m.DeletedAt == nil
}
