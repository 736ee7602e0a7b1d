package memberships

import "context"

type Repository interface {
	Create(ctx context.Context, m Membership) error
	GetByID(ctx context.Context, id string) (Membership, error)

	// Resolve devuelve la única membresía vigente (no revocada, no borrada)
	// del usuario sobre el caso.
	Resolve(ctx context.Context, caseID, userID string) (Membership, error)

	// ListByCase devuelve las membresías no borradas del caso
	// (incluye revocadas: la vista de sharing muestra su estado).
	ListByCase(ctx context.Context, caseID string) ([]Membership, error)

	// ListByUser devuelve las membresías vigentes del usuario.
	ListByUser(ctx context.Context, userID string) ([]Membership, error)

	Update(ctx context.Context, m Membership) error
}
