package memberships

import (
	"context"
	"strings"
	"time"

	"care-journal/internal/domain/audit"
	"care-journal/internal/errs"
	"care-journal/internal/ports/storage"
)

type Service struct {
	repo    Repository
	auditor audit.Recorder
	uow     storage.UnitOfWork
	now     func() time.Time
}

func NewService(repo Repository, auditor audit.Recorder, uow storage.UnitOfWork) *Service {
	return &Service{
		repo:    repo,
		auditor: auditor,
		uow:     uow,
		now:     time.Now,
	}
}

// Resolve devuelve la membresía vigente del usuario sobre el caso, o
// errs.ErrNotFound. Los callers tratan NotFound como "sin standing",
// no como un error para mostrar tal cual (no filtrar existencia del caso).
func (s *Service) Resolve(ctx context.Context, caseID, userID string) (Membership, error) {
	caseID = strings.TrimSpace(caseID)
	userID = strings.TrimSpace(userID)
	if caseID == "" || userID == "" {
		return Membership{}, errs.ErrInvalidInput
	}

	m, err := s.repo.Resolve(ctx, caseID, userID)
	if err != nil {
		return Membership{}, errs.ErrNotFound
	}
	return m, nil
}

// RequireAuthority falla con errs.ErrPermissionDenied si la membresía está
// ausente, revocada, no es FAMILY, o está por debajo de min.
// CARE_TEAM nunca tiene semántica EDITOR/ADMIN sobre settings del caso.
func (s *Service) RequireAuthority(ctx context.Context, caseID, userID string, min Authority) (Membership, error) {
	m, err := s.Resolve(ctx, caseID, userID)
	if err != nil {
		return Membership{}, errs.ErrPermissionDenied
	}
	if m.Kind != KindFamily {
		return Membership{}, errs.ErrPermissionDenied
	}
	if !m.Authority.AtLeast(min) {
		return Membership{}, errs.ErrPermissionDenied
	}
	return m, nil
}

// RequireMember exige cualquier membresía vigente (familia o clínico).
func (s *Service) RequireMember(ctx context.Context, caseID, userID string) (Membership, error) {
	m, err := s.Resolve(ctx, caseID, userID)
	if err != nil {
		return Membership{}, errs.ErrPermissionDenied
	}
	return m, nil
}

// Revoke revoca (soft) una membresía. Requiere ADMIN del actor sobre el caso.
// Revocarse a uno mismo se rechaza: política deliberada para que un admin no
// se deje afuera sin otro admin presente.
func (s *Service) Revoke(ctx context.Context, membershipID, actorID string) error {
	membershipID = strings.TrimSpace(membershipID)
	actorID = strings.TrimSpace(actorID)
	if membershipID == "" || actorID == "" {
		return errs.ErrInvalidInput
	}

	target, err := s.repo.GetByID(ctx, membershipID)
	if err != nil {
		return errs.ErrNotFound
	}
	if target.UserID == actorID {
		return errs.ErrCannotSelfRevoke
	}
	if _, err := s.RequireAuthority(ctx, target.CaseID, actorID, AuthorityAdmin); err != nil {
		return err
	}
	if !target.Active() {
		return errs.ErrNotFound
	}

	return s.uow.Atomic(ctx, func(ctx context.Context) error {
		now := s.now()
		target.RevokedAt = &now
		if err := s.repo.Update(ctx, target); err != nil {
			return err
		}
		return s.auditor.Record(ctx, audit.Entry{
			CaseID:      target.CaseID,
			ActorUserID: actorID,
			Action:      audit.ActionRevoke,
			ObjectType:  audit.ObjectMembership,
			ObjectID:    target.CaseID,
			Metadata:    map[string]any{"revokedUserId": target.UserID},
		})
	})
}

// ListByCase devuelve las membresías del caso para la vista de settings.
// Solo un ADMIN familiar puede enumerar quién tiene acceso.
func (s *Service) ListByCase(ctx context.Context, caseID, actorID string) ([]Membership, error) {
	if _, err := s.RequireAuthority(ctx, caseID, actorID, AuthorityAdmin); err != nil {
		return nil, err
	}
	return s.repo.ListByCase(ctx, caseID)
}

// ListMine devuelve las membresías vigentes del usuario (sus casos).
func (s *Service) ListMine(ctx context.Context, userID string) ([]Membership, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errs.ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID)
}
