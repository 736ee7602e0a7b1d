package cases

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"care-journal/internal/domain/audit"
	"care-journal/internal/domain/memberships"
	"care-journal/internal/errs"
	"care-journal/internal/ports/storage"
)

// MembershipStore es lo mínimo que este módulo necesita del store de membresías.
type MembershipStore interface {
	Create(ctx context.Context, m memberships.Membership) error
	Resolve(ctx context.Context, caseID, userID string) (memberships.Membership, error)
	ListByUser(ctx context.Context, userID string) ([]memberships.Membership, error)
}

type Service struct {
	repo    Repository
	members MembershipStore
	auditor audit.Recorder
	uow     storage.UnitOfWork
	now     func() time.Time
}

func NewService(repo Repository, members MembershipStore, auditor audit.Recorder, uow storage.UnitOfWork) *Service {
	return &Service{
		repo:    repo,
		members: members,
		auditor: auditor,
		uow:     uow,
		now:     time.Now,
	}
}

// Create crea el caso y la membresía ADMIN del creador como una sola
// unidad: no existe caso sin al menos un admin familiar.
func (s *Service) Create(ctx context.Context, ownerUserID, childDisplayName string) (Case, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	childDisplayName = strings.TrimSpace(childDisplayName)
	if ownerUserID == "" || childDisplayName == "" {
		return Case{}, errs.ErrInvalidInput
	}

	now := s.now()
	c := Case{
		ID:               uuid.NewString(),
		ChildDisplayName: childDisplayName,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err := s.uow.Atomic(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, c); err != nil {
			return err
		}
		m := memberships.Membership{
			ID:        uuid.NewString(),
			CaseID:    c.ID,
			UserID:    ownerUserID,
			Kind:      memberships.KindFamily,
			Authority: memberships.AuthorityAdmin,
			AddedAt:   now,
		}
		if err := s.members.Create(ctx, m); err != nil {
			return err
		}
		return s.auditor.Record(ctx, audit.Entry{
			CaseID:      c.ID,
			ActorUserID: ownerUserID,
			Action:      audit.ActionGrant,
			ObjectType:  audit.ObjectCase,
			ObjectID:    c.ID,
			Metadata:    map[string]any{"role": string(memberships.AuthorityAdmin)},
		})
	})
	if err != nil {
		return Case{}, err
	}
	return c, nil
}

// Get devuelve el caso si el viewer tiene membresía vigente. Sin standing
// responde NotFound, no Forbidden: no se filtra que el caso existe.
func (s *Service) Get(ctx context.Context, caseID, viewerID string) (Case, error) {
	caseID = strings.TrimSpace(caseID)
	viewerID = strings.TrimSpace(viewerID)
	if caseID == "" || viewerID == "" {
		return Case{}, errs.ErrInvalidInput
	}

	if _, err := s.members.Resolve(ctx, caseID, viewerID); err != nil {
		return Case{}, errs.ErrNotFound
	}
	return s.repo.GetByID(ctx, caseID)
}

// ListMine devuelve los casos donde el usuario tiene membresía vigente.
func (s *Service) ListMine(ctx context.Context, userID string) ([]Case, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errs.ErrInvalidInput
	}

	ms, err := s.members.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]Case, 0, len(ms))
	for _, m := range ms {
		c, err := s.repo.GetByID(ctx, m.CaseID)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
