package consents

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"care-journal/internal/domain/audit"
	"care-journal/internal/domain/memberships"
	"care-journal/internal/domain/scopes"
	"care-journal/internal/errs"
	"care-journal/internal/ports/storage"
)

// MembershipStore es lo mínimo que este módulo necesita del store de
// membresías (evita acoplarse al servicio completo).
type MembershipStore interface {
	GetByID(ctx context.Context, id string) (memberships.Membership, error)
	Update(ctx context.Context, m memberships.Membership) error
}

// Guard resuelve autoridad del actor sobre un caso. Lo satisface
// memberships.Service.
type Guard interface {
	RequireAuthority(ctx context.Context, caseID, userID string, min memberships.Authority) (memberships.Membership, error)
}

type Service struct {
	repo    Repository
	members MembershipStore
	guard   Guard
	auditor audit.Recorder
	uow     storage.UnitOfWork
	now     func() time.Time
}

func NewService(repo Repository, members MembershipStore, guard Guard, auditor audit.Recorder, uow storage.UnitOfWork) *Service {
	return &Service{
		repo:    repo,
		members: members,
		guard:   guard,
		auditor: auditor,
		uow:     uow,
		now:     time.Now,
	}
}

// Establish crea el consent ACTIVE de una membresía clínica recién aceptada,
// con sus grants iniciales. Corre dentro de la unidad atómica del accept;
// el audit GRANT lo escribe el flujo de invitación, no este método.
func (s *Service) Establish(ctx context.Context, caseID, membershipID string, initial []scopes.Code) (Consent, error) {
	caseID = strings.TrimSpace(caseID)
	membershipID = strings.TrimSpace(membershipID)
	if caseID == "" || membershipID == "" {
		return Consent{}, errs.ErrInvalidInput
	}

	now := s.now()
	c := Consent{
		ID:           uuid.NewString(),
		CaseID:       caseID,
		MembershipID: membershipID,
		Status:       StatusActive,
		GrantedAt:    now,
	}
	if err := s.repo.CreateConsent(ctx, c); err != nil {
		return Consent{}, err
	}

	if len(initial) > 0 {
		if err := s.repo.InsertGrants(ctx, s.buildGrants(c, initial, now)); err != nil {
			return Consent{}, err
		}
	}
	return c, nil
}

// UpdateGrantedScopes reemplaza el set completo de scopes otorgados.
// Full-replace, no patch incremental: el caller pasa el set deseado entero.
// Soft-borra los grants actuales e inserta filas nuevas, y escribe un audit
// EDIT con los códigos antes/después (la vista de historial de permisos lo
// necesita).
func (s *Service) UpdateGrantedScopes(ctx context.Context, membershipID, actorID string, newCodes []scopes.Code) error {
	membershipID = strings.TrimSpace(membershipID)
	actorID = strings.TrimSpace(actorID)
	if membershipID == "" || actorID == "" {
		return errs.ErrInvalidInput
	}

	codes, err := scopes.Normalize(newCodes)
	if err != nil {
		return err
	}

	target, err := s.members.GetByID(ctx, membershipID)
	if err != nil {
		return errs.ErrNotFound
	}
	if _, err := s.guard.RequireAuthority(ctx, target.CaseID, actorID, memberships.AuthorityAdmin); err != nil {
		return err
	}

	return s.uow.Atomic(ctx, func(ctx context.Context) error {
		c, err := s.repo.GetByMembership(ctx, membershipID)
		if err != nil {
			return errs.ErrNotFound
		}
		if c.Status == StatusRevoked {
			return errs.ErrInvalidTransition
		}

		before, err := s.repo.ListActiveGrants(ctx, membershipID)
		if err != nil {
			return err
		}

		now := s.now()
		if err := s.repo.SoftDeleteGrants(ctx, membershipID, now); err != nil {
			return err
		}
		if len(codes) > 0 {
			if err := s.repo.InsertGrants(ctx, s.buildGrants(c, codes, now)); err != nil {
				return err
			}
		}

		return s.auditor.Record(ctx, audit.Entry{
			CaseID:      target.CaseID,
			ActorUserID: actorID,
			Action:      audit.ActionEdit,
			ObjectType:  audit.ObjectGrant,
			ObjectID:    membershipID,
			Metadata: map[string]any{
				"before": grantCodes(before),
				"after":  codeStrings(codes),
			},
		})
	})
}

// Pause suspende el consent (ACTIVE -> PAUSED). Idempotente si ya está
// pausado; rechaza si está revocado (terminal).
func (s *Service) Pause(ctx context.Context, membershipID, actorID string) error {
	return s.transition(ctx, membershipID, actorID, StatusPaused)
}

// Resume reactiva un consent pausado (PAUSED -> ACTIVE).
func (s *Service) Resume(ctx context.Context, membershipID, actorID string) error {
	return s.transition(ctx, membershipID, actorID, StatusActive)
}

func (s *Service) transition(ctx context.Context, membershipID, actorID string, to Status) error {
	membershipID = strings.TrimSpace(membershipID)
	actorID = strings.TrimSpace(actorID)
	if membershipID == "" || actorID == "" {
		return errs.ErrInvalidInput
	}

	target, err := s.members.GetByID(ctx, membershipID)
	if err != nil {
		return errs.ErrNotFound
	}
	if _, err := s.guard.RequireAuthority(ctx, target.CaseID, actorID, memberships.AuthorityAdmin); err != nil {
		return err
	}

	return s.uow.Atomic(ctx, func(ctx context.Context) error {
		c, err := s.repo.GetByMembership(ctx, membershipID)
		if err != nil {
			return errs.ErrNotFound
		}
		if c.Status == StatusRevoked {
			return errs.ErrInvalidTransition
		}
		if c.Status == to {
			// ya está en el estado pedido
			return nil
		}

		from := c.Status
		c.Status = to
		if err := s.repo.UpdateConsent(ctx, c); err != nil {
			return err
		}

		return s.auditor.Record(ctx, audit.Entry{
			CaseID:      target.CaseID,
			ActorUserID: actorID,
			Action:      audit.ActionEdit,
			ObjectType:  audit.ObjectConsent,
			ObjectID:    target.CaseID,
			Metadata: map[string]any{
				"clinicianUserId": target.UserID,
				"from":            string(from),
				"to":              string(to),
			},
		})
	})
}

// Revoke es terminal: marca el consent REVOKED y también soft-revoca la
// membresía en la misma transacción. Un consent revocado con membresía
// vigente sería un estado intermedio sin sentido.
func (s *Service) Revoke(ctx context.Context, membershipID, actorID string) error {
	membershipID = strings.TrimSpace(membershipID)
	actorID = strings.TrimSpace(actorID)
	if membershipID == "" || actorID == "" {
		return errs.ErrInvalidInput
	}

	target, err := s.members.GetByID(ctx, membershipID)
	if err != nil {
		return errs.ErrNotFound
	}
	if _, err := s.guard.RequireAuthority(ctx, target.CaseID, actorID, memberships.AuthorityAdmin); err != nil {
		return err
	}

	return s.uow.Atomic(ctx, func(ctx context.Context) error {
		c, err := s.repo.GetByMembership(ctx, membershipID)
		if err != nil {
			return errs.ErrNotFound
		}
		if c.Status == StatusRevoked {
			return errs.ErrInvalidTransition
		}

		now := s.now()
		c.Status = StatusRevoked
		c.RevokedAt = &now
		if err := s.repo.UpdateConsent(ctx, c); err != nil {
			return err
		}

		if target.Active() {
			target.RevokedAt = &now
			if err := s.members.Update(ctx, target); err != nil {
				return err
			}
		}

		return s.auditor.Record(ctx, audit.Entry{
			CaseID:      target.CaseID,
			ActorUserID: actorID,
			Action:      audit.ActionRevoke,
			ObjectType:  audit.ObjectMembership,
			ObjectID:    target.CaseID,
			Metadata:    map[string]any{"clinicianUserId": target.UserID, "type": "clinician"},
		})
	})
}

// EffectiveScopes es una lectura pura: el set de scopes que el clínico puede
// ver ahora. Vacío salvo que el consent esté ACTIVE; PAUSED o REVOKED rinden
// vacío sin importar las filas de grants.
func (s *Service) EffectiveScopes(ctx context.Context, membershipID string) ([]scopes.Code, error) {
	membershipID = strings.TrimSpace(membershipID)
	if membershipID == "" {
		return nil, errs.ErrInvalidInput
	}

	c, err := s.repo.GetByMembership(ctx, membershipID)
	if err != nil {
		return []scopes.Code{}, nil
	}
	if c.Status != StatusActive {
		return []scopes.Code{}, nil
	}

	gs, err := s.repo.ListActiveGrants(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	out := make([]scopes.Code, 0, len(gs))
	for _, g := range gs {
		out = append(out, g.Scope)
	}
	return out, nil
}

// Status devuelve el estado del consent de la membresía, para la vista de sharing.
func (s *Service) Status(ctx context.Context, membershipID string) (Status, error) {
	c, err := s.repo.GetByMembership(ctx, membershipID)
	if err != nil {
		return "", errs.ErrNotFound
	}
	return c.Status, nil
}

func (s *Service) buildGrants(c Consent, codes []scopes.Code, now time.Time) []Grant {
	out := make([]Grant, 0, len(codes))
	for _, code := range codes {
		out = append(out, Grant{
			ID:           uuid.NewString(),
			ConsentID:    c.ID,
			MembershipID: c.MembershipID,
			Scope:        code,
			CreatedAt:    now,
		})
	}
	return out
}

func grantCodes(gs []Grant) []string {
	out := make([]string, 0, len(gs))
	for _, g := range gs {
		out = append(out, string(g.Scope))
	}
	return out
}

func codeStrings(cs []scopes.Code) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, string(c))
	}
	return out
}
