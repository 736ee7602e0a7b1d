package invites

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"care-journal/internal/domain/audit"
	"care-journal/internal/domain/consents"
	"care-journal/internal/domain/memberships"
	"care-journal/internal/domain/scopes"
	"care-journal/internal/errs"
	"care-journal/internal/ports/accounts"
	"care-journal/internal/ports/storage"
)

const inviteExpiryDays = 7

// MembershipStore es lo mínimo que el ciclo de invitación necesita del
// store de membresías.
type MembershipStore interface {
	Create(ctx context.Context, m memberships.Membership) error
	Resolve(ctx context.Context, caseID, userID string) (memberships.Membership, error)
}

// Guard resuelve autoridad del actor sobre un caso.
type Guard interface {
	RequireAuthority(ctx context.Context, caseID, userID string, min memberships.Authority) (memberships.Membership, error)
}

// ConsentEstablisher siembra el consent inicial de un clínico aceptado.
type ConsentEstablisher interface {
	Establish(ctx context.Context, caseID, membershipID string, initial []scopes.Code) (consents.Consent, error)
}

type Service struct {
	repo      Repository
	members   MembershipStore
	guard     Guard
	consents  ConsentEstablisher
	directory accounts.Directory
	auditor   audit.Recorder
	uow       storage.UnitOfWork

	linkBase string
	now      func() time.Time
	newToken TokenGenerator
}

func NewService(
	repo Repository,
	members MembershipStore,
	guard Guard,
	consentSvc ConsentEstablisher,
	directory accounts.Directory,
	auditor audit.Recorder,
	uow storage.UnitOfWork,
	linkBase string,
) *Service {
	return &Service{
		repo:      repo,
		members:   members,
		guard:     guard,
		consents:  consentSvc,
		directory: directory,
		auditor:   auditor,
		uow:       uow,
		linkBase:  strings.TrimRight(strings.TrimSpace(linkBase), "/"),
		now:       time.Now,
		newToken:  NewToken,
	}
}

type CreateInput struct {
	Email string
	Type  Type
	Role  memberships.Authority // requerido para FAMILY, ignorado para CLINICIAN
}

// Create emite una invitación con vencimiento a 7 días y devuelve el link
// compartible con el token embebido. Requiere ADMIN del emisor sobre el caso.
func (s *Service) Create(ctx context.Context, caseID, issuerID string, in CreateInput) (Invite, string, error) {
	caseID = strings.TrimSpace(caseID)
	issuerID = strings.TrimSpace(issuerID)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if caseID == "" || issuerID == "" || email == "" || !strings.Contains(email, "@") {
		return Invite{}, "", errs.ErrInvalidInput
	}

	switch in.Type {
	case TypeFamily:
		if !memberships.ValidAuthority(in.Role) {
			return Invite{}, "", errs.ErrInvalidInput
		}
	case TypeClinician:
		// la especialidad la elige el clínico al aceptar
	default:
		return Invite{}, "", errs.ErrInvalidInput
	}

	if _, err := s.guard.RequireAuthority(ctx, caseID, issuerID, memberships.AuthorityAdmin); err != nil {
		return Invite{}, "", err
	}

	// ¿Ya es miembro? Si el directorio no conoce el email, no hay cuenta
	// y por lo tanto no hay membresía posible.
	if u, err := s.directory.UserByEmail(ctx, email); err == nil {
		if _, err := s.members.Resolve(ctx, caseID, u.ID); err == nil {
			return Invite{}, "", errs.ErrAlreadyMember
		}
	}

	now := s.now()
	if _, err := s.repo.FindPending(ctx, caseID, email, now); err == nil {
		return Invite{}, "", errs.ErrInvitePending
	}

	token, err := s.newToken()
	if err != nil {
		return Invite{}, "", err
	}

	inv := Invite{
		ID:          uuid.NewString(),
		CaseID:      caseID,
		Email:       email,
		Type:        in.Type,
		Token:       token,
		InvitedByID: issuerID,
		CreatedAt:   now,
		ExpiresAt:   now.AddDate(0, 0, inviteExpiryDays),
	}
	if in.Type == TypeFamily {
		inv.Role = in.Role
	}

	err = s.uow.Atomic(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, inv); err != nil {
			return err
		}
		return s.auditor.Record(ctx, audit.Entry{
			CaseID:      caseID,
			ActorUserID: issuerID,
			Action:      audit.ActionGrant,
			ObjectType:  audit.ObjectInvite,
			ObjectID:    caseID,
			Metadata:    map[string]any{"email": email, "type": string(in.Type), "role": string(inv.Role)},
		})
	})
	if err != nil {
		return Invite{}, "", err
	}

	return inv, s.linkBase + "/invite/" + token, nil
}

// Accept consume el token exactamente una vez: crea la membresía, marca
// acceptedAt y escribe el audit GRANT como una sola unidad atómica. Un crash
// a mitad de camino no puede dejar un invite aceptado sin membresía ni al revés.
//
// Para clínicos, specialty siembra los grants iniciales desde la tabla de
// defaults por especialidad (default de UX, el admin puede cambiarlos después).
func (s *Service) Accept(ctx context.Context, token, userID string, specialty scopes.Specialty) (Invite, error) {
	token = strings.TrimSpace(token)
	userID = strings.TrimSpace(userID)
	if token == "" || userID == "" {
		return Invite{}, errs.ErrInvalidInput
	}

	inv, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return Invite{}, errs.ErrNotFound
	}
	if inv.AcceptedAt != nil {
		return Invite{}, errs.ErrAlreadyAccepted
	}
	if inv.Expired(s.now()) {
		return Invite{}, errs.ErrExpired
	}

	user, err := s.directory.UserByID(ctx, userID)
	if err != nil {
		return Invite{}, errs.ErrNotFound
	}
	if !strings.EqualFold(strings.TrimSpace(user.Email), inv.Email) {
		return Invite{}, errs.ErrEmailMismatch
	}

	if _, err := s.members.Resolve(ctx, inv.CaseID, userID); err == nil {
		return Invite{}, errs.ErrAlreadyMember
	}

	if inv.Type == TypeClinician && !scopes.ValidSpecialty(specialty) {
		return Invite{}, errs.ErrInvalidInput
	}

	err = s.uow.Atomic(ctx, func(ctx context.Context) error {
		now := s.now()

		m := memberships.Membership{
			ID:      uuid.NewString(),
			CaseID:  inv.CaseID,
			UserID:  userID,
			AddedAt: now,
		}
		meta := map[string]any{"inviteId": inv.ID}

		switch inv.Type {
		case TypeFamily:
			m.Kind = memberships.KindFamily
			m.Authority = inv.Role
			meta["role"] = string(inv.Role)
		case TypeClinician:
			m.Kind = memberships.KindCareTeam
			m.Specialty = specialty
			meta["specialty"] = string(specialty)
			meta["type"] = "clinician"
		}

		if err := s.members.Create(ctx, m); err != nil {
			return err
		}

		if inv.Type == TypeClinician {
			if _, err := s.consents.Establish(ctx, inv.CaseID, m.ID, scopes.DefaultScopesFor(specialty)); err != nil {
				return err
			}
		}

		inv.AcceptedAt = &now
		if inv.Type == TypeClinician {
			inv.Specialty = specialty
		}
		if err := s.repo.Update(ctx, inv); err != nil {
			return err
		}

		return s.auditor.Record(ctx, audit.Entry{
			CaseID:      inv.CaseID,
			ActorUserID: userID,
			Action:      audit.ActionGrant,
			ObjectType:  audit.ObjectMembership,
			ObjectID:    inv.CaseID,
			Metadata:    meta,
		})
	})
	if err != nil {
		return Invite{}, err
	}
	return inv, nil
}

// Cancel elimina una invitación pendiente. Requiere ADMIN.
func (s *Service) Cancel(ctx context.Context, inviteID, actorID string) error {
	inviteID = strings.TrimSpace(inviteID)
	actorID = strings.TrimSpace(actorID)
	if inviteID == "" || actorID == "" {
		return errs.ErrInvalidInput
	}

	inv, err := s.repo.GetByID(ctx, inviteID)
	if err != nil {
		return errs.ErrNotFound
	}
	if inv.AcceptedAt != nil {
		return errs.ErrAlreadyAccepted
	}
	if _, err := s.guard.RequireAuthority(ctx, inv.CaseID, actorID, memberships.AuthorityAdmin); err != nil {
		return err
	}

	return s.uow.Atomic(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, inv.ID); err != nil {
			return err
		}
		return s.auditor.Record(ctx, audit.Entry{
			CaseID:      inv.CaseID,
			ActorUserID: actorID,
			Action:      audit.ActionRevoke,
			ObjectType:  audit.ObjectInvite,
			ObjectID:    inv.CaseID,
			Metadata:    map[string]any{"email": inv.Email},
		})
	})
}

// ListPending devuelve las invitaciones vigentes del caso (vista de settings).
func (s *Service) ListPending(ctx context.Context, caseID, actorID string) ([]Invite, error) {
	if _, err := s.guard.RequireAuthority(ctx, caseID, actorID, memberships.AuthorityAdmin); err != nil {
		return nil, err
	}
	return s.repo.ListPending(ctx, caseID, s.now())
}

// GetByToken devuelve la invitación para la página de aceptación.
// No requiere membresía: quien tiene el link ve email destino y vencimiento.
func (s *Service) GetByToken(ctx context.Context, token string) (Invite, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Invite{}, errs.ErrInvalidInput
	}
	inv, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return Invite{}, errs.ErrNotFound
	}
	return inv, nil
}
