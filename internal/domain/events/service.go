package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"care-journal/internal/domain/access"
	"care-journal/internal/domain/audit"
	"care-journal/internal/domain/memberships"
	"care-journal/internal/domain/scopes"
	"care-journal/internal/errs"
	"care-journal/internal/ports/storage"
)

// MembershipResolver resuelve standing del viewer sobre un caso.
type MembershipResolver interface {
	Resolve(ctx context.Context, caseID, userID string) (memberships.Membership, error)
	RequireAuthority(ctx context.Context, caseID, userID string, min memberships.Authority) (memberships.Membership, error)
}

// ScopeSource devuelve los scopes efectivos de una membresía clínica.
// Ningún cliente de este módulo computa visibilidad por su cuenta.
type ScopeSource interface {
	EffectiveScopes(ctx context.Context, membershipID string) ([]scopes.Code, error)
}

type Service struct {
	repo    Repository
	members MembershipResolver
	granted ScopeSource
	auditor audit.Recorder
	uow     storage.UnitOfWork
	now     func() time.Time
}

func NewService(repo Repository, members MembershipResolver, granted ScopeSource, auditor audit.Recorder, uow storage.UnitOfWork) *Service {
	return &Service{
		repo:    repo,
		members: members,
		granted: granted,
		auditor: auditor,
		uow:     uow,
		now:     time.Now,
	}
}

type CreateInput struct {
	Type       EventType
	FreeText   string
	OccurredAt time.Time
	Scopes     []scopes.Code
}

// Create registra una observación. Familia necesita EDITOR o más
// (VIEWER no escribe); un clínico necesita consent ACTIVE.
func (s *Service) Create(ctx context.Context, caseID, actorID string, in CreateInput) (Event, error) {
	caseID = strings.TrimSpace(caseID)
	actorID = strings.TrimSpace(actorID)
	if caseID == "" || actorID == "" {
		return Event{}, errs.ErrInvalidInput
	}
	if !validType(in.Type) || in.OccurredAt.IsZero() {
		return Event{}, errs.ErrInvalidInput
	}

	tags, err := scopes.Normalize(in.Scopes)
	if err != nil {
		return Event{}, err
	}

	m, err := s.members.Resolve(ctx, caseID, actorID)
	if err != nil {
		return Event{}, errs.ErrPermissionDenied
	}
	switch m.Kind {
	case memberships.KindFamily:
		if !m.Authority.AtLeast(memberships.AuthorityEditor) {
			return Event{}, errs.ErrPermissionDenied
		}
	case memberships.KindCareTeam:
		granted, err := s.granted.EffectiveScopes(ctx, m.ID)
		if err != nil {
			return Event{}, err
		}
		if len(granted) == 0 {
			return Event{}, errs.ErrPermissionDenied
		}
	}

	e := Event{
		ID:         uuid.NewString(),
		CaseID:     caseID,
		AuthorID:   actorID,
		Type:       in.Type,
		FreeText:   strings.TrimSpace(in.FreeText),
		OccurredAt: in.OccurredAt,
		LoggedAt:   s.now(),
		Scopes:     tags,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// ListForViewer devuelve el subconjunto visible para el viewer, con los
// tags ya redactados. Un clínico sin consent activo recibe lista vacía,
// no un error.
func (s *Service) ListForViewer(ctx context.Context, caseID, viewerID string, filter ListFilter) ([]View, error) {
	caseID = strings.TrimSpace(caseID)
	viewerID = strings.TrimSpace(viewerID)
	if caseID == "" || viewerID == "" {
		return nil, errs.ErrInvalidInput
	}

	m, err := s.members.Resolve(ctx, caseID, viewerID)
	if err != nil {
		return nil, errs.ErrPermissionDenied
	}

	viewer := access.Viewer{Kind: m.Kind}
	if m.Kind == memberships.KindCareTeam {
		granted, err := s.granted.EffectiveScopes(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		if len(granted) == 0 {
			return []View{}, nil
		}
		viewer.Granted = granted
	}

	all, err := s.repo.ListByCase(ctx, caseID, filter)
	if err != nil {
		return nil, err
	}

	out := make([]View, 0, len(all))
	for _, e := range all {
		d := access.Evaluate(viewer, e.Scopes)
		if !d.Visible {
			continue
		}
		out = append(out, View{Event: e, Shown: d.Shown, PartiallyHidden: d.PartiallyHidden})
	}
	return out, nil
}

// Delete soft-borra un evento (autor, o ADMIN del caso) y escribe el
// audit DELETE en la misma unidad.
func (s *Service) Delete(ctx context.Context, eventID, actorID string) error {
	eventID = strings.TrimSpace(eventID)
	actorID = strings.TrimSpace(actorID)
	if eventID == "" || actorID == "" {
		return errs.ErrInvalidInput
	}

	e, err := s.repo.GetByID(ctx, eventID)
	if err != nil || e.DeletedAt != nil {
		return errs.ErrNotFound
	}

	if e.AuthorID != actorID {
		if _, err := s.members.RequireAuthority(ctx, e.CaseID, actorID, memberships.AuthorityAdmin); err != nil {
			return err
		}
	} else if _, err := s.members.Resolve(ctx, e.CaseID, actorID); err != nil {
		return errs.ErrPermissionDenied
	}

	return s.uow.Atomic(ctx, func(ctx context.Context) error {
		now := s.now()
		e.DeletedAt = &now
		if err := s.repo.Update(ctx, e); err != nil {
			return err
		}
		return s.auditor.Record(ctx, audit.Entry{
			CaseID:      e.CaseID,
			ActorUserID: actorID,
			Action:      audit.ActionDelete,
			ObjectType:  audit.ObjectEvent,
			ObjectID:    e.ID,
			Metadata:    map[string]any{"eventType": string(e.Type)},
		})
	})
}

// Export devuelve el subconjunto visible para el actor y deja constancia
// EXPORT en el audit trail. Si el audit no persiste, el export falla.
func (s *Service) Export(ctx context.Context, caseID, actorID string) ([]View, error) {
	views, err := s.ListForViewer(ctx, caseID, actorID, ListFilter{})
	if err != nil {
		return nil, err
	}

	err = s.auditor.Record(ctx, audit.Entry{
		CaseID:      caseID,
		ActorUserID: actorID,
		Action:      audit.ActionExport,
		ObjectType:  audit.ObjectExport,
		ObjectID:    caseID,
		Metadata:    map[string]any{"events": len(views)},
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}
