package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"care-journal/internal/errs"
)

// Recorder es el contrato que toda operación que muta standing o acceso
// debe invocar dentro de su misma unidad atómica. Si el audit no se puede
// persistir, la operación que lo dispara también falla: nunca best-effort.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) Record(ctx context.Context, e Entry) error {
	if strings.TrimSpace(e.ActorUserID) == "" || e.Action == "" || strings.TrimSpace(e.ObjectType) == "" {
		return errs.ErrInvalidInput
	}

	e.ID = uuid.NewString()
	e.At = s.now()

	if err := s.repo.Append(ctx, e); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrAuditWriteFailed, err)
	}
	return nil
}

// ListByCase devuelve el log completo del caso, más reciente primero.
// La autorización (admin del caso) la resuelve el handler; este servicio
// no conoce memberships para no crear un ciclo de imports.
func (s *Service) ListByCase(ctx context.Context, caseID string, limit int) ([]Entry, error) {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return nil, errs.ErrInvalidInput
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListByCase(ctx, caseID, limit)
}

// PermissionChanges filtra el log a las entradas que alteran privilegios:
// la vista de "historial de cambios de permisos" del dashboard.
func (s *Service) PermissionChanges(ctx context.Context, caseID string, limit int) ([]Entry, error) {
	all, err := s.ListByCase(ctx, caseID, limit)
	if err != nil {
		return nil, err
	}

	privileged := map[string]struct{}{
		ObjectMembership: {},
		ObjectConsent:    {},
		ObjectGrant:      {},
		ObjectInvite:     {},
	}

	out := make([]Entry, 0, len(all))
	for _, e := range all {
		if _, ok := privileged[e.ObjectType]; !ok {
			continue
		}
		switch e.Action {
		case ActionGrant, ActionRevoke, ActionEdit:
			out = append(out, e)
		}
	}
	return out, nil
}
