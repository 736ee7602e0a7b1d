package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"care-journal/internal/adapters/storage/memory"
	"care-journal/internal/domain/audit"
	"care-journal/internal/domain/consents"
	"care-journal/internal/domain/memberships"
	"care-journal/internal/domain/scopes"
)

// Arma el stack real en memoria: repos, unidad atómica con mutex y los
// services de consents/memberships cableados como en el router.
func newConsentsStack(t *testing.T) *consents.Service {
	t.Helper()
	ctx := context.Background()

	uow := memory.NewUnitOfWork()
	membersRepo := memory.NewMembershipsRepo()
	auditSvc := audit.NewService(memory.NewAuditRepo())
	membersSvc := memberships.NewService(membersRepo, auditSvc, uow)
	svc := consents.NewService(memory.NewConsentsRepo(), membersRepo, membersSvc, auditSvc, uow)

	now := time.Now()
	require.NoError(t, membersRepo.Create(ctx, memberships.Membership{
		ID:        "mem-admin",
		CaseID:    "case-1",
		UserID:    "mom",
		Kind:      memberships.KindFamily,
		Authority: memberships.AuthorityAdmin,
		AddedAt:   now,
	}))
	require.NoError(t, membersRepo.Create(ctx, memberships.Membership{
		ID:        "mem-dr",
		CaseID:    "case-1",
		UserID:    "dr-ana",
		Kind:      memberships.KindCareTeam,
		Specialty: scopes.SpecialtyNeurology,
		AddedAt:   now,
	}))

	_, err := svc.Establish(ctx, "case-1", "mem-dr", []scopes.Code{scopes.Seizures})
	require.NoError(t, err)
	return svc
}

// Dos reemplazos full-replace en paralelo: gana uno entero, nunca queda
// la unión de ambos sets.
func TestUnitOfWork_ConcurrentScopeReplaceKeepsOneSet(t *testing.T) {
	ctx := context.Background()

	setA := []scopes.Code{scopes.Sleep}
	setB := []scopes.Code{scopes.Feeding, scopes.Mobility}

	for i := 0; i < 25; i++ {
		svc := newConsentsStack(t)

		var wg sync.WaitGroup
		errCh := make(chan error, 2)
		for _, set := range [][]scopes.Code{setA, setB} {
			wg.Add(1)
			go func(set []scopes.Code) {
				defer wg.Done()
				errCh <- svc.UpdateGrantedScopes(ctx, "mem-dr", "mom", set)
			}(set)
		}
		wg.Wait()
		close(errCh)
		for err := range errCh {
			require.NoError(t, err)
		}

		got, err := svc.EffectiveScopes(ctx, "mem-dr")
		require.NoError(t, err)

		switch len(got) {
		case len(setA):
			require.ElementsMatch(t, setA, got)
		case len(setB):
			require.ElementsMatch(t, setB, got)
		default:
			t.Fatalf("effective scopes %v is neither replacement set", got)
		}
	}
}
