package consents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"care-journal/internal/domain/audit"
	"care-journal/internal/domain/memberships"
	"care-journal/internal/domain/scopes"
	"care-journal/internal/errs"
)

// -------------------------
// Fakes
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	consents map[string]Consent // por membershipID
	grants   map[string]Grant
}

func newTestRepo() *testRepo {
	return &testRepo{consents: map[string]Consent{}, grants: map[string]Grant{}}
}

func (r *testRepo) CreateConsent(ctx context.Context, c Consent) error {
	r.consents[c.MembershipID] = c
	return nil
}

func (r *testRepo) GetByMembership(ctx context.Context, membershipID string) (Consent, error) {
	c, ok := r.consents[membershipID]
	if !ok {
		return Consent{}, errRepoNotFound
	}
	return c, nil
}

func (r *testRepo) UpdateConsent(ctx context.Context, c Consent) error {
	if _, ok := r.consents[c.MembershipID]; !ok {
		return errRepoNotFound
	}
	r.consents[c.MembershipID] = c
	return nil
}

func (r *testRepo) InsertGrants(ctx context.Context, gs []Grant) error {
	for _, g := range gs {
		r.grants[g.ID] = g
	}
	return nil
}

func (r *testRepo) SoftDeleteGrants(ctx context.Context, membershipID string, at time.Time) error {
	for id, g := range r.grants {
		if g.MembershipID == membershipID && g.DeletedAt == nil {
			t := at
			g.DeletedAt = &t
			r.grants[id] = g
		}
	}
	return nil
}

func (r *testRepo) ListActiveGrants(ctx context.Context, membershipID string) ([]Grant, error) {
	out := make([]Grant, 0)
	for _, g := range r.grants {
		if g.MembershipID == membershipID && g.DeletedAt == nil {
			out = append(out, g)
		}
	}
	return out, nil
}

type testMembers struct {
	byID map[string]memberships.Membership
}

func (m *testMembers) GetByID(ctx context.Context, id string) (memberships.Membership, error) {
	v, ok := m.byID[id]
	if !ok {
		return memberships.Membership{}, errRepoNotFound
	}
	return v, nil
}

func (m *testMembers) Update(ctx context.Context, v memberships.Membership) error {
	m.byID[v.ID] = v
	return nil
}

type allowGuard struct{ denied bool }

func (g allowGuard) RequireAuthority(ctx context.Context, caseID, userID string, min memberships.Authority) (memberships.Membership, error) {
	if g.denied {
		return memberships.Membership{}, errs.ErrPermissionDenied
	}
	return memberships.Membership{CaseID: caseID, UserID: userID}, nil
}

type testRecorder struct {
	entries []audit.Entry
	fail    bool
}

func (r *testRecorder) Record(ctx context.Context, e audit.Entry) error {
	if r.fail {
		return errs.ErrAuditWriteFailed
	}
	r.entries = append(r.entries, e)
	return nil
}

type nopUOW struct{}

func (nopUOW) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func fixture(t *testing.T) (*Service, *testRepo, *testMembers, *testRecorder) {
	t.Helper()

	repo := newTestRepo()
	members := &testMembers{byID: map[string]memberships.Membership{
		"mem-1": {
			ID:        "mem-1",
			CaseID:    "case-1",
			UserID:    "dr-ana",
			Kind:      memberships.KindCareTeam,
			Specialty: scopes.SpecialtyNeurology,
			AddedAt:   time.Now(),
		},
	}}
	rec := &testRecorder{}
	svc := NewService(repo, members, allowGuard{}, rec, nopUOW{})

	_, err := svc.Establish(context.Background(), "case-1", "mem-1", []scopes.Code{scopes.Seizures, scopes.Meds})
	require.NoError(t, err)

	return svc, repo, members, rec
}

// -------------------------
// Tests
// -------------------------

func TestEstablish_ActiveWithInitialGrants(t *testing.T) {
	svc, repo, _, _ := fixture(t)
	ctx := context.Background()

	c := repo.consents["mem-1"]
	require.Equal(t, StatusActive, c.Status)

	granted, err := svc.EffectiveScopes(ctx, "mem-1")
	require.NoError(t, err)
	require.ElementsMatch(t, []scopes.Code{scopes.Seizures, scopes.Meds}, granted)
}

func TestUpdateGrantedScopes_FullReplace(t *testing.T) {
	svc, repo, _, rec := fixture(t)
	ctx := context.Background()

	err := svc.UpdateGrantedScopes(ctx, "mem-1", "admin", []scopes.Code{scopes.Sleep})
	require.NoError(t, err)

	granted, err := svc.EffectiveScopes(ctx, "mem-1")
	require.NoError(t, err)
	require.Equal(t, []scopes.Code{scopes.Sleep}, granted)

	// Las filas viejas quedan soft-borradas, no desaparecen.
	dead := 0
	for _, g := range repo.grants {
		if g.DeletedAt != nil {
			dead++
		}
	}
	require.Equal(t, 2, dead)

	require.Len(t, rec.entries, 1)
	e := rec.entries[0]
	require.Equal(t, audit.ActionEdit, e.Action)
	require.Equal(t, audit.ObjectGrant, e.ObjectType)
	require.ElementsMatch(t, []string{"seizures", "meds"}, e.Metadata["before"])
	require.Equal(t, []string{"sleep"}, e.Metadata["after"])
}

func TestUpdateGrantedScopes_SameSetTwiceIsIdempotent(t *testing.T) {
	svc, repo, _, _ := fixture(t)
	ctx := context.Background()

	want := []scopes.Code{scopes.Sleep, scopes.Mobility}
	require.NoError(t, svc.UpdateGrantedScopes(ctx, "mem-1", "admin", want))
	require.NoError(t, svc.UpdateGrantedScopes(ctx, "mem-1", "admin", want))

	granted, err := svc.EffectiveScopes(ctx, "mem-1")
	require.NoError(t, err)
	require.ElementsMatch(t, want, granted)

	// Repetir el mismo set no acumula filas vigentes.
	active := 0
	for _, g := range repo.grants {
		if g.DeletedAt == nil {
			active++
		}
	}
	require.Equal(t, 2, active)
}

func TestUpdateGrantedScopes_EmptySetKeepsConsentAlive(t *testing.T) {
	svc, repo, _, _ := fixture(t)
	ctx := context.Background()

	err := svc.UpdateGrantedScopes(ctx, "mem-1", "admin", nil)
	require.NoError(t, err)

	granted, err := svc.EffectiveScopes(ctx, "mem-1")
	require.NoError(t, err)
	require.Empty(t, granted)

	require.Equal(t, StatusActive, repo.consents["mem-1"].Status)
}

func TestUpdateGrantedScopes_RejectsUnknownScope(t *testing.T) {
	svc, _, _, _ := fixture(t)

	err := svc.UpdateGrantedScopes(context.Background(), "mem-1", "admin", []scopes.Code{"telepathy"})
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestPause_HidesScopesAndResumeRestores(t *testing.T) {
	svc, _, _, _ := fixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Pause(ctx, "mem-1", "admin"))

	granted, err := svc.EffectiveScopes(ctx, "mem-1")
	require.NoError(t, err)
	require.Empty(t, granted, "paused consent yields no scopes")

	require.NoError(t, svc.Resume(ctx, "mem-1", "admin"))

	granted, err = svc.EffectiveScopes(ctx, "mem-1")
	require.NoError(t, err)
	require.ElementsMatch(t, []scopes.Code{scopes.Seizures, scopes.Meds}, granted, "grants survive the pause untouched")
}

func TestPause_Idempotent(t *testing.T) {
	svc, _, _, rec := fixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Pause(ctx, "mem-1", "admin"))
	require.NoError(t, svc.Pause(ctx, "mem-1", "admin"))

	// Solo la primera transición audita.
	require.Len(t, rec.entries, 1)
	require.Equal(t, "ACTIVE", rec.entries[0].Metadata["from"])
	require.Equal(t, "PAUSED", rec.entries[0].Metadata["to"])
}

func TestRevoke_TerminalAndCascades(t *testing.T) {
	svc, repo, members, rec := fixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Revoke(ctx, "mem-1", "admin"))

	require.Equal(t, StatusRevoked, repo.consents["mem-1"].Status)
	require.NotNil(t, repo.consents["mem-1"].RevokedAt)
	require.NotNil(t, members.byID["mem-1"].RevokedAt, "membership revoked in the same unit")

	// Sin camino de vuelta.
	require.ErrorIs(t, svc.Resume(ctx, "mem-1", "admin"), errs.ErrInvalidTransition)
	require.ErrorIs(t, svc.Pause(ctx, "mem-1", "admin"), errs.ErrInvalidTransition)
	require.ErrorIs(t, svc.Revoke(ctx, "mem-1", "admin"), errs.ErrInvalidTransition)
	require.ErrorIs(t, svc.UpdateGrantedScopes(ctx, "mem-1", "admin", []scopes.Code{scopes.Sleep}), errs.ErrInvalidTransition)

	granted, err := svc.EffectiveScopes(ctx, "mem-1")
	require.NoError(t, err)
	require.Empty(t, granted)

	require.Len(t, rec.entries, 1)
	require.Equal(t, audit.ActionRevoke, rec.entries[0].Action)
	require.Equal(t, audit.ObjectMembership, rec.entries[0].ObjectType)
}

func TestMutations_RequireAdmin(t *testing.T) {
	repo := newTestRepo()
	members := &testMembers{byID: map[string]memberships.Membership{
		"mem-1": {ID: "mem-1", CaseID: "case-1", UserID: "dr-ana", Kind: memberships.KindCareTeam},
	}}
	svc := NewService(repo, members, allowGuard{denied: true}, &testRecorder{}, nopUOW{})
	ctx := context.Background()

	require.ErrorIs(t, svc.Pause(ctx, "mem-1", "aunt"), errs.ErrPermissionDenied)
	require.ErrorIs(t, svc.Revoke(ctx, "mem-1", "aunt"), errs.ErrPermissionDenied)
	require.ErrorIs(t, svc.UpdateGrantedScopes(ctx, "mem-1", "aunt", nil), errs.ErrPermissionDenied)
}

func TestMutations_AuditFailureAborts(t *testing.T) {
	svc, _, _, rec := fixture(t)
	rec.fail = true

	err := svc.Pause(context.Background(), "mem-1", "admin")
	require.ErrorIs(t, err, errs.ErrAuditWriteFailed)
}
