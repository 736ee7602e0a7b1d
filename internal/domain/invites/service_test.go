package invites

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"care-journal/internal/domain/audit"
	"care-journal/internal/domain/consents"
	"care-journal/internal/domain/memberships"
	"care-journal/internal/domain/scopes"
	"care-journal/internal/errs"
	"care-journal/internal/ports/accounts"
)

// -------------------------
// Fakes
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Invite
}

func newTestRepo() *testRepo { return &testRepo{byID: map[string]Invite{}} }

func (r *testRepo) Create(ctx context.Context, i Invite) error {
	r.byID[i.ID] = i
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Invite, error) {
	i, ok := r.byID[id]
	if !ok {
		return Invite{}, errRepoNotFound
	}
	return i, nil
}

func (r *testRepo) GetByToken(ctx context.Context, token string) (Invite, error) {
	for _, i := range r.byID {
		if i.Token == token {
			return i, nil
		}
	}
	return Invite{}, errRepoNotFound
}

func (r *testRepo) FindPending(ctx context.Context, caseID, email string, now time.Time) (Invite, error) {
	for _, i := range r.byID {
		if i.CaseID == caseID && strings.EqualFold(i.Email, email) && i.AcceptedAt == nil && !i.Expired(now) {
			return i, nil
		}
	}
	return Invite{}, errRepoNotFound
}

func (r *testRepo) ListPending(ctx context.Context, caseID string, now time.Time) ([]Invite, error) {
	out := make([]Invite, 0)
	for _, i := range r.byID {
		if i.CaseID == caseID && i.AcceptedAt == nil && !i.Expired(now) {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r *testRepo) Update(ctx context.Context, i Invite) error {
	if _, ok := r.byID[i.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[i.ID] = i
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return errRepoNotFound
	}
	delete(r.byID, id)
	return nil
}

type testMembers struct {
	created []memberships.Membership
}

func (m *testMembers) Create(ctx context.Context, v memberships.Membership) error {
	m.created = append(m.created, v)
	return nil
}

func (m *testMembers) Resolve(ctx context.Context, caseID, userID string) (memberships.Membership, error) {
	for _, v := range m.created {
		if v.CaseID == caseID && v.UserID == userID && v.Active() {
			return v, nil
		}
	}
	return memberships.Membership{}, errRepoNotFound
}

type allowGuard struct{ denied bool }

func (g allowGuard) RequireAuthority(ctx context.Context, caseID, userID string, min memberships.Authority) (memberships.Membership, error) {
	if g.denied {
		return memberships.Membership{}, errs.ErrPermissionDenied
	}
	return memberships.Membership{CaseID: caseID, UserID: userID}, nil
}

type testEstablisher struct {
	caseID       string
	membershipID string
	initial      []scopes.Code
	calls        int
}

func (e *testEstablisher) Establish(ctx context.Context, caseID, membershipID string, initial []scopes.Code) (consents.Consent, error) {
	e.caseID = caseID
	e.membershipID = membershipID
	e.initial = initial
	e.calls++
	return consents.Consent{ID: "consent-1", CaseID: caseID, MembershipID: membershipID, Status: consents.StatusActive}, nil
}

type testDirectory struct {
	users map[string]accounts.User // por id
}

func (d *testDirectory) UserByID(ctx context.Context, id string) (accounts.User, error) {
	u, ok := d.users[id]
	if !ok {
		return accounts.User{}, errRepoNotFound
	}
	return u, nil
}

func (d *testDirectory) UserByEmail(ctx context.Context, email string) (accounts.User, error) {
	for _, u := range d.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return accounts.User{}, errRepoNotFound
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

type fixture struct {
	svc       *Service
	repo      *testRepo
	members   *testMembers
	consents  *testEstablisher
	directory *testDirectory
	rec       *testRecorder
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:     newTestRepo(),
		members:  &testMembers{},
		consents: &testEstablisher{},
		directory: &testDirectory{users: map[string]accounts.User{
			"aunt-1": {ID: "aunt-1", Name: "Tía Marta", Email: "marta@example.com"},
			"dr-1":   {ID: "dr-1", Name: "Dra. Ana", Email: "ana@clinic.example"},
		}},
		rec: &testRecorder{},
		now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.repo, f.members, allowGuard{}, f.consents, f.directory, f.rec, nopUOW{}, "https://app.example.com/")
	f.svc.now = func() time.Time { return f.now }
	return f
}

// -------------------------
// Tests
// -------------------------

func TestNewToken_ShapeAndUniqueness(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		tok, err := NewToken()
		require.NoError(t, err)
		require.Len(t, tok, 32)
		require.NotContains(t, tok, "+")
		require.NotContains(t, tok, "/")
		require.NotContains(t, tok, "=")
		_, dup := seen[tok]
		require.False(t, dup, "token repeated")
		seen[tok] = struct{}{}
	}
}

func TestCreate_IssuesLinkAndExpiry(t *testing.T) {
	f := newFixture(t)

	inv, link, err := f.svc.Create(context.Background(), "case-1", "admin", CreateInput{
		Email: "New.Person@Example.COM",
		Type:  TypeFamily,
		Role:  memberships.AuthorityViewer,
	})
	require.NoError(t, err)

	require.Equal(t, "new.person@example.com", inv.Email, "email stored lowercase")
	require.Equal(t, f.now.AddDate(0, 0, 7), inv.ExpiresAt)
	require.Len(t, inv.Token, 32)
	require.Equal(t, "https://app.example.com/invite/"+inv.Token, link)

	require.Len(t, f.rec.entries, 1)
	require.Equal(t, audit.ActionGrant, f.rec.entries[0].Action)
	require.Equal(t, audit.ObjectInvite, f.rec.entries[0].ObjectType)
}

func TestCreate_RejectsDuplicatePending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := CreateInput{Email: "x@example.com", Type: TypeFamily, Role: memberships.AuthorityViewer}
	_, _, err := f.svc.Create(ctx, "case-1", "admin", in)
	require.NoError(t, err)

	_, _, err = f.svc.Create(ctx, "case-1", "admin", in)
	require.ErrorIs(t, err, errs.ErrInvitePending)
}

func TestCreate_RejectsExistingMember(t *testing.T) {
	f := newFixture(t)
	f.members.created = append(f.members.created, memberships.Membership{
		ID: "m1", CaseID: "case-1", UserID: "aunt-1",
		Kind: memberships.KindFamily, Authority: memberships.AuthorityViewer,
	})

	_, _, err := f.svc.Create(context.Background(), "case-1", "admin", CreateInput{
		Email: "marta@example.com", Type: TypeFamily, Role: memberships.AuthorityViewer,
	})
	require.ErrorIs(t, err, errs.ErrAlreadyMember)
}

func TestCreate_ValidatesInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Create(ctx, "case-1", "admin", CreateInput{Email: "not-an-email", Type: TypeFamily, Role: memberships.AuthorityViewer})
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	_, _, err = f.svc.Create(ctx, "case-1", "admin", CreateInput{Email: "x@example.com", Type: TypeFamily, Role: "OWNER"})
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	_, _, err = f.svc.Create(ctx, "case-1", "admin", CreateInput{Email: "x@example.com", Type: "ROBOT"})
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestAccept_FamilyCreatesMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, _, err := f.svc.Create(ctx, "case-1", "admin", CreateInput{
		Email: "marta@example.com", Type: TypeFamily, Role: memberships.AuthorityEditor,
	})
	require.NoError(t, err)

	got, err := f.svc.Accept(ctx, inv.Token, "aunt-1", "")
	require.NoError(t, err)
	require.NotNil(t, got.AcceptedAt)

	require.Len(t, f.members.created, 1)
	m := f.members.created[0]
	require.Equal(t, memberships.KindFamily, m.Kind)
	require.Equal(t, memberships.AuthorityEditor, m.Authority)
	require.Equal(t, "aunt-1", m.UserID)

	require.Zero(t, f.consents.calls, "family accept must not touch consents")

	// Un token es de un solo uso.
	_, err = f.svc.Accept(ctx, inv.Token, "aunt-1", "")
	require.ErrorIs(t, err, errs.ErrAlreadyAccepted)
}

func TestAccept_ClinicianSeedsConsentFromSpecialty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, _, err := f.svc.Create(ctx, "case-1", "admin", CreateInput{
		Email: "ana@clinic.example", Type: TypeClinician,
	})
	require.NoError(t, err)

	// Sin especialidad válida no hay accept clínico.
	_, err = f.svc.Accept(ctx, inv.Token, "dr-1", "astrology")
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	got, err := f.svc.Accept(ctx, inv.Token, "dr-1", scopes.SpecialtyNeurology)
	require.NoError(t, err)
	require.Equal(t, scopes.SpecialtyNeurology, got.Specialty)

	require.Len(t, f.members.created, 1)
	require.Equal(t, memberships.KindCareTeam, f.members.created[0].Kind)
	require.Equal(t, scopes.SpecialtyNeurology, f.members.created[0].Specialty)

	require.Equal(t, 1, f.consents.calls)
	require.Equal(t, f.members.created[0].ID, f.consents.membershipID)
	require.Equal(t, scopes.DefaultScopesFor(scopes.SpecialtyNeurology), f.consents.initial)
}

func TestAccept_ExpiryBoundaryIsExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, _, err := f.svc.Create(ctx, "case-1", "admin", CreateInput{
		Email: "marta@example.com", Type: TypeFamily, Role: memberships.AuthorityViewer,
	})
	require.NoError(t, err)

	// now == expiresAt cuenta como vencida.
	f.now = inv.ExpiresAt
	_, err = f.svc.Accept(ctx, inv.Token, "aunt-1", "")
	require.ErrorIs(t, err, errs.ErrExpired)

	// Un instante antes todavía vale.
	f.now = inv.ExpiresAt.Add(-time.Second)
	_, err = f.svc.Accept(ctx, inv.Token, "aunt-1", "")
	require.NoError(t, err)
}

func TestAccept_EmailMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, _, err := f.svc.Create(ctx, "case-1", "admin", CreateInput{
		Email: "someone.else@example.com", Type: TypeFamily, Role: memberships.AuthorityViewer,
	})
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, inv.Token, "aunt-1", "")
	require.ErrorIs(t, err, errs.ErrEmailMismatch)
}

func TestAccept_EmailComparisonIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, _, err := f.svc.Create(ctx, "case-1", "admin", CreateInput{
		Email: "MARTA@EXAMPLE.COM", Type: TypeFamily, Role: memberships.AuthorityViewer,
	})
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, inv.Token, "aunt-1", "")
	require.NoError(t, err)
}

func TestAccept_UnknownToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Accept(context.Background(), "no-such-token", "aunt-1", "")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCancel_RemovesPendingAndAudits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, _, err := f.svc.Create(ctx, "case-1", "admin", CreateInput{
		Email: "x@example.com", Type: TypeFamily, Role: memberships.AuthorityViewer,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(ctx, inv.ID, "admin"))
	require.Empty(t, f.repo.byID)

	last := f.rec.entries[len(f.rec.entries)-1]
	require.Equal(t, audit.ActionRevoke, last.Action)
	require.Equal(t, audit.ObjectInvite, last.ObjectType)

	// El token cancelado muere con la invitación.
	_, err = f.svc.Accept(ctx, inv.Token, "aunt-1", "")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCancel_AcceptedInviteRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, _, err := f.svc.Create(ctx, "case-1", "admin", CreateInput{
		Email: "marta@example.com", Type: TypeFamily, Role: memberships.AuthorityViewer,
	})
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, inv.Token, "aunt-1", "")
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.Cancel(ctx, inv.ID, "admin"), errs.ErrAlreadyAccepted)
}

func TestListPending_ExcludesExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Create(ctx, "case-1", "admin", CreateInput{
		Email: "fresh@example.com", Type: TypeFamily, Role: memberships.AuthorityViewer,
	})
	require.NoError(t, err)

	f.now = f.now.AddDate(0, 0, 8)
	items, err := f.svc.ListPending(ctx, "case-1", "admin")
	require.NoError(t, err)
	require.Empty(t, items, "expired invites disappear from the pending view")
}
