package router

import (
	"context"
	"database/sql"
	"net/http"
	"os"

	"go.uber.org/zap"

	"care-journal/internal/adapters/storage/memory"
	pg "care-journal/internal/adapters/storage/postgres"
	"care-journal/internal/domain/audit"
	"care-journal/internal/domain/cases"
	"care-journal/internal/domain/consents"
	"care-journal/internal/domain/events"
	"care-journal/internal/domain/invites"
	"care-journal/internal/domain/memberships"
	"care-journal/internal/domain/scopes"
	"care-journal/internal/middleware"
	"care-journal/internal/ports/accounts"
	"care-journal/internal/ports/auth"
	"care-journal/internal/ports/storage"

	_ "care-journal/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.TokenVerifier // puede ser nil (modo dev)
	Directory    accounts.Directory
	Logger       *zap.Logger

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Base del link de invitación (ej. https://app.example.com).
	InviteLinkBase string
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))
	r.Use(middleware.RequestLogger(log))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var (
		casesRepo    cases.Repository
		membersRepo  memberships.Repository
		invitesRepo  invites.Repository
		consentsRepo consents.Repository
		eventsRepo   events.Repository
		auditRepo    audit.Repository
		uow          storage.UnitOfWork
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres no disponible, usando memoria", zap.Error(err))
			}
		}
	}

	if db != nil {
		casesRepo = pg.NewCasesRepo(db)
		membersRepo = pg.NewMembershipsRepo(db)
		invitesRepo = pg.NewInvitesRepo(db)
		consentsRepo = pg.NewConsentsRepo(db)
		eventsRepo = pg.NewEventsRepo(db)
		auditRepo = pg.NewAuditRepo(db)
		uow = pg.NewUnitOfWork(db)
	} else {
		casesRepo = memory.NewCasesRepo()
		membersRepo = memory.NewMembershipsRepo()
		invitesRepo = memory.NewInvitesRepo()
		consentsRepo = memory.NewConsentsRepo()
		eventsRepo = memory.NewEventsRepo()
		auditRepo = memory.NewAuditRepo()
		uow = memory.NewUnitOfWork()
	}

	// Services por módulo
	auditSvc := audit.NewService(auditRepo)
	membersSvc := memberships.NewService(membersRepo, auditSvc, uow)
	consentsSvc := consents.NewService(consentsRepo, membersRepo, membersSvc, auditSvc, uow)
	casesSvc := cases.NewService(casesRepo, membersRepo, auditSvc, uow)
	invitesSvc := invites.NewService(invitesRepo, membersRepo, membersSvc, consentsSvc, opts.Directory, auditSvc, uow, opts.InviteLinkBase)
	eventsSvc := events.NewService(eventsRepo, membersSvc, consentsSvc, auditSvc, uow)

	// Rutas por módulo
	scopes.RegisterRoutes(r)
	cases.RegisterRoutes(r, casesSvc)
	memberships.RegisterRoutes(r, membersSvc, consentLookup{consentsSvc}, opts.Directory)
	invites.RegisterRoutes(r, invitesSvc)
	consents.RegisterRoutes(r, consentsSvc)
	events.RegisterRoutes(r, eventsSvc)
	audit.RegisterRoutes(r, auditSvc, adminGuard{membersSvc})

	return r
}

// consentLookup adapta consents.Service al contrato string-only del
// handler de memberships.
type consentLookup struct {
	svc *consents.Service
}

func (c consentLookup) Status(ctx context.Context, membershipID string) (string, error) {
	st, err := c.svc.Status(ctx, membershipID)
	return string(st), err
}

func (c consentLookup) EffectiveScopes(ctx context.Context, membershipID string) ([]scopes.Code, error) {
	return c.svc.EffectiveScopes(ctx, membershipID)
}

// adminGuard adapta memberships.Service al guard del handler de audit.
type adminGuard struct {
	svc *memberships.Service
}

func (g adminGuard) RequireAdmin(ctx context.Context, caseID, userID string) error {
	_, err := g.svc.RequireAuthority(ctx, caseID, userID, memberships.AuthorityAdmin)
	return err
}
