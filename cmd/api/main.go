package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"care-journal/internal/adapters/accounts/directory"
	"care-journal/internal/adapters/accounts/memdir"
	"care-journal/internal/adapters/auth/jwtverify"
	pg "care-journal/internal/adapters/storage/postgres"
	"care-journal/internal/migrate"
	"care-journal/internal/platform/logger"
	"care-journal/internal/ports/accounts"
	"care-journal/internal/ports/auth"
	"care-journal/internal/router"
)

// @title Care Journal API
// @version 1.0
// @description Diario de salud compartido: membresías, invitaciones, consents por scope y audit trail.
// @BasePath /
func main() {
	log := logger.NewFromEnv()
	defer func() { _ = log.Sync() }()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	var db *sql.DB
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		opened, err := pg.Open(dsn)
		if err != nil {
			log.Fatal("postgres connect failed", zap.Error(err))
		}
		db = opened

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := migrate.Up(ctx, db); err != nil {
			cancel()
			log.Fatal("migrations failed", zap.Error(err))
		}
		cancel()
	}

	// Verifier: JWT HS256 si hay secreto; sin secreto queda el modo dev
	// (X-Debug-User-ID).
	var verifier auth.TokenVerifier
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		verifier = jwtverify.New([]byte(secret))
	}

	// Directorio de cuentas: HTTP si está configurado, memoria para dev.
	var dir accounts.Directory
	if base := os.Getenv("ACCOUNTS_URL"); base != "" {
		c, err := directory.NewClient(directory.Config{
			BaseURL: base,
			APIKey:  os.Getenv("ACCOUNTS_API_KEY"),
		})
		if err != nil {
			log.Fatal("accounts directory config invalid", zap.Error(err))
		}
		dir = c
	} else {
		dir = memdir.New()
		log.Warn("ACCOUNTS_URL no configurado, usando directorio en memoria")
	}

	linkBase := os.Getenv("INVITE_LINK_BASE")
	if linkBase == "" {
		linkBase = "http://localhost:8080"
	}

	r := router.NewRouter(router.Options{
		AuthVerifier:   verifier,
		Directory:      dir,
		Logger:         log,
		DB:             db,
		InviteLinkBase: linkBase,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server error", zap.Error(err))
	}
}
