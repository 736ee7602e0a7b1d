package audit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"care-journal/internal/errs"
	"care-journal/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// AdminGuard valida que el actor sea admin familiar del caso. Este paquete
// no importa memberships (memberships ya importa audit).
type AdminGuard interface {
	RequireAdmin(ctx context.Context, caseID, userID string) error
}

func RegisterRoutes(r chi.Router, svc *Service, guard AdminGuard) {
	r.Route("/cases/{caseID}/audit", func(ar chi.Router) {
		ar.Get("/", listAuditHandler(svc, guard))
		ar.Get("/permissions", permissionChangesHandler(svc, guard))
	})
}

type entryResponse struct {
	ID          string         `json:"id"`
	ActorUserID string         `json:"actor_user_id"`
	Action      string         `json:"action"`
	ObjectType  string         `json:"object_type"`
	ObjectID    string         `json:"object_id"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	At          time.Time      `json:"at"`
}

// listAuditHandler godoc
// @Summary Audit trail del caso
// @Description Devuelve el log completo del caso, más reciente primero. Solo admin familiar.
// @Tags audit
// @Produce json
// @Param caseID path string true "ID del caso"
// @Param limit query int false "Máximo de entradas (default 100, máx 500)"
// @Success 200 {array} entryResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /cases/{caseID}/audit [get]
func listAuditHandler(svc *Service, guard AdminGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serveEntries(w, r, guard, svc.ListByCase)
	}
}

// permissionChangesHandler godoc
// @Summary Historial de cambios de permisos
// @Description Filtra el audit trail a las entradas que alteran privilegios (GRANT/REVOKE/EDIT sobre membresías, consents, grants e invitaciones). Solo admin familiar.
// @Tags audit
// @Produce json
// @Param caseID path string true "ID del caso"
// @Param limit query int false "Máximo de entradas"
// @Success 200 {array} entryResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /cases/{caseID}/audit/permissions [get]
func permissionChangesHandler(svc *Service, guard AdminGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serveEntries(w, r, guard, svc.PermissionChanges)
	}
}

func serveEntries(
	w http.ResponseWriter,
	r *http.Request,
	guard AdminGuard,
	list func(ctx context.Context, caseID string, limit int) ([]Entry, error),
) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	caseID := chi.URLParam(r, "caseID")
	if err := guard.RequireAdmin(r.Context(), caseID, claims.UserID); err != nil {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	items, err := list(r.Context(), caseID, limit)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidInput):
			http.Error(w, "invalid input", http.StatusBadRequest)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	out := make([]entryResponse, 0, len(items))
	for _, e := range items {
		out = append(out, entryResponse{
			ID:          e.ID,
			ActorUserID: e.ActorUserID,
			Action:      string(e.Action),
			ObjectType:  e.ObjectType,
			ObjectID:    e.ObjectID,
			Metadata:    e.Metadata,
			At:          e.At,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
