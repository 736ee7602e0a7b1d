package memberships

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"care-journal/internal/domain/scopes"
	"care-journal/internal/errs"
	"care-journal/internal/middleware"
	"care-journal/internal/ports/accounts"

	"github.com/go-chi/chi/v5"
)

// ConsentLookup trae el estado de sharing de una membresía clínica sin
// importar el paquete consents (rompe ciclos).
type ConsentLookup interface {
	Status(ctx context.Context, membershipID string) (string, error)
	EffectiveScopes(ctx context.Context, membershipID string) ([]scopes.Code, error)
}

func RegisterRoutes(r chi.Router, svc *Service, consentInfo ConsentLookup, directory accounts.Directory) {
	r.Get("/cases/{caseID}/members", listMembersHandler(svc, consentInfo, directory))
	r.Post("/memberships/{membershipID}/revoke", revokeMembershipHandler(svc))
}

type memberResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Kind      string `json:"kind"`
	Authority string `json:"authority,omitempty"`
	Specialty string `json:"specialty,omitempty"`

	// Solo CARE_TEAM: estado del consent y scopes otorgados.
	ConsentStatus string        `json:"consent_status,omitempty"`
	GrantedScopes []scopes.Code `json:"granted_scopes,omitempty"`

	AddedAt   time.Time  `json:"added_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// listMembersHandler godoc
// @Summary Resumen de sharing del caso
// @Description Lista quién tiene acceso al caso: familiares con su autoridad y clínicos con estado de consent y scopes otorgados. Solo un admin familiar puede verlo.
// @Tags memberships
// @Produce json
// @Param caseID path string true "ID del caso"
// @Success 200 {array} memberResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /cases/{caseID}/members [get]
func listMembersHandler(svc *Service, consentInfo ConsentLookup, directory accounts.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByCase(r.Context(), chi.URLParam(r, "caseID"), claims.UserID)
		if err != nil {
			switch {
			case errors.Is(err, errs.ErrInvalidInput):
				http.Error(w, "invalid input", http.StatusBadRequest)
			case errors.Is(err, errs.ErrPermissionDenied):
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		out := make([]memberResponse, 0, len(items))
		for _, m := range items {
			resp := memberResponse{
				ID:        m.ID,
				UserID:    m.UserID,
				Kind:      string(m.Kind),
				Authority: string(m.Authority),
				Specialty: string(m.Specialty),
				AddedAt:   m.AddedAt,
				RevokedAt: m.RevokedAt,
			}

			// Nombre y email son decoración: si el directorio no responde,
			// la vista sale igual.
			if u, err := directory.UserByID(r.Context(), m.UserID); err == nil {
				resp.Name = u.Name
				resp.Email = u.Email
			}

			if m.Kind == KindCareTeam {
				if st, err := consentInfo.Status(r.Context(), m.ID); err == nil {
					resp.ConsentStatus = st
				}
				if granted, err := consentInfo.EffectiveScopes(r.Context(), m.ID); err == nil {
					resp.GrantedScopes = granted
				}
			}

			out = append(out, resp)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// revokeMembershipHandler godoc
// @Summary Revocar una membresía
// @Description Revoca (soft) el acceso de un miembro al caso. Requiere admin familiar; revocarse a uno mismo se rechaza.
// @Tags memberships
// @Produce json
// @Param membershipID path string true "ID de la membresía"
// @Success 204 {string} string ""
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "membership not found"
// @Failure 409 {string} string "cannot revoke own membership"
// @Router /memberships/{membershipID}/revoke [post]
func revokeMembershipHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		err := svc.Revoke(r.Context(), chi.URLParam(r, "membershipID"), claims.UserID)
		if err != nil {
			switch {
			case errors.Is(err, errs.ErrInvalidInput):
				http.Error(w, "invalid input", http.StatusBadRequest)
			case errors.Is(err, errs.ErrCannotSelfRevoke):
				http.Error(w, "cannot revoke own membership", http.StatusConflict)
			case errors.Is(err, errs.ErrPermissionDenied):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, errs.ErrNotFound):
				http.Error(w, "membership not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
