package consents

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"care-journal/internal/domain/scopes"
	"care-journal/internal/errs"
	"care-journal/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/memberships/{membershipID}/consent", func(cr chi.Router) {
		cr.Put("/scopes", updateScopesHandler(svc))
		cr.Post("/pause", pauseHandler(svc))
		cr.Post("/resume", resumeHandler(svc))
		cr.Post("/revoke", revokeHandler(svc))
	})
}

type updateScopesRequest struct {
	Scopes []string `json:"scopes"`
}

type consentStateResponse struct {
	MembershipID  string        `json:"membership_id"`
	Status        string        `json:"status"`
	GrantedScopes []scopes.Code `json:"granted_scopes"`
}

// updateScopesHandler godoc
// @Summary Reemplazar los scopes otorgados a un clínico
// @Description Full-replace del set de categorías visibles para la membresía clínica. Lista vacía deja al clínico sin acceso a datos pero con el consent vivo. Requiere admin familiar.
// @Tags consents
// @Accept json
// @Produce json
// @Param membershipID path string true "ID de la membresía clínica"
// @Param payload body updateScopesRequest true "Set completo deseado"
// @Success 200 {object} consentStateResponse
// @Failure 400 {string} string "invalid json / scope desconocido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "consent not found"
// @Failure 409 {string} string "consent revoked"
// @Router /memberships/{membershipID}/consent/scopes [put]
func updateScopesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req updateScopesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		codes := make([]scopes.Code, 0, len(req.Scopes))
		for _, s := range req.Scopes {
			codes = append(codes, scopes.Code(strings.TrimSpace(s)))
		}

		membershipID := chi.URLParam(r, "membershipID")
		if err := svc.UpdateGrantedScopes(r.Context(), membershipID, claims.UserID, codes); err != nil {
			writeConsentError(w, err)
			return
		}

		writeState(w, svc, r, membershipID)
	}
}

// pauseHandler godoc
// @Summary Pausar el consent de un clínico
// @Description Suspende la visibilidad sin perder los grants: al reanudar vuelven tal cual. Idempotente si ya está pausado. Requiere admin familiar.
// @Tags consents
// @Produce json
// @Param membershipID path string true "ID de la membresía clínica"
// @Success 200 {object} consentStateResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "consent not found"
// @Failure 409 {string} string "consent revoked"
// @Router /memberships/{membershipID}/consent/pause [post]
func pauseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		membershipID := chi.URLParam(r, "membershipID")
		if err := svc.Pause(r.Context(), membershipID, claims.UserID); err != nil {
			writeConsentError(w, err)
			return
		}
		writeState(w, svc, r, membershipID)
	}
}

func resumeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		membershipID := chi.URLParam(r, "membershipID")
		if err := svc.Resume(r.Context(), membershipID, claims.UserID); err != nil {
			writeConsentError(w, err)
			return
		}
		writeState(w, svc, r, membershipID)
	}
}

// revokeHandler godoc
// @Summary Revocar el consent de un clínico
// @Description Terminal: revoca el consent y la membresía clínica en la misma unidad atómica. No hay camino de vuelta; re-acceso requiere nueva invitación.
// @Tags consents
// @Produce json
// @Param membershipID path string true "ID de la membresía clínica"
// @Success 204 {string} string ""
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "consent not found"
// @Failure 409 {string} string "consent already revoked"
// @Router /memberships/{membershipID}/consent/revoke [post]
func revokeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.Revoke(r.Context(), chi.URLParam(r, "membershipID"), claims.UserID); err != nil {
			writeConsentError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeState(w http.ResponseWriter, svc *Service, r *http.Request, membershipID string) {
	st, err := svc.Status(r.Context(), membershipID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	granted, err := svc.EffectiveScopes(r.Context(), membershipID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, consentStateResponse{
		MembershipID:  membershipID,
		Status:        string(st),
		GrantedScopes: granted,
	})
}

func writeConsentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		http.Error(w, "invalid input", http.StatusBadRequest)
	case errors.Is(err, errs.ErrPermissionDenied):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, errs.ErrNotFound):
		http.Error(w, "consent not found", http.StatusNotFound)
	case errors.Is(err, errs.ErrInvalidTransition):
		http.Error(w, "consent revoked", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
