package invites

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"care-journal/internal/domain/memberships"
	"care-journal/internal/domain/scopes"
	"care-journal/internal/errs"
	"care-journal/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/cases/{caseID}/invites", func(ir chi.Router) {
		ir.Post("/", createInviteHandler(svc))
		ir.Get("/", listPendingHandler(svc))
	})
	r.Delete("/invites/{inviteID}", cancelInviteHandler(svc))

	// Página de aceptación: quien tiene el link puede mirar y aceptar.
	r.Route("/invite/{token}", func(ir chi.Router) {
		ir.Get("/", getByTokenHandler(svc))
		ir.Post("/accept", acceptInviteHandler(svc))
	})
}

type createInviteRequest struct {
	Email string `json:"email"`
	Type  string `json:"type"` // FAMILY | CLINICIAN
	Role  string `json:"role"` // solo FAMILY: ADMIN | EDITOR | VIEWER
}

type acceptInviteRequest struct {
	Specialty string `json:"specialty"` // solo CLINICIAN
}

type inviteResponse struct {
	ID         string     `json:"id"`
	CaseID     string     `json:"case_id"`
	Email      string     `json:"email"`
	Type       string     `json:"type"`
	Role       string     `json:"role,omitempty"`
	Specialty  string     `json:"specialty,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`

	// Solo al crear: link compartible con el token embebido.
	Link string `json:"link,omitempty"`
}

// createInviteHandler godoc
// @Summary Invitar a un familiar o clínico
// @Description Emite una invitación atada al mailbox destino, con vencimiento a 7 días. Requiere admin familiar del caso. El token nunca se lista después de creado: compartir el link devuelto.
// @Tags invites
// @Accept json
// @Produce json
// @Param caseID path string true "ID del caso"
// @Param payload body createInviteRequest true "Destinatario y tipo de invitación"
// @Success 201 {object} inviteResponse
// @Failure 400 {string} string "invalid json / email inválido / role inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 409 {string} string "already a member / invite already pending"
// @Router /cases/{caseID}/invites [post]
func createInviteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createInviteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		inv, link, err := svc.Create(r.Context(), chi.URLParam(r, "caseID"), claims.UserID, CreateInput{
			Email: req.Email,
			Type:  Type(strings.ToUpper(strings.TrimSpace(req.Type))),
			Role:  memberships.Authority(strings.ToUpper(strings.TrimSpace(req.Role))),
		})
		if err != nil {
			switch {
			case errors.Is(err, errs.ErrInvalidInput):
				http.Error(w, "invalid input", http.StatusBadRequest)
			case errors.Is(err, errs.ErrPermissionDenied):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, errs.ErrAlreadyMember):
				http.Error(w, "already a member", http.StatusConflict)
			case errors.Is(err, errs.ErrInvitePending):
				http.Error(w, "invite already pending", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		resp := toInviteResponse(inv)
		resp.Link = link
		writeJSON(w, http.StatusCreated, resp)
	}
}

func listPendingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListPending(r.Context(), chi.URLParam(r, "caseID"), claims.UserID)
		if err != nil {
			switch {
			case errors.Is(err, errs.ErrPermissionDenied):
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		out := make([]inviteResponse, 0, len(items))
		for _, inv := range items {
			out = append(out, toInviteResponse(inv))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getByTokenHandler godoc
// @Summary Ver una invitación por token
// @Description Devuelve los datos de la invitación para la página de aceptación. No requiere membresía.
// @Tags invites
// @Produce json
// @Param token path string true "Token de la invitación"
// @Success 200 {object} inviteResponse
// @Failure 404 {string} string "invite not found"
// @Router /invite/{token} [get]
func getByTokenHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, err := svc.GetByToken(r.Context(), chi.URLParam(r, "token"))
		if err != nil {
			http.Error(w, "invite not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toInviteResponse(inv))
	}
}

// acceptInviteHandler godoc
// @Summary Aceptar una invitación
// @Description Consume el token una sola vez: valida email del usuario autenticado contra el destino, crea la membresía y, para clínicos, siembra el consent con los scopes default de la especialidad elegida.
// @Tags invites
// @Accept json
// @Produce json
// @Param token path string true "Token de la invitación"
// @Param payload body acceptInviteRequest false "Especialidad (solo clínicos)"
// @Success 200 {object} inviteResponse
// @Failure 400 {string} string "invalid json / specialty inválida"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "invite addressed to another email"
// @Failure 404 {string} string "invite not found"
// @Failure 409 {string} string "already accepted / already a member"
// @Failure 410 {string} string "invite expired"
// @Router /invite/{token}/accept [post]
func acceptInviteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req acceptInviteRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		inv, err := svc.Accept(r.Context(), chi.URLParam(r, "token"), claims.UserID,
			scopes.Specialty(strings.ToLower(strings.TrimSpace(req.Specialty))))
		if err != nil {
			switch {
			case errors.Is(err, errs.ErrInvalidInput):
				http.Error(w, "invalid input", http.StatusBadRequest)
			case errors.Is(err, errs.ErrNotFound):
				http.Error(w, "invite not found", http.StatusNotFound)
			case errors.Is(err, errs.ErrAlreadyAccepted):
				http.Error(w, "already accepted", http.StatusConflict)
			case errors.Is(err, errs.ErrAlreadyMember):
				http.Error(w, "already a member", http.StatusConflict)
			case errors.Is(err, errs.ErrExpired):
				http.Error(w, "invite expired", http.StatusGone)
			case errors.Is(err, errs.ErrEmailMismatch):
				http.Error(w, "invite addressed to another email", http.StatusForbidden)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toInviteResponse(inv))
	}
}

func cancelInviteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		err := svc.Cancel(r.Context(), chi.URLParam(r, "inviteID"), claims.UserID)
		if err != nil {
			switch {
			case errors.Is(err, errs.ErrInvalidInput):
				http.Error(w, "invalid input", http.StatusBadRequest)
			case errors.Is(err, errs.ErrNotFound):
				http.Error(w, "invite not found", http.StatusNotFound)
			case errors.Is(err, errs.ErrAlreadyAccepted):
				http.Error(w, "already accepted", http.StatusConflict)
			case errors.Is(err, errs.ErrPermissionDenied):
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func toInviteResponse(i Invite) inviteResponse {
	return inviteResponse{
		ID:         i.ID,
		CaseID:     i.CaseID,
		Email:      i.Email,
		Type:       string(i.Type),
		Role:       string(i.Role),
		Specialty:  string(i.Specialty),
		CreatedAt:  i.CreatedAt,
		ExpiresAt:  i.ExpiresAt,
		AcceptedAt: i.AcceptedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
