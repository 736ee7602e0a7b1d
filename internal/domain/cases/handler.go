package cases

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"care-journal/internal/errs"
	"care-journal/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/cases", func(cr chi.Router) {
		cr.Post("/", createCaseHandler(svc))
		cr.Get("/", listMyCasesHandler(svc))
		cr.Get("/{caseID}", getCaseHandler(svc))
	})
}

type createCaseRequest struct {
	ChildDisplayName string `json:"child_display_name"`
}

type caseResponse struct {
	ID               string    `json:"id"`
	ChildDisplayName string    `json:"child_display_name"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// createCaseHandler godoc
// @Summary Crear caso
// @Description Crea el expediente del niño y registra al creador como admin familiar. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags cases
// @Accept json
// @Produce json
// @Param payload body createCaseRequest true "Datos del caso"
// @Success 201 {object} caseResponse
// @Failure 400 {string} string "invalid json / child_display_name required"
// @Failure 401 {string} string "unauthorized"
// @Router /cases [post]
func createCaseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createCaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.Create(r.Context(), claims.UserID, req.ChildDisplayName)
		if err != nil {
			switch {
			case errors.Is(err, errs.ErrInvalidInput):
				http.Error(w, "child_display_name required", http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toCaseResponse(c))
	}
}

func listMyCasesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListMine(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]caseResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toCaseResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getCaseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		c, err := svc.Get(r.Context(), chi.URLParam(r, "caseID"), claims.UserID)
		if err != nil {
			switch {
			case errors.Is(err, errs.ErrInvalidInput):
				http.Error(w, "invalid input", http.StatusBadRequest)
			case errors.Is(err, errs.ErrNotFound):
				http.Error(w, "case not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toCaseResponse(c))
	}
}

func toCaseResponse(c Case) caseResponse {
	return caseResponse{
		ID:               c.ID,
		ChildDisplayName: c.ChildDisplayName,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
