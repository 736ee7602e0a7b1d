package events

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"care-journal/internal/domain/scopes"
	"care-journal/internal/errs"
	"care-journal/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/cases/{caseID}/events", func(er chi.Router) {
		er.Post("/", createEventHandler(svc))
		er.Get("/", listEventsHandler(svc))
		er.Get("/export", exportEventsHandler(svc))
	})
	r.Delete("/events/{eventID}", deleteEventHandler(svc))
}

type createEventRequest struct {
	Type       string   `json:"type"`
	FreeText   string   `json:"free_text"`
	OccurredAt string   `json:"occurred_at"` // RFC3339
	Scopes     []string `json:"scopes"`
}

type eventResponse struct {
	ID         string    `json:"id"`
	CaseID     string    `json:"case_id"`
	AuthorID   string    `json:"author_id"`
	Type       string    `json:"type"`
	FreeText   string    `json:"free_text"`
	OccurredAt time.Time `json:"occurred_at"`
	LoggedAt   time.Time `json:"logged_at"`
	Backdated  bool      `json:"backdated"`

	// Tags ya redactados al set del viewer.
	Scopes          []scopes.Code `json:"scopes"`
	PartiallyHidden bool          `json:"partially_hidden"`
}

// createEventHandler godoc
// @Summary Registrar una observación
// @Description Crea una entrada del diario con cero o más tags de scope. Familia necesita autoridad EDITOR o superior; un clínico necesita consent activo con al menos un scope.
// @Tags events
// @Accept json
// @Produce json
// @Param caseID path string true "ID del caso"
// @Param payload body createEventRequest true "Observación; occurred_at en RFC3339"
// @Success 201 {object} eventResponse
// @Failure 400 {string} string "invalid json / occurred_at inválido / scope desconocido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /cases/{caseID}/events [post]
func createEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		t, err := time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			http.Error(w, "occurred_at must be RFC3339", http.StatusBadRequest)
			return
		}

		tags := make([]scopes.Code, 0, len(req.Scopes))
		for _, s := range req.Scopes {
			tags = append(tags, scopes.Code(strings.TrimSpace(s)))
		}

		e, err := svc.Create(r.Context(), chi.URLParam(r, "caseID"), claims.UserID, CreateInput{
			Type:       EventType(strings.ToUpper(strings.TrimSpace(req.Type))),
			FreeText:   req.FreeText,
			OccurredAt: t,
			Scopes:     tags,
		})
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

		// El autor ve sus propios tags completos.
		writeJSON(w, http.StatusCreated, toEventResponse(View{Event: e, Shown: e.Scopes}))
	}
}

// listEventsHandler godoc
// @Summary Listar el diario visible para el viewer
// @Description Devuelve las entradas que el viewer puede ver, con los tags ya redactados a su set otorgado y la señal `partially_hidden` cuando se ocultó al menos un tag. Filtros: `types` (CSV), `before` (RFC3339), `limit`.
// @Tags events
// @Produce json
// @Param caseID path string true "ID del caso"
// @Param types query string false "Tipos a incluir, CSV"
// @Param before query string false "Solo entradas anteriores a este instante (RFC3339)"
// @Param limit query int false "Máximo de entradas"
// @Success 200 {array} eventResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /cases/{caseID}/events [get]
func listEventsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		views, err := svc.ListForViewer(r.Context(), chi.URLParam(r, "caseID"), claims.UserID, filter)
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

		out := make([]eventResponse, 0, len(views))
		for _, v := range views {
			out = append(out, toEventResponse(v))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// exportEventsHandler godoc
// @Summary Exportar el diario visible para el viewer
// @Description Igual que el listado pero deja constancia EXPORT en el audit trail; si el audit no persiste, el export falla completo.
// @Tags events
// @Produce json
// @Param caseID path string true "ID del caso"
// @Success 200 {array} eventResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /cases/{caseID}/events/export [get]
func exportEventsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		views, err := svc.Export(r.Context(), chi.URLParam(r, "caseID"), claims.UserID)
		if err != nil {
			switch {
			case errors.Is(err, errs.ErrPermissionDenied):
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		out := make([]eventResponse, 0, len(views))
		for _, v := range views {
			out = append(out, toEventResponse(v))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func deleteEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		err := svc.Delete(r.Context(), chi.URLParam(r, "eventID"), claims.UserID)
		if err != nil {
			switch {
			case errors.Is(err, errs.ErrInvalidInput):
				http.Error(w, "invalid input", http.StatusBadRequest)
			case errors.Is(err, errs.ErrNotFound):
				http.Error(w, "event not found", http.StatusNotFound)
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

func parseListFilter(r *http.Request) (ListFilter, error) {
	var f ListFilter

	if raw := strings.TrimSpace(r.URL.Query().Get("types")); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			t := EventType(strings.ToUpper(strings.TrimSpace(p)))
			if t == "" {
				continue
			}
			f.Types = append(f.Types, t)
		}
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("before")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return ListFilter{}, errors.New("before must be RFC3339")
		}
		f.Before = &t
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return ListFilter{}, errors.New("limit must be a non-negative integer")
		}
		f.Limit = n
	}

	return f, nil
}

func toEventResponse(v View) eventResponse {
	shown := v.Shown
	if shown == nil {
		shown = []scopes.Code{}
	}
	return eventResponse{
		ID:              v.ID,
		CaseID:          v.CaseID,
		AuthorID:        v.AuthorID,
		Type:            string(v.Type),
		FreeText:        v.FreeText,
		OccurredAt:      v.OccurredAt,
		LoggedAt:        v.LoggedAt,
		Backdated:       v.Backdated(),
		Scopes:          shown,
		PartiallyHidden: v.PartiallyHidden,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
