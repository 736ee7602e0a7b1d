package scopes

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
)

// Endpoints de referencia para poblar pickers del cliente. Son data
// estática: no requieren membresía.
func RegisterRoutes(r chi.Router) {
	r.Get("/scopes", listScopesHandler())
	r.Get("/specialties", listSpecialtiesHandler())
}

type scopeResponse struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type specialtyResponse struct {
	Code          string   `json:"code"`
	Label         string   `json:"label"`
	DefaultScopes []string `json:"default_scopes"`
}

// listScopesHandler godoc
// @Summary Registro de scopes
// @Description Lista las categorías de datos clínicos disponibles, en orden estable.
// @Tags scopes
// @Produce json
// @Success 200 {array} scopeResponse
// @Router /scopes [get]
func listScopesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := make([]scopeResponse, 0, len(registry))
		for _, s := range registry {
			out = append(out, scopeResponse{Code: string(s.Code), Label: s.Label})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// listSpecialtiesHandler godoc
// @Summary Tabla de especialidades
// @Description Lista las especialidades clínicas con sus scopes default (lo que siembra el consent al aceptar una invitación).
// @Tags scopes
// @Produce json
// @Success 200 {array} specialtyResponse
// @Router /specialties [get]
func listSpecialtiesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := make([]specialtyResponse, 0, len(specialties))
		for code, info := range specialties {
			ds := make([]string, 0, len(info.DefaultScopes))
			for _, c := range info.DefaultScopes {
				ds = append(ds, string(c))
			}
			out = append(out, specialtyResponse{
				Code:          string(code),
				Label:         info.Label,
				DefaultScopes: ds,
			})
		}
		sort.Slice(out, func(a, b int) bool { return out[a].Code < out[b].Code })
		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
