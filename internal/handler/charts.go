package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matthewbaird/intake/internal/chart"
)

// ChartHandler exposes the mounted dashboard charts.
type ChartHandler struct {
	charts *chart.Registry
}

// NewChartHandler creates a new ChartHandler.
func NewChartHandler(charts *chart.Registry) *ChartHandler {
	return &ChartHandler{charts: charts}
}

func (h *ChartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/charts", h.List)
	r.Get("/charts/*", h.Get)
	r.Delete("/charts/*", h.Destroy)
}

// List returns the mounted chart ids.
// GET /v1/charts
func (h *ChartHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"charts": h.charts.IDs()})
}

// Get returns one chart's latest configuration. Ids contain slashes, so the
// id is the rest of the path.
// GET /v1/charts/{id...}
func (h *ChartHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, ok := h.charts.Get(chi.URLParam(r, "*"))
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "chart not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Destroy unmounts a chart.
// DELETE /v1/charts/{id...}
func (h *ChartHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	err := h.charts.Destroy(r.Context(), chi.URLParam(r, "*"))
	if errors.Is(err, chart.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "chart not found")
		return
	}
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
