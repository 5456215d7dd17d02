package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matthewbaird/intake/internal/availability"
	"github.com/matthewbaird/intake/internal/event"
)

// AvailabilityHandler serves attorney availability.
type AvailabilityHandler struct {
	Base
	svc *availability.Service
}

// NewAvailabilityHandler creates a new AvailabilityHandler.
func NewAvailabilityHandler(base Base, svc *availability.Service) *AvailabilityHandler {
	return &AvailabilityHandler{Base: base, svc: svc}
}

func (h *AvailabilityHandler) RegisterRoutes(r chi.Router) {
	r.Get("/availability", h.Board)
	r.Get("/users/{userID}/availability", h.Get)
	r.Put("/users/{userID}/availability", h.Set)
}

// Get returns a user's status picker. A failed read still answers 200 with
// Green and the read error text.
// GET /v1/users/{userID}/availability
func (h *AvailabilityHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Current(r.Context(), chi.URLParam(r, "userID")))
}

// Set stores a user's status.
// PUT /v1/users/{userID}/availability
func (h *AvailabilityHandler) Set(w http.ResponseWriter, r *http.Request) {
	audit, ok := parseAuditContext(w, r)
	if !ok {
		return
	}
	var req struct {
		Availability string `json:"availability"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	userID := chi.URLParam(r, "userID")
	prev, err := h.svc.Set(r.Context(), userID, req.Availability)
	if err != nil {
		if errors.Is(err, availability.ErrInvalidStatus) {
			writeJSON(w, http.StatusBadRequest, toast{
				Error: err.Error(),
				Code:  "VALIDATION_ERROR",
				Title: availability.UpdateErrorTitle,
			})
			return
		}
		errorToHTTP(w, err)
		return
	}
	st := h.svc.Current(r.Context(), userID)
	h.recordEvent(r.Context(), event.NewAvailabilityChanged(audit.Actor, event.AvailabilityChangedPayload{
		UserID:   userID,
		Previous: string(prev),
		Current:  string(st.Current),
	}))
	writeJSON(w, http.StatusOK, struct {
		availability.Status
		Message string `json:"message"`
	}{st, availability.UpdatedMessage})
}

// Board lists every active user's status.
// GET /v1/availability
func (h *AvailabilityHandler) Board(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Board(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, toast{
			Error: FormatError(err, availability.RefreshErrorMessage),
			Code:  "INTERNAL_ERROR",
			Title: availability.RefreshErrorMessage,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": rows, "message": availability.RefreshedMessage})
}
