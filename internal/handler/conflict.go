package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matthewbaird/intake/internal/conflict"
	"github.com/matthewbaird/intake/internal/event"
)

// ConflictHandler serves conflict checks and their history.
type ConflictHandler struct {
	Base
	svc *conflict.Service
}

// NewConflictHandler creates a new ConflictHandler.
func NewConflictHandler(base Base, svc *conflict.Service) *ConflictHandler {
	return &ConflictHandler{Base: base, svc: svc}
}

func (h *ConflictHandler) RegisterRoutes(r chi.Router) {
	r.Get("/conflict/leads", h.SearchLeads)
	r.Route("/leads/{leadID}/conflict-checks", func(r chi.Router) {
		r.Post("/", h.Check)
		r.Get("/", h.History)
		r.Get("/{checkID}", h.GetCheck)
	})
}

// toast is the error body the console shows as a titled toast.
type toast struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Title string `json:"title"`
}

// Check runs a conflict check for the lead and saves it to its history.
// POST /v1/leads/{leadID}/conflict-checks
func (h *ConflictHandler) Check(w http.ResponseWriter, r *http.Request) {
	audit, ok := parseAuditContext(w, r)
	if !ok {
		return
	}
	var c conflict.Criteria
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	leadID := chi.URLParam(r, "leadID")
	if _, err := h.svc.Leads.GetLead(r.Context(), leadID); err != nil {
		errorToHTTP(w, err)
		return
	}

	res, err := h.svc.Check(r.Context(), leadID, audit.Actor, c)
	if h.Metrics != nil {
		h.Metrics.ConflictChecked(len(res.Matches), err)
	}
	if err != nil {
		if errors.Is(err, conflict.ErrCriteriaRequired) || errors.Is(err, conflict.ErrLeadRequired) {
			writeJSON(w, http.StatusBadRequest, toast{
				Error: FormatError(err, conflict.UnknownErrorMessage),
				Code:  "VALIDATION_ERROR",
				Title: conflict.ErrorTitle,
			})
			return
		}
		errorToHTTP(w, err)
		return
	}

	var checkID string
	if res.Saved && len(res.History.Logs) > 0 {
		checkID = res.History.Logs[0].ID
	}
	h.recordEvent(r.Context(), event.NewConflictCheckPerformed(audit.Actor, event.ConflictCheckPayload{
		CheckID:     checkID,
		LeadID:      leadID,
		Criteria:    c.Summary(),
		MatchCount:  len(res.Matches),
		HighestRisk: res.HighestRisk,
		Saved:       res.Saved,
	}))
	writeJSON(w, http.StatusOK, res)
}

// History returns the lead's past checks, newest first.
// GET /v1/leads/{leadID}/conflict-checks
func (h *ConflictHandler) History(w http.ResponseWriter, r *http.Request) {
	hist, err := h.svc.History(r.Context(), chi.URLParam(r, "leadID"))
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		conflict.History
		Empty bool `json:"empty"`
	}{hist, hist.Empty()})
}

// GetCheck returns one past check as a results table.
// GET /v1/leads/{leadID}/conflict-checks/{checkID}
func (h *ConflictHandler) GetCheck(w http.ResponseWriter, r *http.Request) {
	hist, err := h.svc.History(r.Context(), chi.URLParam(r, "leadID"))
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	l, ok := hist.Find(chi.URLParam(r, "checkID"))
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "conflict check not found")
		return
	}
	rows := l.Rows()
	writeJSON(w, http.StatusOK, map[string]any{
		"id":                l.ID,
		"modalTitle":        l.Title(),
		"results":           rows,
		"conflictCountText": conflict.CountText(len(rows)),
		"highestRisk":       l.HighestRiskScore,
		"performedBy":       l.PerformedBy,
		"formattedDate":     l.FormattedDate,
		"note":              l.Note,
	})
}

// SearchLeads backs the lead picker.
// GET /v1/conflict/leads?q=&limit=
func (h *ConflictHandler) SearchLeads(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}
	leads, err := h.svc.SearchLeads(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		log.Printf("search leads: %v", err)
		writeJSON(w, http.StatusInternalServerError, toast{
			Error: conflict.SearchErrorMessage,
			Code:  "SEARCH_FAILED",
			Title: conflict.SearchErrorTitle,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads})
}
