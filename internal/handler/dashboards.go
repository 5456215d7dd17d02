package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matthewbaird/intake/internal/chart"
	"github.com/matthewbaird/intake/internal/csvexport"
	"github.com/matthewbaird/intake/internal/invoicing"
	"github.com/matthewbaird/intake/internal/leads"
	"github.com/matthewbaird/intake/internal/pager"
	"github.com/matthewbaird/intake/internal/period"
	"github.com/matthewbaird/intake/internal/receivables"
	"github.com/matthewbaird/intake/internal/timekeeping"
	"github.com/matthewbaird/intake/internal/types"
)

// DashboardHandler serves the homepage, aging, invoice and time dashboards.
type DashboardHandler struct {
	Base
	Leads       *leads.Service
	Receivables *receivables.Service
	Invoices    *invoicing.Service
	Time        *timekeeping.Service

	// Charts receives every chart the dashboards render. Optional.
	Charts chart.Service
}

func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Route("/dashboard/leads", func(r chi.Router) {
		r.Get("/", h.LeadsDashboard)
		r.Get("/options", h.LeadsOptions)
		r.Get("/modals/{kind}", h.LeadsModal)
		r.Get("/exports/{report}", h.LeadsExport)
	})
	r.Route("/dashboard/receivables", func(r chi.Router) {
		r.Get("/", h.Aging)
		r.Get("/buckets/{bucket}", h.AgingBucket)
		r.Get("/buckets/{bucket}/export", h.AgingExport)
	})
	r.Route("/dashboard/invoices", func(r chi.Router) {
		r.Get("/", h.InvoiceDashboard)
		r.Get("/details/{metric}", h.InvoiceDetails)
		r.Get("/details/{metric}/export", h.InvoiceExport)
	})
	r.Get("/invoices/{id}/payments", h.InvoicePayments)
	r.Route("/dashboard/time", func(r chi.Router) {
		r.Get("/", h.TeamTime)
		r.Get("/entries", h.TeamTimeEntries)
		r.Get("/entries/export", h.TeamTimeExport)
	})
	r.Route("/users/{userID}/time", func(r chi.Router) {
		r.Get("/", h.UserTime)
		r.Get("/entries", h.UserTimeEntries)
		r.Get("/entries/export", h.UserTimeExport)
	})
}

// mountCharts pushes cfgs to the chart service under prefix. Failures are
// logged; the dashboard body carries the configs regardless.
func (h *DashboardHandler) mountCharts(ctx context.Context, prefix string, cfgs map[string]chart.Config) {
	if h.Charts == nil {
		return
	}
	for id, cfg := range cfgs {
		if err := chart.Upsert(ctx, h.Charts, prefix+id, cfg); err != nil {
			log.Printf("mount chart %s%s: %v", prefix, id, err)
		}
	}
}

// ── Filters ─────────────────────────────────────────────────────────────────

func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

// LeadsFilter reads the homepage filter bar from query params.
func LeadsFilter(r *http.Request) leads.Filter {
	q := r.URL.Query()
	f := leads.NewFilter()
	if v := q.Get("date_filter"); v != "" {
		f.DateFilter = v
	}
	f.PracticeArea = q.Get("practice_area")
	f.OfficeLocation = q.Get("office_location")
	f.TypeOfCivilLaw = q.Get("type_of_civil_law")
	f.IncludeAttorney = queryBool(r, "include_attorney")
	f.FirstCallOnly = queryBool(r, "first_call_only")
	return f
}

// applySelection layers date_filter, start_date and end_date onto sel in the
// order the filter bar applies them.
func applySelection(r *http.Request, sel *period.Selection) {
	q := r.URL.Query()
	if v := q.Get("date_filter"); v != "" {
		sel.SetPreset(v)
	}
	if v := q.Get("start_date"); v != "" {
		sel.SetStart(v)
	}
	if v := q.Get("end_date"); v != "" {
		sel.SetEnd(v)
	}
}

// InvoiceFilter reads the invoice filter bar from query params.
func InvoiceFilter(r *http.Request) invoicing.Filter {
	f := invoicing.NewFilter()
	applySelection(r, &f.Date)
	if v := r.URL.Query().Get("team"); v != "" {
		f.Team = v
	}
	return f
}

// TimeFilter reads a time dashboard filter bar from query params.
func TimeFilter(r *http.Request) timekeeping.Filter {
	q := r.URL.Query()
	f := timekeeping.NewFilter()
	applySelection(r, &f.Date)
	if v := q.Get("billable"); v != "" {
		f.Billable = timekeeping.Billable(v)
	}
	if v := q.Get("team"); v != "" {
		f.SetTeam(v)
	}
	if v := q.Get("user_id"); v != "" {
		f.UserID = v
	}
	return f
}

// periodError answers a bad custom range with 400 and reports whether it did.
func periodError(w http.ResponseWriter, err error) bool {
	if errors.Is(err, period.ErrInvertedRange) {
		writeError(w, http.StatusBadRequest, "INVALID_RANGE", err.Error())
		return true
	}
	return false
}

func (h *DashboardHandler) fail(w http.ResponseWriter, err error) {
	if periodError(w, err) {
		return
	}
	errorToHTTP(w, err)
}

// ── Homepage ────────────────────────────────────────────────────────────────

// LeadsDashboard returns every homepage widget.
// GET /v1/dashboard/leads
func (h *DashboardHandler) LeadsDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Leads.Dashboard(r.Context(), LeadsFilter(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.mountCharts(r.Context(), "leads/", d.Charts)
	writeJSON(w, http.StatusOK, d)
}

// LeadsOptions lists the homepage pickers, modal kinds and reports.
// GET /v1/dashboard/leads/options
func (h *DashboardHandler) LeadsOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"date_options": leads.DateOptions(),
		"modal_kinds":  leads.Kinds(),
		"reports":      leads.Reports(),
		"help_texts":   leads.HelpTexts(),
	})
}

// LeadsModal opens a drill-down.
// GET /v1/dashboard/leads/modals/{kind}?name=&page=&sort=&dir=
func (h *DashboardHandler) LeadsModal(w http.ResponseWriter, r *http.Request) {
	kind, err := leads.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "UNKNOWN_MODAL", err.Error())
		return
	}
	m, err := h.Leads.Modal(r.Context(), leads.Query{Kind: kind, Name: r.URL.Query().Get("name"), Filter: LeadsFilter(r)})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		*leads.Modal
		Page pager.State[leads.Row] `json:"page"`
	}{m, paged(m.Pager, parsePaging(r))})
}

// LeadsExport downloads one homepage widget as CSV.
// GET /v1/dashboard/leads/exports/{report}
func (h *DashboardHandler) LeadsExport(w http.ResponseWriter, r *http.Request) {
	report, err := leads.ParseReport(chi.URLParam(r, "report"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "UNKNOWN_REPORT", err.Error())
		return
	}
	name, t, err := h.Leads.Export(r.Context(), report, LeadsFilter(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.export(w, r, string(report), csvexport.File{Name: name, Data: t.Bytes()}, len(t.Rows))
}

// ── AR aging ────────────────────────────────────────────────────────────────

func (h *DashboardHandler) agingFilter(w http.ResponseWriter, r *http.Request) (receivables.Filter, bool) {
	f := h.Receivables.DefaultFilter()
	asOf, set, ok := parseDate(w, r, "as_of")
	if !ok {
		return f, false
	}
	if set {
		f.AsOf = asOf
	}
	if v := r.URL.Query().Get("team"); v != "" {
		f.Team = v
	}
	return f, true
}

// Aging returns the bucket tiles.
// GET /v1/dashboard/receivables?as_of=&team=
func (h *DashboardHandler) Aging(w http.ResponseWriter, r *http.Request) {
	f, ok := h.agingFilter(w, r)
	if !ok {
		return
	}
	d, err := h.Receivables.Dashboard(r.Context(), f)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DashboardHandler) agingRows(w http.ResponseWriter, r *http.Request) (receivables.Bucket, []receivables.Row, bool) {
	b, err := receivables.ParseBucket(chi.URLParam(r, "bucket"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "UNKNOWN_BUCKET", err.Error())
		return "", nil, false
	}
	f, ok := h.agingFilter(w, r)
	if !ok {
		return "", nil, false
	}
	rows, err := h.Receivables.Details(r.Context(), f, b)
	if err != nil {
		h.fail(w, err)
		return "", nil, false
	}
	return b, rows, true
}

// AgingBucket lists one bucket's invoices.
// GET /v1/dashboard/receivables/buckets/{bucket}
func (h *DashboardHandler) AgingBucket(w http.ResponseWriter, r *http.Request) {
	b, rows, ok := h.agingRows(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"title": b.Title(),
		"page":  paged(receivables.NewPager(rows), parsePaging(r)),
	})
}

// AgingExport downloads one bucket's invoices.
// GET /v1/dashboard/receivables/buckets/{bucket}/export
func (h *DashboardHandler) AgingExport(w http.ResponseWriter, r *http.Request) {
	b, rows, ok := h.agingRows(w, r)
	if !ok {
		return
	}
	h.exportTable(w, r, "aging-"+string(b), b.Title(), receivables.Table(rows))
}

// ── Invoices ────────────────────────────────────────────────────────────────

// InvoiceDashboard returns the invoice tiles and charts.
// GET /v1/dashboard/invoices?date_filter=&start_date=&end_date=&team=
func (h *DashboardHandler) InvoiceDashboard(w http.ResponseWriter, r *http.Request) {
	v, err := h.Invoices.Dashboard(r.Context(), InvoiceFilter(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	cfgs := make(map[string]chart.Config, len(v.Charts))
	ids := invoicing.ChartIDs()
	for i, cfg := range v.Charts {
		if i < len(ids) {
			cfgs[ids[i]] = cfg
		}
	}
	h.mountCharts(r.Context(), "invoices/", cfgs)
	writeJSON(w, http.StatusOK, v)
}

func cardTitle(m invoicing.Metric) string {
	for _, c := range invoicing.Cards() {
		if c.Metric == m {
			return c.Title
		}
	}
	return string(m)
}

func (h *DashboardHandler) invoiceRows(w http.ResponseWriter, r *http.Request) (invoicing.Metric, []invoicing.Row, bool) {
	m, ok := invoicing.MetricFor(chi.URLParam(r, "metric"))
	if !ok {
		writeError(w, http.StatusBadRequest, "UNKNOWN_METRIC", "unknown metric type "+chi.URLParam(r, "metric"))
		return "", nil, false
	}
	rows, err := h.Invoices.Details(r.Context(), InvoiceFilter(r), m)
	if err != nil {
		h.fail(w, err)
		return "", nil, false
	}
	return m, rows, true
}

// InvoiceDetails lists the invoices behind a tile.
// GET /v1/dashboard/invoices/details/{metric}
func (h *DashboardHandler) InvoiceDetails(w http.ResponseWriter, r *http.Request) {
	m, rows, ok := h.invoiceRows(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"title": cardTitle(m),
		"page":  paged(invoicing.NewPager(rows), parsePaging(r)),
	})
}

// InvoiceExport downloads the invoices behind a tile.
// GET /v1/dashboard/invoices/details/{metric}/export
func (h *DashboardHandler) InvoiceExport(w http.ResponseWriter, r *http.Request) {
	m, rows, ok := h.invoiceRows(w, r)
	if !ok {
		return
	}
	h.exportTable(w, r, "invoices-"+string(m), cardTitle(m), invoicing.Table(rows))
}

// InvoicePayments lists the payments applied to an invoice.
// GET /v1/invoices/{id}/payments
func (h *DashboardHandler) InvoicePayments(w http.ResponseWriter, r *http.Request) {
	d, err := h.Invoices.Payments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, invoicing.ErrUnknownInvoice) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
			return
		}
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// ── Time ────────────────────────────────────────────────────────────────────

func userFilter(r *http.Request) timekeeping.Filter {
	f := TimeFilter(r)
	f.Team = types.AllOption
	f.UserID = chi.URLParam(r, "userID")
	return f
}

func (h *DashboardHandler) timeDashboard(w http.ResponseWriter, r *http.Request, f timekeeping.Filter, scope timekeeping.Scope) {
	v, err := h.Time.Dashboard(r.Context(), f, scope)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *DashboardHandler) timeEntries(w http.ResponseWriter, r *http.Request, f timekeeping.Filter, scope timekeeping.Scope) {
	entries, err := h.Time.FilteredEntries(r.Context(), f, scope)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"title": timekeeping.TitleTimeSummary,
		"page":  paged(timekeeping.NewPager(entries), parsePaging(r)),
	})
}

func (h *DashboardHandler) timeExport(w http.ResponseWriter, r *http.Request, f timekeeping.Filter, scope timekeeping.Scope, report string) {
	entries, err := h.Time.FilteredEntries(r.Context(), f, scope)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.exportTable(w, r, report, timekeeping.TitleTimeSummary, timekeeping.EntriesTable(entries))
}

// UserTime is a person's own time dashboard.
// GET /v1/users/{userID}/time
func (h *DashboardHandler) UserTime(w http.ResponseWriter, r *http.Request) {
	h.timeDashboard(w, r, userFilter(r), timekeeping.ScopeUser)
}

// GET /v1/users/{userID}/time/entries
func (h *DashboardHandler) UserTimeEntries(w http.ResponseWriter, r *http.Request) {
	h.timeEntries(w, r, userFilter(r), timekeeping.ScopeUser)
}

// GET /v1/users/{userID}/time/entries/export
func (h *DashboardHandler) UserTimeExport(w http.ResponseWriter, r *http.Request) {
	h.timeExport(w, r, userFilter(r), timekeeping.ScopeUser, "user-time")
}

// TeamTime is the team time dashboard.
// GET /v1/dashboard/time
func (h *DashboardHandler) TeamTime(w http.ResponseWriter, r *http.Request) {
	h.timeDashboard(w, r, TimeFilter(r), timekeeping.ScopeTeam)
}

// GET /v1/dashboard/time/entries
func (h *DashboardHandler) TeamTimeEntries(w http.ResponseWriter, r *http.Request) {
	h.timeEntries(w, r, TimeFilter(r), timekeeping.ScopeTeam)
}

// GET /v1/dashboard/time/entries/export
func (h *DashboardHandler) TeamTimeExport(w http.ResponseWriter, r *http.Request) {
	h.timeExport(w, r, TimeFilter(r), timekeeping.ScopeTeam, "team-time")
}
