package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matthewbaird/intake/internal/event"
	"github.com/matthewbaird/intake/internal/intake"
	"github.com/matthewbaird/intake/internal/progress"
	"github.com/matthewbaird/intake/internal/types"
)

// LeadGetter loads a single lead.
type LeadGetter interface {
	GetLead(ctx context.Context, id string) (types.Lead, error)
}

// UserDirectory lists and loads users.
type UserDirectory interface {
	ListUsers(ctx context.Context) ([]types.User, error)
	GetUser(ctx context.Context, id string) (types.User, error)
}

// IntakeHandler serves the intake questionnaire.
type IntakeHandler struct {
	Base
	svc    *intake.Service
	est    *progress.Estimator
	leads  LeadGetter
	users  UserDirectory
	mailer intake.Mailer
}

// NewIntakeHandler creates a new IntakeHandler. A nil mailer logs messages.
func NewIntakeHandler(base Base, svc *intake.Service, est *progress.Estimator, leads LeadGetter, users UserDirectory, mailer intake.Mailer) *IntakeHandler {
	if mailer == nil {
		mailer = intake.LogMailer{}
	}
	return &IntakeHandler{Base: base, svc: svc, est: est, leads: leads, users: users, mailer: mailer}
}

// RegisterRoutes mounts the intake endpoints on r.
func (h *IntakeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/intake/metadata", h.Metadata)
	r.Post("/intake/options", h.Options)
	r.Post("/intake/evaluate", h.Evaluate)
	r.Post("/intake/change", h.Change)
	r.Get("/intake/recipients", h.Recipients)

	r.Get("/leads/{leadID}/intakes", h.List)
	r.Post("/leads/{leadID}/intakes/new", h.New)
	r.Get("/leads/{leadID}/intake-summary", h.Summary)
	r.Post("/leads/{leadID}/intake-summary/email", h.Email)

	r.Post("/intakes", h.Create)
	r.Get("/intakes/{id}", h.Get)
	r.Put("/intakes/{id}", h.Update)
}

// fieldMeta describes one catalog field.
type fieldMeta struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Section     int    `json:"section"`
	MultiSelect bool   `json:"multi_select,omitempty"`
}

// Metadata returns the questionnaire layout and top-level picklists.
// GET /v1/intake/metadata
func (h *IntakeHandler) Metadata(w http.ResponseWriter, r *http.Request) {
	c, t := h.svc.Catalog, h.svc.Taxonomy
	fields := make([]fieldMeta, 0, len(c.Fields()))
	for _, f := range c.Fields() {
		fields = append(fields, fieldMeta{
			Name:        f,
			Kind:        c.Kind(f).String(),
			Section:     c.SectionOf(f),
			MultiSelect: c.IsMultiSelect(f),
		})
	}
	offices := t.OfficeLocations
	if offices == nil {
		offices = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sections":         c.Sections,
		"fields":           fields,
		"types_of_law":     t.TypesOfLaw,
		"civil_subtypes":   t.CivilSubtypes,
		"office_locations": offices,
		"matter_types":     t.MatterTypeOptions(),
	})
}

type optionsRequest struct {
	TypeOfLaw      string `json:"type_of_law"`
	TypeOfCivilLaw string `json:"type_of_civil_law"`
	Category       string `json:"category"`
}

// Options returns the dependent picklists for a taxonomy selection.
// POST /v1/intake/options
func (h *IntakeHandler) Options(w http.ResponseWriter, r *http.Request) {
	var req optionsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	t := h.svc.Taxonomy
	resp := struct {
		Categories    []string `json:"categories"`
		Subcategories []string `json:"subcategories"`
		MatterType    string   `json:"matter_type,omitempty"`
	}{
		Categories:    nonNil(t.Categories(req.TypeOfLaw, req.TypeOfCivilLaw)),
		Subcategories: nonNil(t.Subcategories(req.TypeOfLaw, req.TypeOfCivilLaw, req.Category)),
	}
	if req.Category != "" {
		resp.MatterType, _ = t.MatterType(req.Category)
	}
	writeJSON(w, http.StatusOK, resp)
}

// formView is a record plus everything the form shows for it.
type formView struct {
	Record             *intake.Record     `json:"record"`
	ShowCivilType      bool               `json:"show_civil_type"`
	ShowCategory       bool               `json:"show_category"`
	ShowSubcategory    bool               `json:"show_subcategory"`
	CategoryOptions    []string           `json:"category_options"`
	SubcategoryOptions []string           `json:"subcategory_options"`
	Visible            []string           `json:"visible"`
	ShownSections      []int              `json:"shown_sections"`
	Progress           []progress.Section `json:"progress"`
}

func (h *IntakeHandler) view(f *intake.Form) formView {
	v := formView{
		Record:             f.Record,
		ShowCivilType:      f.ShowCivilType(),
		ShowCategory:       f.ShowCategory(),
		ShowSubcategory:    f.ShowSubcategory(),
		CategoryOptions:    nonNil(f.CategoryOptions()),
		SubcategoryOptions: nonNil(f.SubcategoryOptions()),
		Visible:            []string{},
		ShownSections:      h.est.ShownSections(f.Record),
		Progress:           h.est.All(f.Record),
	}
	for _, n := range v.ShownSections {
		v.Visible = append(v.Visible, h.est.VisibleFields(f.Record, n)...)
	}
	if v.ShownSections == nil {
		v.ShownSections = []int{}
	}
	return v
}

func (h *IntakeHandler) form(rec *intake.Record) *intake.Form {
	if rec == nil {
		rec = intake.NewRecord()
	}
	return intake.LoadForm(h.svc.Catalog, h.svc.Taxonomy, rec)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// New returns a blank intake for a lead.
// POST /v1/leads/{leadID}/intakes/new
func (h *IntakeHandler) New(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")
	if _, err := h.leads.GetLead(r.Context(), leadID); err != nil {
		errorToHTTP(w, err)
		return
	}
	f, err := intake.NewForm(h.svc.Catalog, h.svc.Taxonomy, leadID)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(f))
}

// List returns a lead's intakes, newest first.
// GET /v1/leads/{leadID}/intakes
func (h *IntakeHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.List(r.Context(), chi.URLParam(r, "leadID"))
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"intakes": rows})
}

// Get loads an intake with its form state.
// GET /v1/intakes/{id}
func (h *IntakeHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(h.form(rec)))
}

type saveRequest struct {
	Record *intake.Record `json:"record"`
}

// Create saves a new intake.
// POST /v1/intakes
func (h *IntakeHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "")
}

// Update saves an existing intake.
// PUT /v1/intakes/{id}
func (h *IntakeHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, chi.URLParam(r, "id"))
}

func (h *IntakeHandler) save(w http.ResponseWriter, r *http.Request, id string) {
	audit, ok := parseAuditContext(w, r)
	if !ok {
		return
	}
	var req saveRequest
	if err := decodeJSON(r, &req); err != nil || req.Record == nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	saved, err := h.svc.Save(r.Context(), id, req.Record)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.IntakeSaved(saved.Created)
	}

	p := event.IntakePayload{
		IntakeID:    saved.ID,
		LeadID:      req.Record.Text(intake.FieldLead),
		TypeOfLaw:   req.Record.Text(intake.FieldTypeOfLaw),
		MatterTypes: req.Record.List(intake.FieldLegalMatterType),
	}
	status := http.StatusOK
	if saved.Created {
		status = http.StatusCreated
		h.recordEvent(r.Context(), event.NewIntakeCreated(audit.Actor, p))
	} else {
		h.recordEvent(r.Context(), event.NewIntakeUpdated(audit.Actor, p))
	}
	writeJSON(w, status, saved)
}

type evaluateRequest struct {
	Record  *intake.Record `json:"record"`
	Section int            `json:"section,omitempty"`
}

// Evaluate returns visibility and progress for an unsaved record. With a
// section it also reports that section's completion.
// POST /v1/intake/evaluate
func (h *IntakeHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	f := h.form(req.Record)
	resp := struct {
		formView
		Section *progress.Section `json:"section,omitempty"`
	}{formView: h.view(f)}
	if req.Section > 0 {
		if _, ok := h.svc.Catalog.Section(req.Section); !ok {
			writeError(w, http.StatusBadRequest, "UNKNOWN_SECTION", "unknown section")
			return
		}
		sec := h.est.Section(f.Record, req.Section)
		resp.Section = &sec
	}
	writeJSON(w, http.StatusOK, resp)
}

type changeRequest struct {
	Record *intake.Record `json:"record"`
	Field  string         `json:"field"`
	Value  intake.Value   `json:"value"`
}

// Change applies one field edit, clearing whatever it invalidates.
// POST /v1/intake/change
func (h *IntakeHandler) Change(w http.ResponseWriter, r *http.Request) {
	var req changeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	if req.Field == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PARAMS", "field is required")
		return
	}
	f := h.form(req.Record)
	f.Change(req.Field, req.Value)
	writeJSON(w, http.StatusOK, h.view(f))
}

// Summary returns the digest of a lead's latest intake.
// GET /v1/leads/{leadID}/intake-summary
func (h *IntakeHandler) Summary(w http.ResponseWriter, r *http.Request) {
	lead, err := h.leads.GetLead(r.Context(), chi.URLParam(r, "leadID"))
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	s, err := h.svc.Summary(r.Context(), lead.ID, lead.Name())
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		intake.Summary
		HasData bool `json:"hasData"`
	}{s, s.HasData()})
}

// Recipients lists the users a summary can be emailed to.
// GET /v1/intake/recipients
func (h *IntakeHandler) Recipients(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recipients": intake.RecipientOptions(users)})
}

type emailRequest struct {
	UserIDs []string `json:"userIds"`
	Subject *string  `json:"subject"`
}

// Email sends a lead's intake summary. A missing subject uses the default.
// POST /v1/leads/{leadID}/intake-summary/email
func (h *IntakeHandler) Email(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	lead, err := h.leads.GetLead(r.Context(), chi.URLParam(r, "leadID"))
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	s, err := h.svc.Summary(r.Context(), lead.ID, lead.Name())
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	e, err := intake.Compose(lead.ID, s)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	if req.UserIDs != nil {
		e.UserIDs = req.UserIDs
	}
	if req.Subject != nil {
		e.Subject = *req.Subject
	}
	if err := intake.SendEmail(r.Context(), h.users, h.mailer, e); err != nil {
		if errors.Is(err, intake.ErrNoAddress) {
			writeError(w, http.StatusBadRequest, "NO_ADDRESS", err.Error())
			return
		}
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": intake.MsgEmailSent})
}
