package leads

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matthewbaird/intake/internal/pager"
	"github.com/matthewbaird/intake/internal/types"
)

// ModalPageSize is the number of drill-down records per page.
const ModalPageSize = 50

// ErrUnknownModal is returned for a modal kind outside the registry.
var ErrUnknownModal = errors.New("leads: invalid modal type")

// Kind names a drill-down modal.
type Kind string

const (
	KindLeads                          Kind = "leads"
	KindSQLLeads                       Kind = "sql_leads"
	KindCloseRateLeads                 Kind = "close_rate_leads"
	KindIntakeSpecialistCloseRateLeads Kind = "intake_specialist_close_rate_leads"
	KindNewLeadsMetric                 Kind = "new_leads_metric"
	KindIntakeSpecialistCalls          Kind = "intake_specialist_calls"
	KindIntakeAttorneyCalls            Kind = "intake_attorney_calls"
	KindIntakeAttorneyNoShows          Kind = "intake_attorney_no_shows"
	KindTotalClosedByIS                Kind = "total_closed_by_is"
	KindTotalClosedByIA                Kind = "total_closed_by_ia"
	KindIntakeCompletionLeads          Kind = "intake_completion_leads"
	KindMatters                        Kind = "matters"
)

// Column is one datatable column of a modal.
type Column struct {
	Label     string `json:"label"`
	FieldName string `json:"fieldName"`
	Type      string `json:"type"`
	Sortable  bool   `json:"sortable"`
}

func col(label, field, typ string) Column {
	return Column{Label: label, FieldName: field, Type: typ, Sortable: true}
}

var (
	leadName       = col("Lead Name", "recordUrl", "url")
	createdDate    = col("Created Date", "CreatedDate", "date-local")
	postConsult    = col("Post Consult Completed Date", "Post_Con_Completed_Date__c", "date")
	office         = col("Preferred Office", "PreferredOfficeLocation", "text")
	owner          = col("Owner", "OwnerName", "text")
	attorney       = col("Intake Attorney", "IntakeAttorneyName", "text")
	matterFASent   = col("Date FA was Sent (Matter)", "MatterDateFASent", "date")
	matterFirstPay = col("Date First Payment (Matter)", "MatterDateFirstPayment", "date")
	faSigned       = col("Date FA was Signed", "Lead_Completion_Date__c", "date")
	firstPayment   = col("Date First Payment Made", "Date_First_Payment__c", "date")
)

// Column sets.
var (
	LeadColumns = []Column{
		createdDate, leadName,
		col("Status", "Status", "text"),
		owner,
		col("Practice Area", "PracticeArea", "text"),
	}
	SQLLeadColumns = []Column{
		createdDate, leadName,
		col("Intake Specialist", "OwnerName", "text"),
		col("Practice Area", "PracticeArea", "text"),
		col("Preferred Office Location", "PreferredOfficeLocation", "text"),
		col("Team Lead", "TeamLead", "text"),
	}
	CloseRateLeadColumns = []Column{
		postConsult, leadName, office, owner, attorney, matterFASent, matterFirstPay,
	}
	IntakeSpecialistCloseRateLeadColumns = []Column{
		postConsult, leadName, office, attorney, matterFASent, matterFirstPay,
	}
	ClosedByLeadColumns = []Column{
		matterFirstPay, leadName, office, owner, attorney, matterFASent, postConsult,
	}
	NewLeadsMetricColumns = []Column{
		createdDate, leadName, office, attorney, faSigned, firstPayment, postConsult,
		col("First Call", "First_Call__c", "boolean"),
	}
	IntakeCompletionLeadColumns = []Column{
		col("Intake Completion Date", "Intake_Completion_Date__c", "date"),
		leadName, office, attorney, faSigned, firstPayment,
	}
	MatterColumns = []Column{
		col("Matter Name", "recordUrl", "url"),
		col("Practice Area", "practiceArea", "text"),
		col("Status", "status", "text"),
	}
)

type modalDef struct {
	columns []Column
	// title builds the part before the colon; name is the clicked person.
	title func(name string, f Filter) string
	// selects reports whether l belongs in the modal for the range r.
	selects func(l types.Lead, r rangeOf, name string, f Filter) bool
}

// rangeOf is the date range predicate of a filter.
type rangeOf func(t *time.Time) bool

func fixed(s string) func(string, Filter) string { return func(string, Filter) string { return s } }

var registry = map[Kind]modalDef{
	KindLeads: {
		columns: LeadColumns,
		title:   fixed("New Leads"),
		selects: func(l types.Lead, in rangeOf, _ string, _ Filter) bool { return in(&l.CreatedAt) },
	},
	KindSQLLeads: {
		columns: SQLLeadColumns,
		title:   fixed("SQL Leads"),
		selects: func(l types.Lead, in rangeOf, _ string, _ Filter) bool { return in(&l.CreatedAt) && IsSQL(l) },
	},
	KindCloseRateLeads: {
		columns: CloseRateLeadColumns,
		title:   func(name string, _ Filter) string { return name + " Leads" },
		selects: func(l types.Lead, in rangeOf, name string, _ Filter) bool {
			return in(l.PostConsultCompletedAt) && AtBat(l) && HasAttorney(l) && samePerson(name, l.IntakeAttorneyName)
		},
	},
	KindIntakeSpecialistCloseRateLeads: {
		columns: IntakeSpecialistCloseRateLeadColumns,
		title: func(name string, f Filter) string {
			if f.IncludeAttorney {
				return name + " Intake Spec. Leads (With Attorney)"
			}
			return name + " Intake Spec. Leads (No Attorney)"
		},
		selects: func(l types.Lead, in rangeOf, name string, f Filter) bool {
			return in(l.PostConsultCompletedAt) && AtBat(l) && (f.IncludeAttorney || !HasAttorney(l)) &&
				samePerson(name, l.OwnerName)
		},
	},
	KindNewLeadsMetric: {
		columns: NewLeadsMetricColumns,
		title:   fixed("New Leads"),
		selects: func(l types.Lead, in rangeOf, _ string, f Filter) bool {
			return in(&l.CreatedAt) && (!f.FirstCallOnly || l.FirstCall)
		},
	},
	KindIntakeSpecialistCalls: {
		columns: IntakeSpecialistCloseRateLeadColumns,
		title:   fixed("Intake Spec. Post-Consults"),
		selects: func(l types.Lead, in rangeOf, _ string, _ Filter) bool {
			return in(l.PostConsultCompletedAt) && l.PostConsultDone && !HasAttorney(l)
		},
	},
	KindIntakeAttorneyCalls: {
		columns: IntakeSpecialistCloseRateLeadColumns,
		title:   fixed("Intake Atty. Post-Consults"),
		selects: func(l types.Lead, in rangeOf, _ string, _ Filter) bool {
			return in(l.PostConsultCompletedAt) && l.PostConsultDone && HasAttorney(l)
		},
	},
	KindIntakeAttorneyNoShows: {
		columns: IntakeSpecialistCloseRateLeadColumns,
		title:   fixed("Intake Attorney No Shows"),
		selects: func(l types.Lead, in rangeOf, _ string, _ Filter) bool {
			return in(l.PostConsultCompletedAt) && l.NoShow && HasAttorney(l)
		},
	},
	KindTotalClosedByIS: {
		columns: ClosedByLeadColumns,
		title:   fixed("Closed by Intake Spec."),
		selects: func(l types.Lead, in rangeOf, _ string, _ Filter) bool {
			return IsClosed(l) && in(l.DateFirstPayment) && !HasAttorney(l)
		},
	},
	KindTotalClosedByIA: {
		columns: ClosedByLeadColumns,
		title:   fixed("Closed by Intake Atty."),
		selects: func(l types.Lead, in rangeOf, _ string, _ Filter) bool {
			return IsClosed(l) && in(l.DateFirstPayment) && HasAttorney(l)
		},
	},
	KindIntakeCompletionLeads: {
		columns: IntakeCompletionLeadColumns,
		title:   func(name string, _ Filter) string { return name + " Intake Specialist Completions" },
		selects: func(l types.Lead, in rangeOf, name string, _ Filter) bool {
			return in(l.IntakeCompletedAt) && (name == "" || ownerOf(l) == name)
		},
	},
	KindMatters: {
		columns: MatterColumns,
		title:   fixed("Open Matters"),
	},
}

// Kinds lists the registered modal kinds.
func Kinds() []Kind {
	return []Kind{
		KindLeads, KindSQLLeads, KindCloseRateLeads, KindIntakeSpecialistCloseRateLeads,
		KindNewLeadsMetric, KindIntakeSpecialistCalls, KindIntakeAttorneyCalls, KindIntakeAttorneyNoShows,
		KindTotalClosedByIS, KindTotalClosedByIA, KindIntakeCompletionLeads, KindMatters,
	}
}

// ParseKind validates a modal kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.TrimSpace(s))
	if _, ok := registry[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownModal, s)
	}
	return k, nil
}

// Columns returns the modal's column set.
func (k Kind) Columns() []Column { return registry[k].columns }

// Title is the modal header, e.g. "New Leads: THIS MONTH (All)". Only the
// first underscore of the date filter becomes a space.
func Title(k Kind, name string, f Filter) string {
	def, ok := registry[k]
	if !ok {
		return ""
	}
	return def.title(name, f) + ": " + strings.Replace(f.dateFilter(), "_", " ", 1) + " " + f.Label()
}

func samePerson(want, got string) bool {
	return want == "" || strings.EqualFold(strings.TrimSpace(want), strings.TrimSpace(got))
}

// selectLeads returns the leads the modal of kind k shows.
func selectLeads(leads []types.Lead, f Filter, now time.Time, k Kind, name string) []types.Lead {
	def, ok := registry[k]
	if !ok || def.selects == nil {
		return nil
	}
	r := f.Range(now)
	in := func(t *time.Time) bool { return within(r, t) }
	var out []types.Lead
	for _, l := range leads {
		if f.Matches(l) && def.selects(l, in, name, f) {
			out = append(out, l)
		}
	}
	return out
}

// Row is one modal record. Lead and matter modals share the shape; the
// columns pick the fields that apply.
type Row struct {
	ID                      string     `json:"Id"`
	RecordURL               string     `json:"recordUrl"`
	Name                    string     `json:"Name"`
	Status                  string     `json:"Status,omitempty"`
	CreatedDate             *time.Time `json:"CreatedDate,omitempty"`
	OwnerName               string     `json:"OwnerName,omitempty"`
	IntakeAttorneyName      string     `json:"IntakeAttorneyName,omitempty"`
	PreferredOfficeLocation string     `json:"PreferredOfficeLocation,omitempty"`
	PracticeArea            string     `json:"PracticeArea,omitempty"`
	TeamLead                string     `json:"TeamLead,omitempty"`
	PostConsultCompleted    *time.Time `json:"Post_Con_Completed_Date__c,omitempty"`
	IntakeCompleted         *time.Time `json:"Intake_Completion_Date__c,omitempty"`
	DateFASigned            *time.Time `json:"Lead_Completion_Date__c,omitempty"`
	DateFirstPayment        *time.Time `json:"Date_First_Payment__c,omitempty"`
	MatterDateFASent        *time.Time `json:"MatterDateFASent,omitempty"`
	MatterDateFirstPayment  *time.Time `json:"MatterDateFirstPayment,omitempty"`
	FirstCall               bool       `json:"First_Call__c"`

	// Matter modal fields.
	MatterPracticeArea string `json:"practiceArea,omitempty"`
	MatterStatus       string `json:"status,omitempty"`
}

// RecordURL links to a lead or matter record.
func RecordURL(id string) string { return "/lightning/r/" + id + "/view" }

// LeadRow projects a lead for the modals.
func LeadRow(l types.Lead) Row {
	created := l.CreatedAt
	return Row{
		ID:                      l.ID,
		RecordURL:               RecordURL(l.ID),
		Name:                    l.Name(),
		Status:                  l.Status,
		CreatedDate:             &created,
		OwnerName:               l.OwnerName,
		IntakeAttorneyName:      l.IntakeAttorneyName,
		PreferredOfficeLocation: l.OfficeLocation,
		PracticeArea:            l.PracticeArea,
		TeamLead:                l.TeamLead,
		PostConsultCompleted:    l.PostConsultCompletedAt,
		IntakeCompleted:         l.IntakeCompletedAt,
		DateFASigned:            l.DateFASigned,
		DateFirstPayment:        l.DateFirstPayment,
		MatterDateFASent:        l.DateFASent,
		MatterDateFirstPayment:  l.DateFirstPayment,
		FirstCall:               l.FirstCall,
	}
}

// MatterRow projects a matter for the open matters modal.
func MatterRow(m types.Matter) Row {
	return Row{
		ID:                 m.ID,
		RecordURL:          RecordURL(m.ID),
		Name:               m.Name,
		MatterPracticeArea: m.PracticeArea,
		MatterStatus:       m.Status,
	}
}

// Field reads a column by its field name. The record link sorts by name.
func Field(r Row, field string) any {
	date := func(t *time.Time) any {
		if t == nil {
			return nil
		}
		return *t
	}
	switch field {
	case "recordUrl", "Name":
		return r.Name
	case "Status":
		return r.Status
	case "CreatedDate":
		return date(r.CreatedDate)
	case "OwnerName":
		return r.OwnerName
	case "IntakeAttorneyName":
		return r.IntakeAttorneyName
	case "PreferredOfficeLocation":
		return r.PreferredOfficeLocation
	case "PracticeArea":
		return r.PracticeArea
	case "TeamLead":
		return r.TeamLead
	case "Post_Con_Completed_Date__c":
		return date(r.PostConsultCompleted)
	case "Intake_Completion_Date__c":
		return date(r.IntakeCompleted)
	case "Lead_Completion_Date__c":
		return date(r.DateFASigned)
	case "Date_First_Payment__c":
		return date(r.DateFirstPayment)
	case "MatterDateFASent":
		return date(r.MatterDateFASent)
	case "MatterDateFirstPayment":
		return date(r.MatterDateFirstPayment)
	case "First_Call__c":
		return r.FirstCall
	case "practiceArea":
		return r.MatterPracticeArea
	case "status":
		return r.MatterStatus
	}
	return nil
}

// Modal is an opened drill-down.
type Modal struct {
	Kind    Kind     `json:"modalType"`
	Title   string   `json:"modalTitle"`
	Columns []Column `json:"modalColumns"`
	// FirstCallCount is set on the New Leads metric modal.
	FirstCallCount int `json:"firstCallLeadsCount"`

	Pager *pager.Pager[Row] `json:"-"`
}

// Query selects what a modal shows.
type Query struct {
	Kind Kind
	// Name is the attorney or intake specialist clicked, if any.
	Name   string
	Filter Filter
}

// Open builds the modal for q, sorted by its first column, newest first.
func Open(q Query, leads []types.Lead, matters []types.Matter, now time.Time) (*Modal, error) {
	def, ok := registry[q.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModal, q.Kind)
	}
	var rows []Row
	if q.Kind == KindMatters {
		for _, m := range OpenMatters(matters, q.Filter.PracticeArea) {
			rows = append(rows, MatterRow(m))
		}
	} else {
		for _, l := range selectLeads(leads, q.Filter, now, q.Kind, q.Name) {
			rows = append(rows, LeadRow(l))
		}
	}

	m := &Modal{Kind: q.Kind, Title: Title(q.Kind, q.Name, q.Filter), Columns: def.columns}
	if q.Kind == KindNewLeadsMetric {
		for _, r := range rows {
			if r.FirstCall {
				m.FirstCallCount++
			}
		}
	}
	m.Pager = pager.New[Row](ModalPageSize, Field)
	m.Pager.SetRecords(rows)
	if len(def.columns) > 0 {
		m.Pager.Sort(def.columns[0].FieldName, pager.Desc)
	}
	return m, nil
}
