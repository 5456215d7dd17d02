// Package types holds the records shared by the console's dashboards, the
// store and the event pipeline. They are read-only projections of what the
// store holds; display reshaping happens in the dashboard packages.
package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Money represents a monetary amount using integer cents to eliminate
// floating-point errors in financial operations.
type Money struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency,omitempty"` // ISO 4217, e.g. "USD"
}

// USD builds a dollar amount from cents.
func USD(cents int64) Money { return Money{AmountCents: cents, Currency: "USD"} }

// Dollars converts a float dollar amount, rounding to the nearest cent.
func Dollars(d float64) Money { return USD(int64(math.Round(d * 100))) }

// Float returns the amount in dollars.
func (m Money) Float() float64 { return float64(m.AmountCents) / 100 }

// Add returns m+o, keeping m's currency.
func (m Money) Add(o Money) Money {
	m.AmountCents += o.AmountCents
	return m
}

// Sub returns m-o, keeping m's currency.
func (m Money) Sub(o Money) Money {
	m.AmountCents -= o.AmountCents
	return m
}

// IsZero reports a zero amount regardless of currency.
func (m Money) IsZero() bool { return m.AmountCents == 0 }

func (m Money) String() string {
	sign := ""
	c := m.AmountCents
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// Option is a picklist entry.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// AllOption is the catch-all entry that heads team and person pickers.
const AllOption = "All"

// WithAll prepends the All entry to labels used as their own values.
func WithAll(labels []string) []Option {
	out := make([]Option, 0, len(labels)+1)
	out = append(out, Option{Label: AllOption, Value: AllOption})
	for _, l := range labels {
		out = append(out, Option{Label: l, Value: l})
	}
	return out
}

// SourceRef identifies an entity referenced by a domain event.
type SourceRef struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Role       string `json:"role"` // "subject", "target", "related", "context"
}

// ActivityEntry is a secondary index entry over the domain event log,
// keyed by a referenced entity. One event produces one entry per ref.
type ActivityEntry struct {
	EventID           string          `json:"event_id"`
	EventType         string          `json:"event_type"`
	OccurredAt        time.Time       `json:"occurred_at"`
	IndexedEntityType string          `json:"indexed_entity_type"`
	IndexedEntityID   string          `json:"indexed_entity_id"`
	EntityRole        string          `json:"entity_role"`
	SourceRefs        []SourceRef     `json:"source_refs"`
	Summary           string          `json:"summary"`
	Category          string          `json:"category"` // "intake", "conflict", "availability", "export"
	Actor             string          `json:"actor,omitempty"`
	Payload           json.RawMessage `json:"payload"`
}

// Availability is a user's self-reported weekly capacity.
type Availability string

const (
	AvailabilityGreen  Availability = "Green"
	AvailabilityYellow Availability = "Yellow"
	AvailabilityRed    Availability = "Red"
)

// ParseAvailability accepts the three statuses exactly.
func ParseAvailability(s string) (Availability, bool) {
	switch a := Availability(s); a {
	case AvailabilityGreen, AvailabilityYellow, AvailabilityRed:
		return a, true
	}
	return "", false
}

// User is a firm member: attorney, intake specialist or staff.
type User struct {
	ID           string       `json:"id"`
	FirstName    string       `json:"first_name"`
	LastName     string       `json:"last_name"`
	Email        string       `json:"email"`
	Team         string       `json:"team,omitempty"`
	PracticeArea string       `json:"practice_area,omitempty"`
	Availability Availability `json:"availability,omitempty"`
	Active       bool         `json:"active"`

	// StartDate and AnnualTarget drive billable-hour goals. A user without
	// either has no goal.
	StartDate    *time.Time `json:"start_date,omitempty"`
	AnnualTarget float64    `json:"annual_target,omitempty"`
}

// Name is "First Last", trimmed.
func (u User) Name() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// HasGoal reports whether the user carries a start date and a positive
// billable target.
func (u User) HasGoal() bool { return u.StartDate != nil && u.AnnualTarget > 0 }

// Invoice is a billed amount on a matter.
type Invoice struct {
	ID                  string    `json:"id"`
	Number              string    `json:"number"`
	IssuedOn            time.Time `json:"issued_on"`
	Status              string    `json:"status"`
	Team                string    `json:"team,omitempty"`
	Matter              string    `json:"matter"`
	ResponsibleAttorney string    `json:"responsible_attorney,omitempty"`
	Total               Money     `json:"total"`
	Paid                Money     `json:"paid"`
}

// Balance is what remains outstanding.
func (i Invoice) Balance() Money { return i.Total.Sub(i.Paid) }

// DaysOutstanding counts whole days from issue to asOf, never negative.
func (i Invoice) DaysOutstanding(asOf time.Time) int {
	y1, m1, d1 := i.IssuedOn.Date()
	y2, m2, d2 := asOf.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	n := int(b.Sub(a).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}

// Payment is money or a credit note applied to an invoice.
type Payment struct {
	ID         string    `json:"id"`
	InvoiceID  string    `json:"invoice_id"`
	ReceivedOn time.Time `json:"received_on"`
	Method     string    `json:"method,omitempty"`
	Reference  string    `json:"reference,omitempty"`
	Amount     Money     `json:"amount"`
	CreditNote bool      `json:"credit_note"`
}

// TimeEntry is one logged block of time.
type TimeEntry struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	UserName            string    `json:"user_name"`
	Team                string    `json:"team,omitempty"`
	Date                time.Time `json:"date"`
	Matter              string    `json:"matter"`
	ResponsibleAttorney string    `json:"responsible_attorney,omitempty"`
	Note                string    `json:"note,omitempty"`
	Hours               float64   `json:"hours"`
	Rate                Money     `json:"rate"`
	Billable            bool      `json:"billable"`
}

// Amount is hours times rate, rounded to the cent.
func (e TimeEntry) Amount() Money {
	return Money{AmountCents: int64(math.Round(e.Hours * float64(e.Rate.AmountCents))), Currency: e.Rate.Currency}
}

// BillableStatus is the "Yes"/"No" label shown in exports.
func (e TimeEntry) BillableStatus() string {
	if e.Billable {
		return "Yes"
	}
	return "No"
}

// Lead is a prospective client moving through intake.
type Lead struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Company        string `json:"company,omitempty"`
	Status         string `json:"status"`
	Source         string `json:"source,omitempty"`
	LandingPage    string `json:"landing_page,omitempty"`
	PracticeArea   string `json:"practice_area,omitempty"`
	OfficeLocation string `json:"office_location,omitempty"`
	TypeOfCivilLaw string `json:"type_of_civil_law,omitempty"`

	OwnerName          string `json:"owner_name,omitempty"`
	IntakeAttorneyName string `json:"intake_attorney_name,omitempty"`
	TeamLead           string `json:"team_lead,omitempty"`

	CreatedAt              time.Time  `json:"created_at"`
	IntakeCompletedAt      *time.Time `json:"intake_completed_at,omitempty"`
	FirstCall              bool       `json:"first_call"`
	PostConsultDone        bool       `json:"post_consult_done"`
	PostConsultCompletedAt *time.Time `json:"post_consult_completed_at,omitempty"`
	NoShow                 bool       `json:"no_show"`
	TestMarket             bool       `json:"test_market"`
	DisqualifiedReason     string     `json:"disqualified_reason,omitempty"`
	DateFASigned           *time.Time `json:"date_fa_signed,omitempty"`
	DateFASent             *time.Time `json:"date_fa_sent,omitempty"`
	DateFirstPayment       *time.Time `json:"date_first_payment,omitempty"`

	// ConflictHistory is the raw stored history: a JSON array of checks or,
	// on older leads, free text.
	ConflictHistory string `json:"conflict_history,omitempty"`
}

// Name is "First Last", trimmed.
func (l Lead) Name() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// Matter is an opened engagement, used by the pipeline widgets.
type Matter struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	PracticeArea        string `json:"practice_area"`
	Stage               string `json:"stage"`
	Status              string `json:"status"` // "Open", "Pending", "Closed"
	ResponsibleAttorney string `json:"responsible_attorney,omitempty"`
}
