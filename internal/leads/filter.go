// Package leads computes the homepage sales and intake dashboard: lead
// counts and metrics, source and landing-page breakdowns, close rates, the
// SQL trend, the matter pipeline and the drill-down modals behind each tile.
package leads

import (
	"strings"
	"time"

	"github.com/matthewbaird/intake/internal/period"
	"github.com/matthewbaird/intake/internal/types"
)

// DefaultDateFilter is the preset the dashboard opens on.
const DefaultDateFilter = "THIS_MONTH"

// Lead statuses and disqualification reasons the predicates key on.
const (
	StatusClosedConverted = "Closed - Converted"
	StatusQualified       = "Qualified"

	ReasonHiredAnotherFirm = "Hired Another Firm"
	ReasonFirmAvailability = "Firm Availability"
)

// Filter is the dashboard's filter bar. An empty practice area, office or
// civil law type matches everything, as does "All".
type Filter struct {
	DateFilter     string `json:"dateFilter"`
	PracticeArea   string `json:"practiceArea"`
	OfficeLocation string `json:"officeLocation"`
	TypeOfCivilLaw string `json:"typeOfCivilLaw"`

	// IncludeAttorney counts leads with an intake attorney in the intake
	// specialist close rates.
	IncludeAttorney bool `json:"includeAttorney"`
	// FirstCallOnly narrows the New Leads modal to first-call leads.
	FirstCallOnly bool `json:"firstCallOnly"`
}

// NewFilter returns the filter the dashboard opens with.
func NewFilter() Filter { return Filter{DateFilter: DefaultDateFilter} }

// DateOptions lists the presets in their constant spelling.
func DateOptions() []types.Option { return period.ConstantOptions() }

// Range resolves the date preset relative to now.
func (f Filter) Range(now time.Time) period.Range {
	return period.Parse(f.dateFilter()).Range(now)
}

func (f Filter) dateFilter() string {
	if strings.TrimSpace(f.DateFilter) == "" {
		return DefaultDateFilter
	}
	return f.DateFilter
}

// Label is the "(Family Law, Denver)" suffix of modal titles, or "(All)".
func (f Filter) Label() string {
	var parts []string
	for _, v := range []string{f.PracticeArea, f.OfficeLocation, f.TypeOfCivilLaw} {
		if selected(v) {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return "(All)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Matches applies the non-date filters to l.
func (f Filter) Matches(l types.Lead) bool {
	return matchValue(f.PracticeArea, l.PracticeArea) &&
		matchValue(f.OfficeLocation, l.OfficeLocation) &&
		matchValue(f.TypeOfCivilLaw, l.TypeOfCivilLaw)
}

func selected(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != types.AllOption
}

func matchValue(want, got string) bool {
	return !selected(want) || strings.EqualFold(strings.TrimSpace(want), strings.TrimSpace(got))
}

func within(r period.Range, t *time.Time) bool { return t != nil && r.Contains(*t) }

// IsConverted reports a lead whose status is Closed - Converted or Qualified.
func IsConverted(l types.Lead) bool {
	return l.Status == StatusClosedConverted || l.Status == StatusQualified
}

// IsClosed reports a lead whose fee agreement went out and whose first
// payment came in.
func IsClosed(l types.Lead) bool { return l.DateFASent != nil && l.DateFirstPayment != nil }

// AtBat reports a lead whose post consult is complete and who was reached.
func AtBat(l types.Lead) bool { return l.PostConsultDone && !l.NoShow }

// HasAttorney reports a lead an intake attorney worked.
func HasAttorney(l types.Lead) bool { return strings.TrimSpace(l.IntakeAttorneyName) != "" }

// IsSQL reports a sales qualified lead: it came from a marketing source
// outside a test market and completed its first call, or it was
// disqualified because it hired another firm or for firm availability.
func IsSQL(l types.Lead) bool {
	switch l.DisqualifiedReason {
	case ReasonHiredAnotherFirm, ReasonFirmAvailability:
		return true
	}
	return strings.TrimSpace(l.Source) != "" && !l.TestMarket && l.FirstCall
}
