package leads

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/matthewbaird/intake/internal/period"
	"github.com/matthewbaird/intake/internal/types"
)

// Unknown labels leads without an owner or source.
const Unknown = "Unknown"

// TopIntakeSpecialists caps the intake completions chart.
const TopIntakeSpecialists = 10

// Metrics are the lead metric tiles. Each one counts the records of the
// modal of the same name.
type Metrics struct {
	NewLeads              int `json:"newLeads"`
	FirstCallLeads        int `json:"firstCallLeads"`
	IntakeSpecialistCalls int `json:"intakeSpecialistCalls"`
	IntakeAttorneyCalls   int `json:"intakeAttorneyCalls"`
	IntakeAttorneyNoShows int `json:"intakeAttorneyNoShows"`
	TotalClosedByIS       int `json:"totalClosedByIS"`
	TotalClosedByIA       int `json:"totalClosedByIA"`
}

// LeadCount counts the leads created in the filter range.
func LeadCount(leads []types.Lead, f Filter, now time.Time) int {
	return len(selectLeads(leads, f, now, KindLeads, ""))
}

// ComputeMetrics fills the metric tiles.
func ComputeMetrics(leads []types.Lead, f Filter, now time.Time) Metrics {
	count := func(k Kind) int { return len(selectLeads(leads, f, now, k, "")) }
	m := Metrics{
		IntakeSpecialistCalls: count(KindIntakeSpecialistCalls),
		IntakeAttorneyCalls:   count(KindIntakeAttorneyCalls),
		IntakeAttorneyNoShows: count(KindIntakeAttorneyNoShows),
		TotalClosedByIS:       count(KindTotalClosedByIS),
		TotalClosedByIA:       count(KindTotalClosedByIA),
	}
	for _, l := range selectLeads(leads, f, now, KindLeads, "") {
		m.NewLeads++
		if l.FirstCall {
			m.FirstCallLeads++
		}
	}
	return m
}

// Count is one labelled tally.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// countBy tallies the leads by key, highest first. Leads with an empty key
// are skipped.
func countBy(leads []types.Lead, key func(types.Lead) string) []Count {
	tally := make(map[string]int)
	for _, l := range leads {
		if k := strings.TrimSpace(key(l)); k != "" {
			tally[k]++
		}
	}
	out := make([]Count, 0, len(tally))
	for k, n := range tally {
		out = append(out, Count{Label: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func sourceOf(l types.Lead) string {
	if s := strings.TrimSpace(l.Source); s != "" {
		return s
	}
	return Unknown
}

func ownerOf(l types.Lead) string {
	if s := strings.TrimSpace(l.OwnerName); s != "" {
		return s
	}
	return Unknown
}

// TotalBySource counts the new leads per source. Leads without a source
// are counted as Unknown.
func TotalBySource(leads []types.Lead, f Filter, now time.Time) []Count {
	return countBy(selectLeads(leads, f, now, KindLeads, ""), sourceOf)
}

// ByLandingPage counts the new leads per website landing page.
func ByLandingPage(leads []types.Lead, f Filter, now time.Time) []Count {
	return countBy(selectLeads(leads, f, now, KindLeads, ""), func(l types.Lead) string { return l.LandingPage })
}

// ByPracticeArea counts the new leads per practice area. Areas without
// leads do not appear.
func ByPracticeArea(leads []types.Lead, f Filter, now time.Time) []Count {
	return countBy(selectLeads(leads, f, now, KindLeads, ""), func(l types.Lead) string { return l.PracticeArea })
}

// SourceConversion is the conversion rate of one lead source.
type SourceConversion struct {
	Source         string  `json:"source"`
	TotalLeads     int     `json:"totalLeads"`
	ConvertedLeads int     `json:"convertedLeads"`
	ConversionRate float64 `json:"conversionRate"`
}

// ConversionBySource rates each source by its converted new leads, best
// first.
func ConversionBySource(leads []types.Lead, f Filter, now time.Time) []SourceConversion {
	bySource := make(map[string]*SourceConversion)
	for _, l := range selectLeads(leads, f, now, KindLeads, "") {
		s := sourceOf(l)
		sc, ok := bySource[s]
		if !ok {
			sc = &SourceConversion{Source: s}
			bySource[s] = sc
		}
		sc.TotalLeads++
		if IsConverted(l) {
			sc.ConvertedLeads++
		}
	}
	out := make([]SourceConversion, 0, len(bySource))
	for _, sc := range bySource {
		sc.ConversionRate = percent(sc.ConvertedLeads, sc.TotalLeads)
		out = append(out, *sc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ConversionRate != out[j].ConversionRate {
			return out[i].ConversionRate > out[j].ConversionRate
		}
		if out[i].TotalLeads != out[j].TotalLeads {
			return out[i].TotalLeads > out[j].TotalLeads
		}
		return out[i].Source < out[j].Source
	})
	return out
}

// IntakeCompletion is one intake specialist's completed intakes.
type IntakeCompletion struct {
	OwnerName   string `json:"ownerName"`
	IntakeCount int    `json:"intakeCount"`
}

// IntakeCompletions ranks the intake specialists by intakes completed in
// the range and keeps the top ten.
func IntakeCompletions(leads []types.Lead, f Filter, now time.Time) []IntakeCompletion {
	counts := countBy(selectLeads(leads, f, now, KindIntakeCompletionLeads, ""), ownerOf)
	if len(counts) > TopIntakeSpecialists {
		counts = counts[:TopIntakeSpecialists]
	}
	out := make([]IntakeCompletion, 0, len(counts))
	for _, c := range counts {
		out = append(out, IntakeCompletion{OwnerName: c.Label, IntakeCount: c.Count})
	}
	return out
}

// CloseRate is the share of at-bat leads one person closed.
type CloseRate struct {
	Name        string  `json:"name"`
	AtBatLeads  int     `json:"atBatLeads"`
	ClosedLeads int     `json:"closedLeads"`
	CloseRate   float64 `json:"closeRate"`
}

// CloseRateByAttorney rates each intake attorney over the at-bat leads
// whose post consult completed in the range.
func CloseRateByAttorney(leads []types.Lead, f Filter, now time.Time) []CloseRate {
	return closeRates(selectLeads(leads, f, now, KindCloseRateLeads, ""), func(l types.Lead) string {
		return strings.TrimSpace(l.IntakeAttorneyName)
	})
}

// CloseRateByIntakeSpecialist rates each lead owner the same way. Leads an
// attorney worked count only with f.IncludeAttorney.
func CloseRateByIntakeSpecialist(leads []types.Lead, f Filter, now time.Time) []CloseRate {
	return closeRates(selectLeads(leads, f, now, KindIntakeSpecialistCloseRateLeads, ""), ownerOf)
}

func closeRates(leads []types.Lead, key func(types.Lead) string) []CloseRate {
	byName := make(map[string]*CloseRate)
	for _, l := range leads {
		k := key(l)
		if k == "" {
			continue
		}
		cr, ok := byName[k]
		if !ok {
			cr = &CloseRate{Name: k}
			byName[k] = cr
		}
		cr.AtBatLeads++
		if IsClosed(l) {
			cr.ClosedLeads++
		}
	}
	out := make([]CloseRate, 0, len(byName))
	for _, cr := range byName {
		cr.CloseRate = percent(cr.ClosedLeads, cr.AtBatLeads)
		out = append(out, *cr)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CloseRate != out[j].CloseRate {
			return out[i].CloseRate > out[j].CloseRate
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// TrendPoint is the SQL count of one day or month.
type TrendPoint struct {
	PeriodLabel string    `json:"periodLabel"`
	PeriodStart time.Time `json:"periodStart"`
	SQLCount    int       `json:"sqlCount"`
}

// DailyTrendMaxDays is the longest range the trend plots per day; longer
// ranges plot per month.
const DailyTrendMaxDays = 31

// SQLTrend counts the sales qualified leads created on each day of the
// range, or each month for ranges longer than a month. Empty periods are
// included with a zero count.
func SQLTrend(leads []types.Lead, f Filter, now time.Time) []TrendPoint {
	r := f.Range(now)
	daily := r.Days() <= DailyTrendMaxDays
	bucket := func(t time.Time) time.Time {
		d := period.Date(t.In(r.Start.Location()))
		if daily {
			return d
		}
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
	}

	var points []TrendPoint
	index := make(map[time.Time]int)
	for d := bucket(r.Start); !d.After(r.End); {
		index[d] = len(points)
		label := d.Format("Jan 2006")
		if daily {
			label = d.Format("Jan 2")
		}
		points = append(points, TrendPoint{PeriodLabel: label, PeriodStart: d})
		if daily {
			d = d.AddDate(0, 0, 1)
		} else {
			d = d.AddDate(0, 1, 0)
		}
	}
	for _, l := range selectLeads(leads, f, now, KindSQLLeads, "") {
		if i, ok := index[bucket(l.CreatedAt)]; ok {
			points[i].SQLCount++
		}
	}
	return points
}

// TotalSQLs sums the trend.
func TotalSQLs(points []TrendPoint) int {
	n := 0
	for _, p := range points {
		n += p.SQLCount
	}
	return n
}

// percent is part/whole as a percentage to two decimals, or 0.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*10000) / 100
}
