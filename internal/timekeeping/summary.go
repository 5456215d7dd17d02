package timekeeping

import (
	"strconv"
	"time"

	"github.com/matthewbaird/intake/internal/chart"
	"github.com/matthewbaird/intake/internal/csvexport"
	"github.com/matthewbaird/intake/internal/pager"
	"github.com/matthewbaird/intake/internal/types"
)

// Sortable time-entry columns.
const (
	FieldUser     = "user"
	FieldDate     = "date"
	FieldMatter   = "matter"
	FieldNote     = "note"
	FieldHours    = "hours"
	FieldRate     = "rate"
	FieldAmount   = "amount"
	FieldBillable = "billable"
)

// Field reads a sortable column from e.
func Field(e types.TimeEntry, field string) any {
	switch field {
	case FieldUser:
		return e.UserName
	case FieldDate:
		return e.Date
	case FieldMatter:
		return e.Matter
	case FieldNote:
		return e.Note
	case FieldHours:
		return e.Hours
	case FieldRate:
		return e.Rate.AmountCents
	case FieldAmount:
		return e.Amount().AmountCents
	case FieldBillable:
		return e.BillableStatus()
	}
	return nil
}

// NewPager returns a 25-row pager over entries sorted newest first.
func NewPager(entries []types.TimeEntry) *pager.Pager[types.TimeEntry] {
	p := pager.New[types.TimeEntry](PageSize, Field)
	p.Sort(DefaultSortField, pager.Desc)
	p.SetRecords(entries)
	return p
}

// Summary is everything the time dashboards render above the table.
type Summary struct {
	Start            string       `json:"start_date"`
	End              string       `json:"end_date"`
	TotalHours       string       `json:"total_hours"`
	BillableHours    string       `json:"billable_hours"`
	NonBillableHours string       `json:"non_billable_hours"`
	Goal             string       `json:"goal"`
	GoalPercent      int          `json:"goal_percent"`
	Needle           string       `json:"needle"`
	NeedleCompact    string       `json:"needle_compact"`
	Ticks            []Tick       `json:"ticks"`
	CollectionRate   string       `json:"collection_rate"`
	CollectionChart  chart.Config `json:"collection_chart"`
}

// Summarize totals entries against the combined goal of users over w.
// collectionRate is a percentage.
func Summarize(entries []types.TimeEntry, users []types.User, w Window, collectionRate float64) Summary {
	t := Sum(entries)
	goal := TeamGoal(users, w)
	pct := Percent(t.Billable, goal)
	return Summary{
		Start:            w.Range.StartDate(),
		End:              w.Range.EndDate(),
		TotalHours:       Hours(t.Total),
		BillableHours:    Hours(t.Billable),
		NonBillableHours: Hours(t.NonBillable),
		Goal:             Hours(goal),
		GoalPercent:      pct,
		Needle:           Needle(pct),
		NeedleCompact:    NeedleCompact(pct),
		Ticks:            Ticks(goal),
		CollectionRate:   strconv.FormatFloat(collectionRate, 'f', 1, 64),
		CollectionChart:  chart.CollectionRate(collectionRate),
	}
}

// EntriesTable renders the time-entry modal for export. Entries without
// hours are left out.
func EntriesTable(entries []types.TimeEntry) csvexport.Table {
	t := csvexport.Table{Headers: []string{"User", "Date", "Matter", "Note", "Hours", "Rate", "Amount", "Billable Status"}}
	for _, e := range entries {
		if !(e.Hours > 0) {
			continue
		}
		t.AddRow(
			e.UserName,
			e.Date.Format(time.DateOnly),
			e.Matter,
			e.Note,
			number(e.Hours),
			number(e.Rate.Float()),
			number(e.Amount().Float()),
			e.BillableStatus(),
		)
	}
	return t
}

func number(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
