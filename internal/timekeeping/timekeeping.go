// Package timekeeping computes the personal and team time dashboards:
// filtered time entries, hour totals, billable-hour goals and the gauge that
// shows progress against them.
package timekeeping

import (
	"sort"
	"strconv"
	"strings"

	"github.com/matthewbaird/intake/internal/period"
	"github.com/matthewbaird/intake/internal/types"
)

// ExcludedMatter marks data-migration matters whose entries never count.
const ExcludedMatter = "Clio Migration"

// PageSize is the modal page size of both time dashboards.
const PageSize = 25

// Dashboard defaults.
const (
	DefaultPreset    = "This Week"
	DefaultSortField = FieldDate
)

// Modal titles.
const (
	TitleTimeSummary    = "Time Summary Details"
	TitleGoalProgress   = "Goal Progress Details"
	TitleCollectionRate = "Collection Rate Details"
)

// Billable narrows entries by billing status.
type Billable string

const (
	BillableAll Billable = "All"
	BillableYes Billable = "Billable"
	BillableNo  Billable = "Non-Billable"
)

// BillableOptions is the billing-status picklist.
func BillableOptions() []types.Option {
	return []types.Option{
		{Label: string(BillableAll), Value: string(BillableAll)},
		{Label: string(BillableYes), Value: string(BillableYes)},
		{Label: string(BillableNo), Value: string(BillableNo)},
	}
}

// Filter is the state of a time dashboard's filter bar. The personal
// dashboard pins UserID; the team dashboard lets both Team and UserID vary.
type Filter struct {
	Date     period.Selection `json:"date"`
	Billable Billable         `json:"billable"`
	Team     string           `json:"team"`
	UserID   string           `json:"user_id"`
}

// NewFilter returns the dashboards' initial filter.
func NewFilter() Filter {
	return Filter{
		Date:     period.NewSelection(DefaultPreset, true),
		Billable: BillableAll,
		Team:     types.AllOption,
		UserID:   types.AllOption,
	}
}

// SetTeam changes the team and resets the person picker, since the old
// person may not be on the new team.
func (f *Filter) SetTeam(team string) {
	f.Team = team
	f.UserID = types.AllOption
}

// Match reports whether e passes the team, person and billable filters.
// Date narrowing happens when entries are fetched.
func (f Filter) Match(e types.TimeEntry) bool {
	if f.Team != "" && f.Team != types.AllOption && e.Team != f.Team {
		return false
	}
	if f.UserID != "" && f.UserID != types.AllOption && e.UserID != f.UserID {
		return false
	}
	switch f.Billable {
	case BillableYes:
		return e.Billable
	case BillableNo:
		return !e.Billable
	}
	return true
}

// Excluded reports whether e is dropped before anything is totalled:
// migration matters always, and empty entries when dropEmpty is set.
func Excluded(e types.TimeEntry, dropEmpty bool) bool {
	if strings.Contains(e.Matter, ExcludedMatter) {
		return true
	}
	return dropEmpty && !(e.Hours > 0)
}

// Apply filters entries for display. The team dashboard passes dropEmpty.
func (f Filter) Apply(entries []types.TimeEntry, dropEmpty bool) []types.TimeEntry {
	out := make([]types.TimeEntry, 0, len(entries))
	for _, e := range entries {
		if Excluded(e, dropEmpty) || !f.Match(e) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Users narrows goal holders to the team and person filters.
func (f Filter) Users(users []types.User) []types.User {
	var out []types.User
	for _, u := range users {
		if f.Team != "" && f.Team != types.AllOption && u.Team != f.Team {
			continue
		}
		if f.UserID != "" && f.UserID != types.AllOption && u.ID != f.UserID {
			continue
		}
		out = append(out, u)
	}
	return out
}

// Totals are hour sums.
type Totals struct {
	Total       float64 `json:"total"`
	Billable    float64 `json:"billable"`
	NonBillable float64 `json:"non_billable"`
}

// Sum totals hours by billing status.
func Sum(entries []types.TimeEntry) Totals {
	var t Totals
	for _, e := range entries {
		t.Total += e.Hours
		if e.Billable {
			t.Billable += e.Hours
		} else {
			t.NonBillable += e.Hours
		}
	}
	return t
}

// Hours formats an hour count with two decimals.
func Hours(h float64) string { return strconv.FormatFloat(h, 'f', 2, 64) }

// TeamOptions lists the distinct teams on entries, sorted, after "All".
func TeamOptions(entries []types.TimeEntry) []types.Option {
	seen := make(map[string]bool)
	var teams []string
	for _, e := range entries {
		if e.Team != "" && !seen[e.Team] {
			seen[e.Team] = true
			teams = append(teams, e.Team)
		}
	}
	sort.Strings(teams)
	return types.WithAll(teams)
}

// PersonOptions lists users on the team, labelled by name and valued by ID.
func PersonOptions(users []types.User, team string) []types.Option {
	out := []types.Option{{Label: types.AllOption, Value: types.AllOption}}
	for _, u := range users {
		if team != "" && team != types.AllOption && u.Team != team {
			continue
		}
		out = append(out, types.Option{Label: u.Name(), Value: u.ID})
	}
	return out
}
