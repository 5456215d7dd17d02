package timekeeping

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/intake/internal/pager"
	"github.com/matthewbaird/intake/internal/period"
	"github.com/matthewbaird/intake/internal/types"
)

// Wednesday.
var now = time.Date(2024, time.May, 15, 10, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func user(id string, start time.Time, target float64) types.User {
	return types.User{ID: id, FirstName: id, LastName: "Doe", Team: "Family", StartDate: &start, AnnualTarget: target}
}

func presetWindow(p period.Preset, at time.Time) Window {
	return Window{Range: p.Range(at), Preset: p}
}

func customWindow(t *testing.T, start, end string) Window {
	r, err := period.Custom(start, end, time.UTC)
	require.NoError(t, err)
	return Window{Range: r, Custom: true}
}

func TestPresetGoals(t *testing.T) {
	veteran := user("v", day(2023, 3, 15), 1200)
	cases := []struct {
		name string
		w    Window
		want float64
	}{
		{"today", presetWindow(period.Today, now), 5},
		{"saturday", presetWindow(period.Today, day(2024, 5, 18)), 0},
		{"week", presetWindow(period.ThisWeek, now), 25},
		{"month", presetWindow(period.ThisMonth, now), 100},
		{"quarter", presetWindow(period.ThisQuarter, now), 300},
		{"year", presetWindow(period.ThisYear, now), 1200},
		{"start year", presetWindow(period.LastYear, now), 1000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Goal(veteran, tc.w), 1e-9)
		})
	}
}

func TestNewStarterIsProrated(t *testing.T) {
	hire := user("n", day(2024, 5, 10), 1200)
	assert.InDelta(t, 200.0, Goal(hire, presetWindow(period.ThisQuarter, now)), 1e-9)
	assert.InDelta(t, 800.0, Goal(hire, presetWindow(period.ThisYear, now)), 1e-9)
	assert.Zero(t, Goal(hire, presetWindow(period.LastYear, now)))
	assert.Zero(t, Goal(hire, presetWindow(period.LastMonth, now)))
	assert.Zero(t, Goal(hire, presetWindow(period.Today, day(2024, 5, 9))))
	assert.InDelta(t, 25.0, Goal(hire, presetWindow(period.ThisWeek, day(2024, 5, 6))), 1e-9)
}

func TestCustomGoalPatterns(t *testing.T) {
	veteran := user("v", day(2023, 3, 15), 1200)
	assert.InDelta(t, 1200.0, Goal(veteran, customWindow(t, "2024-01-01", "2024-12-31")), 1e-9)
	assert.InDelta(t, 300.0, Goal(veteran, customWindow(t, "2024-01-01", "2024-03-31")), 1e-9)
	assert.InDelta(t, 100.0, Goal(veteran, customWindow(t, "2024-02-01", "2024-02-29")), 1e-9)
	assert.InDelta(t, 10.0/365*1200, Goal(veteran, customWindow(t, "2024-01-01", "2024-01-10")), 1e-9)

	late := user("l", day(2024, 1, 6), 1200)
	assert.InDelta(t, 5.0/365*1200, Goal(late, customWindow(t, "2024-01-01", "2024-01-10")), 1e-9)
	assert.Zero(t, Goal(late, customWindow(t, "2023-12-01", "2023-12-10")))
}

func TestTeamGoal(t *testing.T) {
	users := []types.User{
		user("a", day(2023, 1, 1), 1200),
		user("b", day(2023, 1, 1), 1200),
		{ID: "no-target", FirstName: "x"},
	}
	got := TeamGoal(users, customWindow(t, "2024-01-01", "2024-01-10"))
	assert.Equal(t, 65.75, got)
	assert.Zero(t, TeamGoal(nil, presetWindow(period.ThisMonth, now)))
}

func TestWindowFor(t *testing.T) {
	sel := period.NewSelection("This Week", true)
	w, err := WindowFor(sel, now)
	require.NoError(t, err)
	assert.False(t, w.Custom)
	assert.Equal(t, period.ThisWeek, w.Preset)

	sel.SetStart("2024-01-01")
	sel.SetEnd("2024-01-31")
	w, err = WindowFor(sel, now)
	require.NoError(t, err)
	assert.True(t, w.Custom)
	assert.Equal(t, "2024-01-31", w.Range.EndDate())
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(10, 0))
	assert.Equal(t, 50, Percent(12.5, 25))
	assert.Equal(t, 38, Percent(37.499, 100))
	assert.Equal(t, 150, Percent(150, 100))
}

func TestRoundQuarterHour(t *testing.T) {
	assert.Equal(t, 1.25, RoundQuarterHour(1.2))
	assert.Equal(t, 1.0, RoundQuarterHour(1.1))
	assert.Equal(t, 0.0, RoundQuarterHour(0.1))
}

func TestNeedle(t *testing.T) {
	assert.Equal(t, "rotate(-90 100 100)", Needle(0))
	assert.Equal(t, "rotate(0 100 100)", Needle(50))
	assert.Equal(t, "rotate(90 100 100)", Needle(150))
	assert.Equal(t, "rotate(-45 80 80)", NeedleCompact(25))
}

func TestTicks(t *testing.T) {
	ticks := Ticks(12.5)
	require.Len(t, ticks, 6)
	var labels []string
	for _, tk := range ticks {
		labels = append(labels, tk.Label)
	}
	if diff := cmp.Diff([]string{"0", "2.5", "5", "7.5", "10", "12.5"}, labels); diff != "" {
		t.Errorf("tick labels (-want +got):\n%s", diff)
	}

	first, last := ticks[0], ticks[5]
	assert.InDelta(t, 15, first.Full.X1, 1e-9)
	assert.InDelta(t, 100, first.Full.Y1, 1e-9)
	assert.InDelta(t, 10, first.Full.X2, 1e-9)
	assert.InDelta(t, 3, first.Full.TX, 1e-9)
	assert.InDelta(t, 185, last.Full.X1, 1e-9)
	assert.InDelta(t, 12.5, first.Compact.X1, 1e-9)
	assert.InDelta(t, 8.5, first.Compact.X2, 1e-9)
	assert.InDelta(t, 4.5, first.Compact.TX, 1e-9)
}

func entries() []types.TimeEntry {
	return []types.TimeEntry{
		{ID: "1", UserID: "a", UserName: "Ann", Team: "Family", Date: day(2024, 5, 13), Matter: "Smith Divorce", Hours: 1.5, Rate: types.USD(25000), Billable: true},
		{ID: "2", UserID: "b", UserName: "Ben", Team: "Criminal", Date: day(2024, 5, 14), Matter: "State v. Jones", Hours: 2, Rate: types.USD(30000), Billable: true},
		{ID: "3", UserID: "a", UserName: "Ann", Team: "Family", Date: day(2024, 5, 15), Matter: "Admin", Hours: 0.75},
		{ID: "4", UserID: "a", UserName: "Ann", Team: "Family", Date: day(2024, 5, 15), Matter: "Clio Migration - batch 2", Hours: 8, Billable: true},
		{ID: "5", UserID: "b", UserName: "Ben", Team: "Criminal", Date: day(2024, 5, 15), Matter: "State v. Jones", Hours: 0, Billable: true},
	}
}

func ids(es []types.TimeEntry) []string {
	var out []string
	for _, e := range es {
		out = append(out, e.ID)
	}
	return out
}

func TestFilterApply(t *testing.T) {
	f := NewFilter()
	assert.Equal(t, []string{"1", "2", "3", "5"}, ids(f.Apply(entries(), false)))
	assert.Equal(t, []string{"1", "2", "3"}, ids(f.Apply(entries(), true)))

	f.Team = "Family"
	assert.Equal(t, []string{"1", "3"}, ids(f.Apply(entries(), true)))
	f.Billable = BillableNo
	assert.Equal(t, []string{"3"}, ids(f.Apply(entries(), true)))

	f.UserID = "b"
	f.SetTeam("Criminal")
	assert.Equal(t, types.AllOption, f.UserID)
}

func TestSum(t *testing.T) {
	tot := Sum(NewFilter().Apply(entries(), true))
	assert.Equal(t, "4.25", Hours(tot.Total))
	assert.Equal(t, "3.50", Hours(tot.Billable))
	assert.Equal(t, "0.75", Hours(tot.NonBillable))
}

func TestSummarize(t *testing.T) {
	users := []types.User{user("a", day(2023, 1, 1), 1200)}
	s := Summarize(NewFilter().Apply(entries(), true), users, presetWindow(period.ThisWeek, now), 82.46)
	assert.Equal(t, "25.00", s.Goal)
	assert.Equal(t, 14, s.GoalPercent)
	assert.Equal(t, "82.5", s.CollectionRate)
	assert.Equal(t, "2024-05-12", s.Start)
	assert.Len(t, s.Ticks, 6)
}

func TestPagerDefaultsToNewestFirst(t *testing.T) {
	p := NewPager(entries())
	assert.Equal(t, FieldDate, p.SortField())
	assert.Equal(t, pager.Desc, p.SortDirection())
	got := ids(p.Page())
	assert.Equal(t, []string{"3", "4", "5", "2", "1"}, got)
}

func TestEntriesTable(t *testing.T) {
	tbl := EntriesTable(entries())
	require.Len(t, tbl.Rows, 4)
	assert.Equal(t, []string{"Ann", "2024-05-13", "Smith Divorce", "", "1.5", "250", "375", "Yes"}, tbl.Rows[0])
	assert.Equal(t, "No", tbl.Rows[2][7])
}

func TestOptions(t *testing.T) {
	opts := TeamOptions(entries())
	assert.Equal(t, []types.Option{{"All", "All"}, {"Criminal", "Criminal"}, {"Family", "Family"}}, opts)

	people := PersonOptions([]types.User{user("a", now, 1), {ID: "z", FirstName: "Zed", Team: "Civil"}}, "Family")
	assert.Equal(t, []types.Option{{"All", "All"}, {"a Doe", "a"}}, people)
	assert.Len(t, BillableOptions(), 3)
}
