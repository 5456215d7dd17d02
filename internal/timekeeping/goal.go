package timekeeping

import (
	"math"
	"time"

	"github.com/matthewbaird/intake/internal/period"
	"github.com/matthewbaird/intake/internal/types"
)

// Working-time divisors applied to an annual billable target.
const (
	workingDaysPerYear  = 240
	workingWeeksPerYear = 48
)

// Window is the period a goal is computed for. Custom windows carry no
// preset and are matched against whole years, quarters and months.
type Window struct {
	Range  period.Range
	Preset period.Preset
	Custom bool
}

// WindowFor resolves a date selection into a goal window.
func WindowFor(sel period.Selection, now time.Time) (Window, error) {
	r, err := sel.Range(now)
	if err != nil {
		return Window{}, err
	}
	p, ok := sel.ResolvedPreset()
	return Window{Range: r, Preset: p, Custom: !ok}, nil
}

// Goal is u's unrounded billable-hour goal over w. Users without a start date
// or target have none; periods before the start date earn nothing, and the
// period the user started in is prorated by month.
func Goal(u types.User, w Window) float64 {
	if !u.HasGoal() {
		return 0
	}
	loc := w.Range.Start.Location()
	y, m, d := u.StartDate.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	target := u.AnnualTarget

	if w.Custom {
		return customGoal(target, start, w.Range)
	}
	switch w.Preset {
	case period.Today, period.Yesterday:
		day := w.Range.Start
		if isWeekday(day) && !day.Before(start) {
			return target / workingDaysPerYear
		}
		return 0
	case period.ThisWeek, period.LastWeek:
		if !w.Range.End.Before(start) {
			return target / workingWeeksPerYear
		}
		return 0
	case period.ThisMonth, period.LastMonth:
		return monthGoal(target, start, w.Range.Start)
	case period.ThisQuarter, period.LastQuarter:
		return quarterGoal(target, start, w.Range.Start)
	case period.ThisYear, period.LastYear:
		return yearGoal(target, start, w.Range.Start)
	}
	return 0
}

// TeamGoal sums the goals of users and rounds to the quarter hour.
func TeamGoal(users []types.User, w Window) float64 {
	total := 0.0
	for _, u := range users {
		total += Goal(u, w)
	}
	return RoundQuarterHour(math.Max(0, total))
}

// RoundQuarterHour rounds to the nearest 0.25.
func RoundQuarterHour(h float64) float64 { return math.Round(h*4) / 4 }

// Percent is billable hours as a rounded percentage of goal, or 0 without
// a goal. Billable hours are taken at their displayed two-decimal precision.
func Percent(billable, goal float64) int {
	if goal == 0 {
		return 0
	}
	b := math.Round(billable*100) / 100
	return int(math.Round(b / goal * 100))
}

func monthGoal(target float64, start, periodStart time.Time) float64 {
	ty, tm := periodStart.Year(), periodStart.Month()
	uy, um := start.Year(), start.Month()
	if ty > uy || (ty == uy && tm >= um) {
		return target / 12
	}
	return 0
}

func quarterGoal(target float64, start, periodStart time.Time) float64 {
	ty, tq := periodStart.Year(), quarter(periodStart)
	uy, uq := start.Year(), quarter(start)
	if ty < uy || (ty == uy && tq < uq) {
		return 0
	}
	if ty == uy && tq == uq {
		months := tq*3 + 3 - int(start.Month()-1)
		return target / 12 * float64(months)
	}
	return target / 4
}

func yearGoal(target float64, start, periodStart time.Time) float64 {
	ty, uy := periodStart.Year(), start.Year()
	switch {
	case ty > uy:
		return target
	case ty == uy:
		return target / 12 * float64(12-int(start.Month()-1))
	}
	return 0
}

// customGoal matches the range against a whole calendar year, quarter or
// month and falls back to a share of the year by calendar days.
func customGoal(target float64, start time.Time, r period.Range) float64 {
	switch {
	case fullYear(r):
		return yearGoal(target, start, r.Start)
	case fullQuarter(r):
		return quarterGoal(target, start, r.Start)
	case fullMonth(r):
		return monthGoal(target, start, r.Start)
	}
	from := r.Start
	if start.After(from) {
		from = start
	}
	days := daysBetween(from, r.End) + 1
	if days <= 0 {
		return 0
	}
	return float64(days) / 365 * target
}

func fullYear(r period.Range) bool {
	return r.Start.Year() == r.End.Year() &&
		r.Start.Month() == time.January && r.Start.Day() == 1 &&
		r.End.Month() == time.December && r.End.Day() == 31
}

func fullQuarter(r period.Range) bool {
	if r.Start.Year() != r.End.Year() || r.Start.Day() != 1 {
		return false
	}
	q := quarter(r.Start)
	if int(r.Start.Month()) != q*3+1 || int(r.End.Month()) != q*3+3 {
		return false
	}
	return r.End.Day() == lastDay(r.End)
}

func fullMonth(r period.Range) bool {
	return r.Start.Year() == r.End.Year() && r.Start.Month() == r.End.Month() &&
		r.Start.Day() == 1 && r.End.Day() == lastDay(r.End)
}

// daysBetween counts calendar days from a to b, ignoring DST shifts.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

func quarter(t time.Time) int { return (int(t.Month()) - 1) / 3 }

func lastDay(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
