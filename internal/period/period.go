// Package period resolves the dashboards' relative date presets ("This
// Month", "LAST_QUARTER", ...) into concrete calendar ranges.
package period

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matthewbaird/intake/internal/types"
)

// Preset is a relative date range.
type Preset int

const (
	Today Preset = iota
	Yesterday
	ThisWeek
	LastWeek
	ThisMonth
	LastMonth
	ThisQuarter
	LastQuarter
	ThisYear
	LastYear
)

var presets = []struct {
	label, constant string
}{
	Today:       {"Today", "TODAY"},
	Yesterday:   {"Yesterday", "YESTERDAY"},
	ThisWeek:    {"This Week", "THIS_WEEK"},
	LastWeek:    {"Last Week", "LAST_WEEK"},
	ThisMonth:   {"This Month", "THIS_MONTH"},
	LastMonth:   {"Last Month", "LAST_MONTH"},
	ThisQuarter: {"This Quarter", "THIS_QUARTER"},
	LastQuarter: {"Last Quarter", "LAST_QUARTER"},
	ThisYear:    {"This Year", "THIS_YEAR"},
	LastYear:    {"Last Year", "LAST_YEAR"},
}

// All lists the presets in menu order.
func All() []Preset {
	out := make([]Preset, len(presets))
	for i := range presets {
		out[i] = Preset(i)
	}
	return out
}

// Label is the display spelling, e.g. "This Month".
func (p Preset) Label() string {
	if p < 0 || int(p) >= len(presets) {
		return fmt.Sprintf("Preset(%d)", int(p))
	}
	return presets[p].label
}

// Constant is the upper-snake spelling, e.g. "THIS_MONTH".
func (p Preset) Constant() string {
	if p < 0 || int(p) >= len(presets) {
		return ""
	}
	return presets[p].constant
}

func (p Preset) String() string { return p.Label() }

// Lookup resolves either spelling, case-insensitively.
func Lookup(s string) (Preset, bool) {
	s = strings.TrimSpace(s)
	for i, pr := range presets {
		if strings.EqualFold(s, pr.label) || strings.EqualFold(s, pr.constant) {
			return Preset(i), true
		}
	}
	return Today, false
}

// Parse is Lookup with unknown values resolving to Today.
func Parse(s string) Preset {
	p, _ := Lookup(s)
	return p
}

// Option is a picklist entry.
type Option = types.Option

// LabelOptions uses the display spelling as the value.
func LabelOptions() []Option {
	out := make([]Option, 0, len(presets))
	for _, pr := range presets {
		out = append(out, Option{Label: pr.label, Value: pr.label})
	}
	return out
}

// ConstantOptions uses the upper-snake spelling as the value.
func ConstantOptions() []Option {
	out := make([]Option, 0, len(presets))
	for _, pr := range presets {
		out = append(out, Option{Label: pr.label, Value: pr.constant})
	}
	return out
}

// Range is an inclusive span of calendar days. Start and End are midnight in
// the location the range was computed in.
type Range struct {
	Start time.Time
	End   time.Time
}

// Date truncates t to midnight in its own location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Range resolves p relative to now. Weeks run Sunday through Saturday.
func (p Preset) Range(now time.Time) Range {
	today := Date(now)
	y, m, _ := today.Date()
	loc := today.Location()

	switch p {
	case Yesterday:
		d := today.AddDate(0, 0, -1)
		return Range{d, d}
	case ThisWeek, LastWeek:
		start := today.AddDate(0, 0, -int(today.Weekday()))
		if p == LastWeek {
			start = start.AddDate(0, 0, -7)
		}
		return Range{start, start.AddDate(0, 0, 6)}
	case ThisMonth:
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return Range{start, start.AddDate(0, 1, -1)}
	case LastMonth:
		start := time.Date(y, m-1, 1, 0, 0, 0, 0, loc)
		return Range{start, start.AddDate(0, 1, -1)}
	case ThisQuarter, LastQuarter:
		q := (int(m) - 1) / 3
		if p == LastQuarter {
			q--
		}
		start := time.Date(y, time.Month(q*3+1), 1, 0, 0, 0, 0, loc)
		return Range{start, start.AddDate(0, 3, -1)}
	case ThisYear:
		return Range{time.Date(y, 1, 1, 0, 0, 0, 0, loc), time.Date(y, 12, 31, 0, 0, 0, 0, loc)}
	case LastYear:
		return Range{time.Date(y-1, 1, 1, 0, 0, 0, 0, loc), time.Date(y-1, 12, 31, 0, 0, 0, 0, loc)}
	default:
		return Range{today, today}
	}
}

// Resolve parses s and resolves it relative to now.
func Resolve(s string, now time.Time) Range { return Parse(s).Range(now) }

// ErrInvertedRange is returned by Custom when end precedes start.
var ErrInvertedRange = errors.New("period: end date is before start date")

// Custom parses two YYYY-MM-DD dates in loc.
func Custom(start, end string, loc *time.Location) (Range, error) {
	s, err := time.ParseInLocation(time.DateOnly, start, loc)
	if err != nil {
		return Range{}, fmt.Errorf("parse start date: %w", err)
	}
	e, err := time.ParseInLocation(time.DateOnly, end, loc)
	if err != nil {
		return Range{}, fmt.Errorf("parse end date: %w", err)
	}
	if e.Before(s) {
		return Range{}, ErrInvertedRange
	}
	return Range{s, e}, nil
}

// Contains reports whether t falls on a day inside r.
func (r Range) Contains(t time.Time) bool {
	d := Date(t.In(r.Start.Location()))
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days counts the calendar days in r.
func (r Range) Days() int {
	n := 0
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

// Weekdays counts Monday through Friday days in r.
func (r Range) Weekdays() int {
	n := 0
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n++
		}
	}
	return n
}

// StartDate formats Start as YYYY-MM-DD.
func (r Range) StartDate() string { return r.Start.Format(time.DateOnly) }

// EndDate formats End as YYYY-MM-DD.
func (r Range) EndDate() string { return r.End.Format(time.DateOnly) }

func (r Range) String() string { return r.StartDate() + ".." + r.EndDate() }
