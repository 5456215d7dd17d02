package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday.
var now = time.Date(2024, time.May, 15, 14, 30, 0, 0, time.UTC)

func TestPresetRanges(t *testing.T) {
	cases := []struct {
		preset     Preset
		start, end string
	}{
		{Today, "2024-05-15", "2024-05-15"},
		{Yesterday, "2024-05-14", "2024-05-14"},
		{ThisWeek, "2024-05-12", "2024-05-18"},
		{LastWeek, "2024-05-05", "2024-05-11"},
		{ThisMonth, "2024-05-01", "2024-05-31"},
		{LastMonth, "2024-04-01", "2024-04-30"},
		{ThisQuarter, "2024-04-01", "2024-06-30"},
		{LastQuarter, "2024-01-01", "2024-03-31"},
		{ThisYear, "2024-01-01", "2024-12-31"},
		{LastYear, "2023-01-01", "2023-12-31"},
	}
	for _, tc := range cases {
		t.Run(tc.preset.Label(), func(t *testing.T) {
			r := tc.preset.Range(now)
			assert.Equal(t, tc.start, r.StartDate())
			assert.Equal(t, tc.end, r.EndDate())
		})
	}
}

func TestYearBoundaries(t *testing.T) {
	jan := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2023-10-01..2023-12-31", LastQuarter.Range(jan).String())
	assert.Equal(t, "2023-12-01..2023-12-31", LastMonth.Range(jan).String())

	// Leap-year February.
	mar := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-02-01..2024-02-29", LastMonth.Range(mar).String())
}

func TestSundayStartsItsOwnWeek(t *testing.T) {
	sun := time.Date(2024, time.May, 12, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-05-12..2024-05-18", ThisWeek.Range(sun).String())
}

func TestLookupAcceptsBothSpellings(t *testing.T) {
	for _, s := range []string{"This Month", "THIS_MONTH", "this month", " this_month "} {
		p, ok := Lookup(s)
		assert.True(t, ok, s)
		assert.Equal(t, ThisMonth, p, s)
	}
	p, ok := Lookup("Fortnight")
	assert.False(t, ok)
	assert.Equal(t, Today, p)
	assert.Equal(t, "2024-05-15..2024-05-15", Resolve("", now).String())
}

func TestOptions(t *testing.T) {
	require.Len(t, LabelOptions(), 10)
	assert.Equal(t, Option{Label: "Last Year", Value: "LAST_YEAR"}, ConstantOptions()[9])
	assert.Equal(t, Option{Label: "Today", Value: "Today"}, LabelOptions()[0])
}

func TestCustom(t *testing.T) {
	r, err := Custom("2024-01-01", "2024-01-31", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 31, r.Days())
	assert.Equal(t, 23, r.Weekdays())
	assert.True(t, r.Contains(time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))

	_, err = Custom("2024-02-01", "2024-01-01", time.UTC)
	assert.ErrorIs(t, err, ErrInvertedRange)
	_, err = Custom("yesterday", "2024-01-01", time.UTC)
	assert.Error(t, err)
}
