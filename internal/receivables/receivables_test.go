package receivables

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/intake/internal/types"
)

var asOf = time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func invoices() []types.Invoice {
	return []types.Invoice{
		{ID: "a", Number: "INV-1", IssuedOn: day(2024, 5, 1), Status: "Open", Team: "Family", Matter: "Smith", Total: types.USD(150075), Paid: types.USD(50000)},
		{ID: "b", Number: "INV-2", IssuedOn: day(2024, 3, 20), Status: "Open", Team: "Criminal", Matter: "Jones", Total: types.USD(200000)},
		{ID: "c", Number: "INV-3", IssuedOn: day(2024, 3, 1), Status: "Overdue", Team: "Family", Matter: "Brown", Total: types.USD(99999)},
		{ID: "d", Number: "INV-4", IssuedOn: day(2024, 2, 10), Status: "Overdue", Team: "Civil", Matter: "Lee", Total: types.USD(30000)},
		{ID: "e", Number: "INV-5", IssuedOn: day(2024, 1, 2), Status: "Paid", Team: "Estate", Matter: "Kim", Total: types.USD(30000), Paid: types.USD(30000)},
		{ID: "f", Number: "INV-6", IssuedOn: day(2024, 6, 1), Status: "Open", Team: "Probate", Matter: "Future", Total: types.USD(10000)},
	}
}

func TestBucketFor(t *testing.T) {
	cases := map[int]Bucket{0: Bucket30, 30: Bucket30, 31: Bucket60, 60: Bucket60, 61: Bucket90, 90: Bucket90, 91: Bucket91Plus, 400: Bucket91Plus}
	for days, want := range cases {
		assert.Equal(t, want, BucketFor(days), "days=%d", days)
	}
}

func TestParseBucket(t *testing.T) {
	b, err := ParseBucket("91+")
	require.NoError(t, err)
	assert.Equal(t, "91+ Days Outstanding", b.Title())
	_, err = ParseBucket("120")
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	s := Summarize(invoices(), NewFilter(asOf.Add(9*time.Hour)))
	assert.Equal(t, "2024-05-15", s.AsOf)
	assert.InDelta(t, 1000.75, s.Totals.Days30, 1e-9)
	assert.InDelta(t, 2000, s.Totals.Days60, 1e-9)
	assert.InDelta(t, 999.99, s.Totals.Days90, 1e-9)
	assert.InDelta(t, 300, s.Totals.Days91Plus, 1e-9)

	require.Len(t, s.Tiles, 4)
	assert.Equal(t, "$1,000", s.Tiles[0].Formatted)
	assert.Equal(t, int64(999), s.Tiles[2].Truncated)
	assert.Equal(t, "0-60 Days Outstanding", s.Tiles[1].Title)
	assert.Equal(t, 1, s.Tiles[3].Count)
}

func TestSummarizeByTeam(t *testing.T) {
	f := NewFilter(asOf)
	f.Team = "Family"
	s := Summarize(invoices(), f)
	assert.InDelta(t, 1000.75, s.Totals.Days30, 1e-9)
	assert.Zero(t, s.Totals.Days60)
	assert.InDelta(t, 999.99, s.Totals.Days90, 1e-9)
}

func TestDetails(t *testing.T) {
	rows := Details(invoices(), NewFilter(asOf), Bucket91Plus)
	require.Len(t, rows, 1)
	assert.Equal(t, "INV-4", rows[0].InvoiceNumber)
	assert.Equal(t, 95, rows[0].DaysOutstanding)
	assert.Equal(t, "/d", rows[0].InvoiceURL)
}

func TestTeamOptions(t *testing.T) {
	got := TeamOptions(invoices(), asOf)
	assert.Equal(t, []types.Option{{"All", "All"}, {"Civil", "Civil"}, {"Criminal", "Criminal"}, {"Family", "Family"}}, got)
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$0", FormatCurrency(0))
	assert.Equal(t, "$0", FormatCurrency(math.NaN()))
	assert.Equal(t, "$12", FormatCurrency(12.99))
	assert.Equal(t, "$1,234,567", FormatCurrency(1234567.5))
	assert.Equal(t, "-$6", FormatCurrency(-5.5))
}

func TestPagerAndTable(t *testing.T) {
	rows := Rows(invoices(), NewFilter(asOf))
	p := NewPager(rows)
	assert.Equal(t, 4, p.Total())
	assert.False(t, p.ShowPagination())

	tbl := Table(Details(invoices(), NewFilter(asOf), Bucket30))
	assert.Equal(t, []string{"Invoice Number", "Date", "Status", "Team", "Matter", "Days Outstanding", "Balance"}, tbl.Headers)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, []string{"INV-1", "2024-05-01", "Open", "Family", "Smith", "14", "1000.75"}, tbl.Rows[0])
}
