package invoicing

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/intake/internal/chart"
	"github.com/matthewbaird/intake/internal/period"
	"github.com/matthewbaird/intake/internal/types"
)

var now = time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

func day(m time.Month, d int) time.Time { return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC) }

func ledger() Ledger {
	return Ledger{
		Invoices: []types.Invoice{
			{ID: "i1", Number: "INV-1", IssuedOn: day(5, 3), Status: "Paid", Team: "Family", Matter: "Smith", ResponsibleAttorney: "Ann", Total: types.USD(100000), Paid: types.USD(100000)},
			{ID: "i2", Number: "INV-2", IssuedOn: day(5, 20), Status: "Open", Team: "Criminal", Matter: "Jones", ResponsibleAttorney: "Ben", Total: types.USD(50050), Paid: types.USD(10000)},
			{ID: "i3", Number: "INV-3", IssuedOn: day(4, 28), Status: "Open", Team: "Family", Matter: "Brown", ResponsibleAttorney: "Ann", Total: types.USD(40000), Paid: types.USD(20000)},
			{ID: "i4", Number: "INV-4", IssuedOn: day(6, 2), Status: "Open", Team: "Civil", Matter: "Lee", Total: types.USD(30000)},
		},
		Payments: []types.Payment{
			{ID: "p1", InvoiceID: "i1", ReceivedOn: day(5, 10), Method: "Check", Reference: "1001", Amount: types.USD(80000)},
			{ID: "p2", InvoiceID: "i1", ReceivedOn: day(5, 5), Method: "Credit", Amount: types.USD(20000), CreditNote: true},
			{ID: "p3", InvoiceID: "i2", ReceivedOn: day(5, 25), Method: "ACH", Amount: types.USD(10000)},
			{ID: "p4", InvoiceID: "i3", ReceivedOn: day(5, 2), Method: "Card", Reference: " ", Amount: types.USD(20000)},
		},
	}
}

func TestCompute(t *testing.T) {
	m, err := Compute(ledger(), NewFilter(), now)
	require.NoError(t, err)
	assert.InDelta(t, 1500.50, m.TotalInvoiced, 1e-9)
	assert.InDelta(t, 1100, m.PaymentsReceived, 1e-9)
	assert.InDelta(t, 400.50, m.OutstandingBalance, 1e-9)
	assert.Equal(t, 73.31, m.CollectionRate)

	want := []TeamValue{{"Criminal", 500.5}, {"Family", 1000}}
	if diff := cmp.Diff(want, m.InvoicedByTeam); diff != "" {
		t.Errorf("invoiced by team (-want +got):\n%s", diff)
	}
	assert.Equal(t, []TeamValue{{"Criminal", 100}, {"Family", 1000}}, m.PaymentsByTeam)
	assert.Equal(t, []TeamValue{{"Criminal", 19.98}, {"Family", 100}}, m.CollectionRateByTeam)
}

func TestComputeScopes(t *testing.T) {
	f := NewFilter()
	f.Team = "Family"
	m, err := Compute(ledger(), f, now)
	require.NoError(t, err)
	assert.InDelta(t, 1000, m.TotalInvoiced, 1e-9)

	f = NewFilter()
	f.Attorney = "Ben"
	rate, err := CollectionRate(ledger(), f, now)
	require.NoError(t, err)
	assert.Equal(t, 19.98, rate)
}

func TestComputeRejectsInvertedCustomRange(t *testing.T) {
	f := NewFilter()
	f.Date.SetStart("2024-05-31")
	f.Date.SetEnd("2024-05-01")
	_, err := Compute(ledger(), f, now)
	assert.ErrorIs(t, err, period.ErrInvertedRange)
}

func TestSetPresetResetsTeam(t *testing.T) {
	f := NewFilter()
	f.Team = "Family"
	f.Date.SetStart("2024-01-01")
	f.SetPreset("This Year")
	assert.Equal(t, types.AllOption, f.Team)
	assert.Empty(t, f.Date.Start)
	assert.True(t, f.HasValidDateSelection())

	f.Date.SetPreset("")
	f.Date.SetStart("2024-01-01")
	assert.False(t, f.HasValidDateSelection())
}

func TestRender(t *testing.T) {
	m, err := Compute(ledger(), NewFilter(), now)
	require.NoError(t, err)
	d := Render(m, NewFilter())
	assert.Equal(t, int64(1500), d.TotalInvoicedTruncated)
	assert.Equal(t, "73.3", d.CollectionRateFormatted)
	require.Len(t, d.Charts, 4)
	assert.Equal(t, []float64{500, 1000}, d.Charts[0].Data.Datasets[0].Data)
	assert.Equal(t, "Collection Rate (%)", d.Charts[3].Data.Datasets[0].Label)
	assert.Equal(t, []string{chart.ColorCollection, chart.ColorCollection}, d.Charts[3].Data.Datasets[0].BackgroundColor)

	invalid := NewFilter()
	invalid.Date.SetStart("2024-01-01")
	assert.Empty(t, Render(m, invalid).Charts)
}

func invoiceNumbers(rows []Row) []string {
	var out []string
	for _, r := range rows {
		out = append(out, r.InvoiceNumber)
	}
	return out
}

func TestDetails(t *testing.T) {
	rows, err := Details(ledger(), NewFilter(), MetricTotalInvoiced, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"INV-2", "INV-1"}, invoiceNumbers(rows))

	rows, err = Details(ledger(), NewFilter(), MetricOutstandingBalance, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"INV-2"}, invoiceNumbers(rows))

	rows, err = Details(ledger(), NewFilter(), MetricPaymentsReceived, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"INV-2", "INV-1", "INV-3"}, invoiceNumbers(rows))

	_, err = Details(ledger(), NewFilter(), "bogus", now)
	assert.Error(t, err)
}

func TestMetricFor(t *testing.T) {
	m, ok := MetricFor("Collection Rate Details")
	require.True(t, ok)
	assert.Equal(t, MetricTotalInvoiced, m)
	m, ok = MetricFor("paymentsReceived")
	require.True(t, ok)
	assert.Equal(t, MetricPaymentsReceived, m)
	_, ok = MetricFor("nope")
	assert.False(t, ok)
}

func TestTeamOptions(t *testing.T) {
	opts, err := TeamOptions(ledger(), NewFilter(), now)
	require.NoError(t, err)
	assert.Equal(t, []types.Option{{"All", "All"}, {"Criminal", "Criminal"}, {"Family", "Family"}}, opts)
}

func TestPayments(t *testing.T) {
	l := ledger()
	d := Payments(l, l.Invoices[0])
	assert.Equal(t, "Payment Details - INV-1", d.Title)
	require.Len(t, d.Rows, 2)
	assert.Equal(t, "p2", d.Rows[0].PaymentID)
	assert.Equal(t, "Check / 1001", d.Rows[1].MethodRef)
	assert.Equal(t, 800.0, d.PaymentsTotal)
	assert.Equal(t, 200.0, d.CreditNotesTotal)
	assert.Equal(t, 1000.0, d.CombinedApplied)

	assert.Equal(t, "Card", Payments(l, l.Invoices[2]).Rows[0].MethodRef)
}

func TestTableAndPager(t *testing.T) {
	rows, err := Details(ledger(), NewFilter(), MetricTotalInvoiced, now)
	require.NoError(t, err)
	tbl := Table(rows)
	assert.Equal(t, []string{"INV-2", "2024-05-20", "500.5", "100", "400.5", "Open", "Criminal", "Jones"}, tbl.Rows[0])
	assert.Equal(t, 1, NewPager(rows).TotalPages())
}
