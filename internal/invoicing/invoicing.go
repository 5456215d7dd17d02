// Package invoicing computes the invoice dashboard: totals invoiced, payments
// received, outstanding balance and collection rate over a period, broken
// down by team, plus the drill-down and payment-detail modals.
package invoicing

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/matthewbaird/intake/internal/chart"
	"github.com/matthewbaird/intake/internal/csvexport"
	"github.com/matthewbaird/intake/internal/pager"
	"github.com/matthewbaird/intake/internal/period"
	"github.com/matthewbaird/intake/internal/types"
)

const (
	PageSize      = 25
	DefaultPreset = "Last Month"
)

// Metric selects which invoices a drill-down lists.
type Metric string

const (
	MetricTotalInvoiced      Metric = "totalInvoiced"
	MetricPaymentsReceived   Metric = "paymentsReceived"
	MetricOutstandingBalance Metric = "outstandingBalance"
)

// Card is a clickable metric tile and the modal it opens.
type Card struct {
	Title  string `json:"title"`
	Metric Metric `json:"metric_type"`
}

// Cards lists the dashboard tiles. The collection-rate tile drills into the
// invoiced set.
func Cards() []Card {
	return []Card{
		{"Total Invoiced Amount Details", MetricTotalInvoiced},
		{"Payments Received Details", MetricPaymentsReceived},
		{"Outstanding Balance Details", MetricOutstandingBalance},
		{"Collection Rate Details", MetricTotalInvoiced},
	}
}

// MetricFor maps a modal title or a metric name onto its metric.
func MetricFor(s string) (Metric, bool) {
	for _, c := range Cards() {
		if c.Title == s || string(c.Metric) == s {
			return c.Metric, true
		}
	}
	return "", false
}

// Filter is the invoice dashboard filter bar. Attorney narrows the invoices
// to one responsible attorney for the time dashboards' collection rate.
type Filter struct {
	Date     period.Selection `json:"date"`
	Team     string           `json:"team"`
	Attorney string           `json:"attorney,omitempty"`
}

// NewFilter starts at last month across all teams.
func NewFilter() Filter {
	return Filter{Date: period.NewSelection(DefaultPreset, false), Team: types.AllOption}
}

// SetPreset picks a preset, dropping custom dates and the team choice.
func (f *Filter) SetPreset(p string) {
	f.Date.SetPreset(p)
	f.Team = types.AllOption
}

// HasValidDateSelection reports whether charts can be drawn.
func (f Filter) HasValidDateSelection() bool { return f.Date.IsValid() }

func (f Filter) matchTeam(team string) bool {
	return f.Team == "" || f.Team == types.AllOption || team == f.Team
}

func (f Filter) match(inv types.Invoice) bool {
	return f.matchTeam(inv.Team) && (f.Attorney == "" || inv.ResponsibleAttorney == f.Attorney)
}

// Ledger is the invoice and payment data the dashboard reads.
type Ledger struct {
	Invoices []types.Invoice
	Payments []types.Payment
}

func (l Ledger) byID() map[string]types.Invoice {
	m := make(map[string]types.Invoice, len(l.Invoices))
	for _, inv := range l.Invoices {
		m[inv.ID] = inv
	}
	return m
}

// TeamValue is one bar in a by-team chart.
type TeamValue struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Metrics are the dashboard totals over a period.
type Metrics struct {
	TotalInvoiced        float64     `json:"totalInvoiced"`
	PaymentsReceived     float64     `json:"paymentsReceived"`
	OutstandingBalance   float64     `json:"outstandingBalance"`
	CollectionRate       float64     `json:"collectionRate"`
	InvoicedByTeam       []TeamValue `json:"invoicedByTeam"`
	PaymentsByTeam       []TeamValue `json:"paymentsByTeam"`
	OutstandingByTeam    []TeamValue `json:"outstandingByTeam"`
	CollectionRateByTeam []TeamValue `json:"collectionRateByTeam"`
}

type tally struct {
	invoiced, payments, outstanding types.Money
}

// Compute totals the ledger over the filter's period. Invoices count by
// issue date, payments by the date they were received; credit notes are not
// payments.
func Compute(l Ledger, f Filter, now time.Time) (Metrics, error) {
	r, err := f.Date.Range(now)
	if err != nil {
		return Metrics{}, err
	}
	var total tally
	teams := make(map[string]*tally)
	team := func(name string) *tally {
		t, ok := teams[name]
		if !ok {
			t = &tally{}
			teams[name] = t
		}
		return t
	}
	for _, inv := range l.Invoices {
		if !f.match(inv) || !r.Contains(inv.IssuedOn) {
			continue
		}
		t := team(inv.Team)
		t.invoiced = t.invoiced.Add(inv.Total)
		t.outstanding = t.outstanding.Add(inv.Balance())
		total.invoiced = total.invoiced.Add(inv.Total)
		total.outstanding = total.outstanding.Add(inv.Balance())
	}
	invoices := l.byID()
	for _, p := range l.Payments {
		inv, ok := invoices[p.InvoiceID]
		if p.CreditNote || !ok || !f.match(inv) || !r.Contains(p.ReceivedOn) {
			continue
		}
		t := team(inv.Team)
		t.payments = t.payments.Add(p.Amount)
		total.payments = total.payments.Add(p.Amount)
	}

	m := Metrics{
		TotalInvoiced:      total.invoiced.Float(),
		PaymentsReceived:   total.payments.Float(),
		OutstandingBalance: total.outstanding.Float(),
		CollectionRate:     rate(total.payments, total.invoiced),
	}
	names := make([]string, 0, len(teams))
	for name := range teams {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := teams[name]
		label := name
		if label == "" {
			label = "Unassigned"
		}
		m.InvoicedByTeam = append(m.InvoicedByTeam, TeamValue{label, t.invoiced.Float()})
		m.PaymentsByTeam = append(m.PaymentsByTeam, TeamValue{label, t.payments.Float()})
		m.OutstandingByTeam = append(m.OutstandingByTeam, TeamValue{label, t.outstanding.Float()})
		m.CollectionRateByTeam = append(m.CollectionRateByTeam, TeamValue{label, rate(t.payments, t.invoiced)})
	}
	return m, nil
}

// CollectionRate is payments received as a percentage of the amount
// invoiced over the filter's period.
func CollectionRate(l Ledger, f Filter, now time.Time) (float64, error) {
	m, err := Compute(l, f, now)
	if err != nil {
		return 0, err
	}
	return m.CollectionRate, nil
}

// rate is paid/invoiced as a percentage rounded to two decimals.
func rate(paid, invoiced types.Money) float64 {
	if invoiced.AmountCents <= 0 {
		return 0
	}
	return math.Round(float64(paid.AmountCents)/float64(invoiced.AmountCents)*10000) / 100
}

// Dashboard is the rendered tile row and charts.
type Dashboard struct {
	Metrics
	TotalInvoicedTruncated      int64          `json:"totalInvoicedTruncated"`
	PaymentsReceivedTruncated   int64          `json:"paymentsReceivedTruncated"`
	OutstandingBalanceTruncated int64          `json:"outstandingBalanceTruncated"`
	CollectionRateFormatted     string         `json:"collectionRateFormatted"`
	Charts                      []chart.Config `json:"charts,omitempty"`
}

// Chart IDs used with a chart.Service.
const (
	ChartInvoiced       = "totalInvoicedChart"
	ChartPayments       = "paymentsReceivedChart"
	ChartOutstanding    = "outstandingBalanceChart"
	ChartCollectionRate = "collectionRateChart"
)

// ChartIDs lists the chart IDs in the order Render emits the charts.
func ChartIDs() []string {
	return []string{ChartInvoiced, ChartPayments, ChartOutstanding, ChartCollectionRate}
}

// Render builds the dashboard body. Charts are only produced for a valid
// date selection.
func Render(m Metrics, f Filter) Dashboard {
	d := Dashboard{
		Metrics:                     m,
		TotalInvoicedTruncated:      int64(math.Floor(m.TotalInvoiced)),
		PaymentsReceivedTruncated:   int64(math.Floor(m.PaymentsReceived)),
		OutstandingBalanceTruncated: int64(math.Floor(m.OutstandingBalance)),
		CollectionRateFormatted:     strconv.FormatFloat(m.CollectionRate, 'f', 1, 64),
	}
	if !f.HasValidDateSelection() {
		return d
	}
	bar := func(label string, vs []TeamValue, color string, percent bool) chart.Config {
		labels, values := split(vs)
		if !percent {
			values = chart.Floor(values)
		}
		return chart.HorizontalBar(label, labels, values, color, percent)
	}
	d.Charts = []chart.Config{
		bar("Total Invoiced Amount", m.InvoicedByTeam, chart.ColorInvoiced, false),
		bar("Payments Received", m.PaymentsByTeam, chart.ColorPayments, false),
		bar("Outstanding Balance", m.OutstandingByTeam, chart.ColorOutstanding, false),
		bar("Collection Rate (%)", m.CollectionRateByTeam, chart.ColorCollection, true),
	}
	return d
}

func split(vs []TeamValue) ([]string, []float64) {
	labels := make([]string, len(vs))
	values := make([]float64, len(vs))
	for i, v := range vs {
		labels[i], values[i] = v.Label, v.Value
	}
	return labels, values
}

// TeamOptions lists the teams invoiced within the filter's period.
func TeamOptions(l Ledger, f Filter, now time.Time) ([]types.Option, error) {
	r, err := f.Date.Range(now)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var teams []string
	for _, inv := range l.Invoices {
		if inv.Team == "" || seen[inv.Team] || !r.Contains(inv.IssuedOn) {
			continue
		}
		seen[inv.Team] = true
		teams = append(teams, inv.Team)
	}
	sort.Strings(teams)
	return types.WithAll(teams), nil
}

// Row is one invoice in a drill-down modal.
type Row struct {
	InvoiceID             string    `json:"invoiceId"`
	InvoiceNumber         string    `json:"invoiceNumber"`
	InvoiceDate           time.Time `json:"invoiceDate"`
	TotalAmount           float64   `json:"totalAmount"`
	PaymentsReceivedTotal float64   `json:"paymentsReceivedTotal"`
	OutstandingBalance    float64   `json:"outstandingBalance"`
	Status                string    `json:"status"`
	Team                  string    `json:"teamMatter"`
	Matter                string    `json:"matter"`
	ResponsibleAttorney   string    `json:"responsibleAttorney,omitempty"`
	InvoiceURL            string    `json:"invoiceUrl"`
}

func rowOf(inv types.Invoice) Row {
	return Row{
		InvoiceID:             inv.ID,
		InvoiceNumber:         inv.Number,
		InvoiceDate:           inv.IssuedOn,
		TotalAmount:           inv.Total.Float(),
		PaymentsReceivedTotal: inv.Paid.Float(),
		OutstandingBalance:    inv.Balance().Float(),
		Status:                inv.Status,
		Team:                  inv.Team,
		Matter:                inv.Matter,
		ResponsibleAttorney:   inv.ResponsibleAttorney,
		InvoiceURL:            "/" + inv.ID,
	}
}

// Details lists the invoices behind a metric, newest first.
func Details(l Ledger, f Filter, metric Metric, now time.Time) ([]Row, error) {
	r, err := f.Date.Range(now)
	if err != nil {
		return nil, err
	}
	var rows []Row
	switch metric {
	case MetricTotalInvoiced, MetricOutstandingBalance:
		for _, inv := range l.Invoices {
			if !f.match(inv) || !r.Contains(inv.IssuedOn) {
				continue
			}
			if metric == MetricOutstandingBalance && inv.Balance().AmountCents <= 0 {
				continue
			}
			rows = append(rows, rowOf(inv))
		}
	case MetricPaymentsReceived:
		invoices := l.byID()
		seen := make(map[string]bool)
		for _, p := range l.Payments {
			inv, ok := invoices[p.InvoiceID]
			if p.CreditNote || !ok || seen[inv.ID] || !f.match(inv) || !r.Contains(p.ReceivedOn) {
				continue
			}
			seen[inv.ID] = true
			rows = append(rows, rowOf(inv))
		}
	default:
		return nil, fmt.Errorf("unknown metric type %q", metric)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].InvoiceDate.After(rows[j].InvoiceDate) })
	return rows, nil
}

// Field reads a sortable column from a row.
func Field(r Row, field string) any {
	switch field {
	case "invoiceNumber":
		return r.InvoiceNumber
	case "invoiceDate":
		return r.InvoiceDate
	case "totalAmount":
		return r.TotalAmount
	case "paymentsReceivedTotal":
		return r.PaymentsReceivedTotal
	case "outstandingBalance":
		return r.OutstandingBalance
	case "status":
		return r.Status
	case "teamMatter":
		return r.Team
	case "matter":
		return r.Matter
	}
	return nil
}

// NewPager pages rows 25 at a time.
func NewPager(rows []Row) *pager.Pager[Row] {
	p := pager.New[Row](PageSize, Field)
	p.SetRecords(rows)
	return p
}

// Table renders drill-down rows for export.
func Table(rows []Row) csvexport.Table {
	t := csvexport.Table{Headers: []string{
		"Invoice Number", "Date", "Total Amount", "Payments Received",
		"Outstanding Balance", "Status", "Team", "Matter",
	}}
	for _, r := range rows {
		t.AddRow(
			r.InvoiceNumber,
			r.InvoiceDate.Format(time.DateOnly),
			number(r.TotalAmount),
			number(r.PaymentsReceivedTotal),
			number(r.OutstandingBalance),
			r.Status,
			r.Team,
			r.Matter,
		)
	}
	return t
}

func number(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
