// Package receivables computes the accounts-receivable aging dashboard:
// open balances bucketed by days outstanding as of a chosen date.
package receivables

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/matthewbaird/intake/internal/csvexport"
	"github.com/matthewbaird/intake/internal/pager"
	"github.com/matthewbaird/intake/internal/types"
)

// PageSize is the invoice modal page size.
const PageSize = 25

// Bucket is an aging band. The bands are disjoint: "60" holds 31-60 days.
type Bucket string

const (
	Bucket30     Bucket = "30"
	Bucket60     Bucket = "60"
	Bucket90     Bucket = "90"
	Bucket91Plus Bucket = "91+"
)

// Buckets lists the bands in display order.
func Buckets() []Bucket { return []Bucket{Bucket30, Bucket60, Bucket90, Bucket91Plus} }

var titles = map[Bucket]string{
	Bucket30:     "0-30 Days Outstanding",
	Bucket60:     "0-60 Days Outstanding",
	Bucket90:     "0-90 Days Outstanding",
	Bucket91Plus: "91+ Days Outstanding",
}

// Title is the modal title for b.
func (b Bucket) Title() string { return titles[b] }

// ParseBucket validates a bucket code.
func ParseBucket(s string) (Bucket, error) {
	b := Bucket(s)
	if _, ok := titles[b]; !ok {
		return "", fmt.Errorf("unknown aging bucket %q", s)
	}
	return b, nil
}

// BucketFor places a day count.
func BucketFor(days int) Bucket {
	switch {
	case days <= 30:
		return Bucket30
	case days <= 60:
		return Bucket60
	case days <= 90:
		return Bucket90
	}
	return Bucket91Plus
}

// Filter is the aging dashboard's filter bar.
type Filter struct {
	AsOf time.Time `json:"as_of"`
	Team string    `json:"team"`
}

// NewFilter starts as of today across all teams.
func NewFilter(now time.Time) Filter {
	y, m, d := now.Date()
	return Filter{AsOf: time.Date(y, m, d, 0, 0, 0, 0, now.Location()), Team: types.AllOption}
}

// open reports whether inv carries a balance on the as-of date.
func (f Filter) open(inv types.Invoice) bool {
	if inv.Balance().AmountCents <= 0 {
		return false
	}
	asOf := f.AsOf
	return !dateOf(inv.IssuedOn, asOf.Location()).After(asOf)
}

func (f Filter) matchTeam(inv types.Invoice) bool {
	return f.Team == "" || f.Team == types.AllOption || inv.Team == f.Team
}

// Row is one invoice in a bucket's modal.
type Row struct {
	InvoiceID       string    `json:"invoice_id"`
	InvoiceNumber   string    `json:"invoice_number"`
	InvoiceDate     time.Time `json:"invoice_date"`
	Status          string    `json:"status"`
	Team            string    `json:"team"`
	Matter          string    `json:"matter"`
	DaysOutstanding int       `json:"days_outstanding"`
	Balance         float64   `json:"balance"`
	InvoiceURL      string    `json:"invoice_url"`
}

// InvoiceURL links to an invoice record.
func InvoiceURL(id string) string { return "/" + id }

// Totals are the bucket balances, in dollars.
type Totals struct {
	Days30     float64 `json:"aging30Days"`
	Days60     float64 `json:"aging60Days"`
	Days90     float64 `json:"aging90Days"`
	Days91Plus float64 `json:"aging91PlusDays"`
}

// Of returns the balance of one bucket.
func (t Totals) Of(b Bucket) float64 {
	switch b {
	case Bucket30:
		return t.Days30
	case Bucket60:
		return t.Days60
	case Bucket90:
		return t.Days90
	}
	return t.Days91Plus
}

func (t *Totals) add(b Bucket, v float64) {
	switch b {
	case Bucket30:
		t.Days30 += v
	case Bucket60:
		t.Days60 += v
	case Bucket90:
		t.Days90 += v
	default:
		t.Days91Plus += v
	}
}

// Tile is a bucket as shown on the dashboard.
type Tile struct {
	Bucket    Bucket  `json:"bucket"`
	Title     string  `json:"title"`
	Amount    float64 `json:"amount"`
	Truncated int64   `json:"truncated"`
	Formatted string  `json:"formatted"`
	Count     int     `json:"count"`
}

// Summary is the dashboard body.
type Summary struct {
	AsOf   string `json:"as_of"`
	Team   string `json:"team"`
	Totals Totals `json:"totals"`
	Tiles  []Tile `json:"tiles"`
}

// Rows projects the open invoices as of f, placing each in its bucket.
func Rows(invoices []types.Invoice, f Filter) []Row {
	var rows []Row
	for _, inv := range invoices {
		if !f.open(inv) || !f.matchTeam(inv) {
			continue
		}
		rows = append(rows, Row{
			InvoiceID:       inv.ID,
			InvoiceNumber:   inv.Number,
			InvoiceDate:     inv.IssuedOn,
			Status:          inv.Status,
			Team:            inv.Team,
			Matter:          inv.Matter,
			DaysOutstanding: inv.DaysOutstanding(f.AsOf),
			Balance:         inv.Balance().Float(),
			InvoiceURL:      InvoiceURL(inv.ID),
		})
	}
	return rows
}

// Summarize totals open balances per bucket.
func Summarize(invoices []types.Invoice, f Filter) Summary {
	var totals Totals
	counts := make(map[Bucket]int)
	for _, r := range Rows(invoices, f) {
		b := BucketFor(r.DaysOutstanding)
		totals.add(b, r.Balance)
		counts[b]++
	}
	s := Summary{AsOf: f.AsOf.Format(time.DateOnly), Team: f.Team, Totals: totals}
	for _, b := range Buckets() {
		v := totals.Of(b)
		s.Tiles = append(s.Tiles, Tile{
			Bucket:    b,
			Title:     b.Title(),
			Amount:    v,
			Truncated: int64(math.Floor(v)),
			Formatted: FormatCurrency(v),
			Count:     counts[b],
		})
	}
	return s
}

// Details lists the bucket's invoices, oldest first.
func Details(invoices []types.Invoice, f Filter, b Bucket) []Row {
	var out []Row
	for _, r := range Rows(invoices, f) {
		if BucketFor(r.DaysOutstanding) == b {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysOutstanding > out[j].DaysOutstanding })
	return out
}

// TeamOptions lists teams that have open invoices as of asOf.
func TeamOptions(invoices []types.Invoice, asOf time.Time) []types.Option {
	f := Filter{AsOf: asOf}
	seen := make(map[string]bool)
	var teams []string
	for _, inv := range invoices {
		if inv.Team == "" || seen[inv.Team] || !f.open(inv) {
			continue
		}
		seen[inv.Team] = true
		teams = append(teams, inv.Team)
	}
	sort.Strings(teams)
	return types.WithAll(teams)
}

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders whole dollars, truncating cents: "$1,234".
// NaN and infinities render as "$0".
func FormatCurrency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "$0"
	}
	n := int64(math.Floor(amount))
	if n < 0 {
		return printer.Sprintf("-$%d", -n)
	}
	return printer.Sprintf("$%d", n)
}

// Field reads a sortable column from a row.
func Field(r Row, field string) any {
	switch field {
	case "invoiceNumber":
		return r.InvoiceNumber
	case "invoiceDate":
		return r.InvoiceDate
	case "status":
		return r.Status
	case "teamMatter":
		return r.Team
	case "matter":
		return r.Matter
	case "daysOutstanding":
		return r.DaysOutstanding
	case "balance":
		return r.Balance
	}
	return nil
}

// NewPager pages rows 25 at a time.
func NewPager(rows []Row) *pager.Pager[Row] {
	p := pager.New[Row](PageSize, Field)
	p.SetRecords(rows)
	return p
}

// Table renders rows for export.
func Table(rows []Row) csvexport.Table {
	t := csvexport.Table{Headers: []string{"Invoice Number", "Date", "Status", "Team", "Matter", "Days Outstanding", "Balance"}}
	for _, r := range rows {
		t.AddRow(
			r.InvoiceNumber,
			r.InvoiceDate.Format(time.DateOnly),
			r.Status,
			r.Team,
			r.Matter,
			strconv.Itoa(r.DaysOutstanding),
			strconv.FormatFloat(r.Balance, 'f', -1, 64),
		)
	}
	return t
}

func dateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
