package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/matthewbaird/intake/internal/invoicing"
	"github.com/matthewbaird/intake/internal/types"
)

var invoiceColumns = []string{
	"id", "number", "issued_on", "status", "team", "matter",
	"responsible_attorney", "currency", "total_cents", "paid_cents",
}

// PutInvoice inserts or replaces an invoice. Total and Paid share the
// total's currency.
func (s *Store) PutInvoice(ctx context.Context, inv types.Invoice) error {
	return s.upsert(ctx, "invoices", invoiceColumns,
		inv.ID, inv.Number, encodeTime(inv.IssuedOn), inv.Status, inv.Team, inv.Matter,
		inv.ResponsibleAttorney, currencyOf(inv.Total), inv.Total.AmountCents, inv.Paid.AmountCents)
}

// ListInvoices returns every invoice, newest first.
func (s *Store) ListInvoices(ctx context.Context) ([]types.Invoice, error) {
	sel := s.builder().Select(invoiceColumns...).From(s.builder().Table("invoices")).
		OrderBy(entsql.Desc("issued_on"), "number")
	var out []types.Invoice
	err := s.query(ctx, sel, func(rows *sql.Rows) error {
		var (
			inv      types.Invoice
			issued   string
			currency string
		)
		if err := rows.Scan(&inv.ID, &inv.Number, &issued, &inv.Status, &inv.Team, &inv.Matter,
			&inv.ResponsibleAttorney, &currency, &inv.Total.AmountCents, &inv.Paid.AmountCents); err != nil {
			return err
		}
		inv.IssuedOn = decodeTime(issued)
		inv.Total.Currency = currency
		inv.Paid.Currency = currency
		out = append(out, inv)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return out, nil
}

var paymentColumns = []string{
	"id", "invoice_id", "received_on", "method", "reference", "currency", "amount_cents", "credit_note",
}

// PutPayment inserts or replaces a payment. The invoice must exist.
func (s *Store) PutPayment(ctx context.Context, p types.Payment) error {
	return s.upsert(ctx, "payments", paymentColumns,
		p.ID, p.InvoiceID, encodeTime(p.ReceivedOn), p.Method, p.Reference,
		currencyOf(p.Amount), p.Amount.AmountCents, p.CreditNote)
}

// ListPayments returns every payment in the order received.
func (s *Store) ListPayments(ctx context.Context) ([]types.Payment, error) {
	sel := s.builder().Select(paymentColumns...).From(s.builder().Table("payments")).
		OrderBy("received_on", "id")
	var out []types.Payment
	err := s.query(ctx, sel, func(rows *sql.Rows) error {
		var (
			p        types.Payment
			received string
		)
		if err := rows.Scan(&p.ID, &p.InvoiceID, &received, &p.Method, &p.Reference,
			&p.Amount.Currency, &p.Amount.AmountCents, &p.CreditNote); err != nil {
			return err
		}
		p.ReceivedOn = decodeTime(received)
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return out, nil
}

// Ledger loads the invoices and payments the invoice dashboard reads.
func (s *Store) Ledger(ctx context.Context) (invoicing.Ledger, error) {
	invoices, err := s.ListInvoices(ctx)
	if err != nil {
		return invoicing.Ledger{}, err
	}
	payments, err := s.ListPayments(ctx)
	if err != nil {
		return invoicing.Ledger{}, err
	}
	return invoicing.Ledger{Invoices: invoices, Payments: payments}, nil
}

var timeEntryColumns = []string{
	"id", "user_id", "user_name", "team", "date", "matter", "responsible_attorney",
	"note", "hours", "currency", "rate_cents", "billable",
}

// PutTimeEntry inserts or replaces a time entry.
func (s *Store) PutTimeEntry(ctx context.Context, e types.TimeEntry) error {
	return s.upsert(ctx, "time_entries", timeEntryColumns,
		e.ID, e.UserID, e.UserName, e.Team, encodeTime(e.Date), e.Matter, e.ResponsibleAttorney,
		e.Note, e.Hours, currencyOf(e.Rate), e.Rate.AmountCents, e.Billable)
}

// ListTimeEntries returns every time entry, newest first.
func (s *Store) ListTimeEntries(ctx context.Context) ([]types.TimeEntry, error) {
	sel := s.builder().Select(timeEntryColumns...).From(s.builder().Table("time_entries")).
		OrderBy(entsql.Desc("date"), "id")
	var out []types.TimeEntry
	err := s.query(ctx, sel, func(rows *sql.Rows) error {
		var (
			e    types.TimeEntry
			date string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserName, &e.Team, &date, &e.Matter, &e.ResponsibleAttorney,
			&e.Note, &e.Hours, &e.Rate.Currency, &e.Rate.AmountCents, &e.Billable); err != nil {
			return err
		}
		e.Date = decodeTime(date)
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list time entries: %w", err)
	}
	return out, nil
}

func currencyOf(m types.Money) string {
	if m.Currency == "" {
		return "USD"
	}
	return m.Currency
}
