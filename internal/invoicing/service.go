package invoicing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matthewbaird/intake/internal/types"
)

// ErrUnknownInvoice is returned for a payment lookup on a missing invoice.
var ErrUnknownInvoice = errors.New("invoicing: invoice not found")

// LedgerStore loads the invoices and payments.
type LedgerStore interface {
	Ledger(ctx context.Context) (Ledger, error)
}

// Service serves the invoice dashboard from the ledger.
type Service struct {
	Ledger LedgerStore
	Now    func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// View is the rendered dashboard plus the team picker for its period.
type View struct {
	Dashboard
	Filter Filter         `json:"filter"`
	Teams  []types.Option `json:"team_options"`
	Cards  []Card         `json:"cards"`
}

func (s *Service) ledger(ctx context.Context) (Ledger, error) {
	l, err := s.Ledger.Ledger(ctx)
	if err != nil {
		return Ledger{}, fmt.Errorf("load ledger: %w", err)
	}
	return l, nil
}

// Dashboard computes the tiles and charts for f. An incomplete custom range
// yields the tiles for the default preset and no charts.
func (s *Service) Dashboard(ctx context.Context, f Filter) (View, error) {
	l, err := s.ledger(ctx)
	if err != nil {
		return View{}, err
	}
	now := s.now()
	m, err := Compute(l, f, now)
	if err != nil {
		return View{}, err
	}
	teams, err := TeamOptions(l, f, now)
	if err != nil {
		return View{}, err
	}
	return View{Dashboard: Render(m, f), Filter: f, Teams: teams, Cards: Cards()}, nil
}

// Details lists the invoices behind a metric card.
func (s *Service) Details(ctx context.Context, f Filter, metric Metric) ([]Row, error) {
	l, err := s.ledger(ctx)
	if err != nil {
		return nil, err
	}
	return Details(l, f, metric, s.now())
}

// CollectionRate is the filter's payments over invoiced amount, as a
// percentage.
func (s *Service) CollectionRate(ctx context.Context, f Filter) (float64, error) {
	l, err := s.ledger(ctx)
	if err != nil {
		return 0, err
	}
	return CollectionRate(l, f, s.now())
}

// Payments lists what was applied to one invoice.
func (s *Service) Payments(ctx context.Context, invoiceID string) (PaymentDetails, error) {
	l, err := s.ledger(ctx)
	if err != nil {
		return PaymentDetails{}, err
	}
	inv, ok := l.byID()[invoiceID]
	if !ok {
		return PaymentDetails{}, fmt.Errorf("%w: %s", ErrUnknownInvoice, invoiceID)
	}
	d := Payments(l, inv)
	if d.Rows == nil {
		d.Rows = []PaymentRow{}
	}
	return d, nil
}
