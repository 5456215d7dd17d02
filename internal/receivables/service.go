package receivables

import (
	"context"
	"fmt"
	"time"

	"github.com/matthewbaird/intake/internal/types"
)

// InvoiceStore lists invoices.
type InvoiceStore interface {
	ListInvoices(ctx context.Context) ([]types.Invoice, error)
}

// Service serves the aging dashboard from the invoice store.
type Service struct {
	Invoices InvoiceStore
	Now      func() time.Time
}

// Dashboard is the tile row plus the team picker valid for its as-of date.
type Dashboard struct {
	Summary
	Teams []types.Option `json:"team_options"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// DefaultFilter is today across all teams.
func (s *Service) DefaultFilter() Filter { return NewFilter(s.now()) }

// Dashboard totals the open invoices for f.
func (s *Service) Dashboard(ctx context.Context, f Filter) (Dashboard, error) {
	invs, err := s.Invoices.ListInvoices(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list invoices: %w", err)
	}
	return Dashboard{Summary: Summarize(invs, f), Teams: TeamOptions(invs, f.AsOf)}, nil
}

// Details lists the invoices of one bucket.
func (s *Service) Details(ctx context.Context, f Filter, b Bucket) ([]Row, error) {
	invs, err := s.Invoices.ListInvoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return Details(invs, f, b), nil
}
