package receivables

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/intake/internal/types"
)

type invoiceStore struct {
	invoices []types.Invoice
	err      error
}

func (s invoiceStore) ListInvoices(context.Context) ([]types.Invoice, error) { return s.invoices, s.err }

func TestServiceDefaultFilterIsToday(t *testing.T) {
	svc := &Service{Now: func() time.Time { return time.Date(2024, 5, 15, 17, 45, 0, 0, time.UTC) }}
	f := svc.DefaultFilter()
	assert.Equal(t, asOf, f.AsOf)
	assert.Equal(t, types.AllOption, f.Team)
}

func TestServiceDetailsMatchesBucket(t *testing.T) {
	svc := &Service{Invoices: invoiceStore{invoices: invoices()}}
	f := NewFilter(asOf)
	for _, b := range Buckets() {
		rows, err := svc.Details(context.Background(), f, b)
		require.NoError(t, err)
		for _, r := range rows {
			assert.Equal(t, b, BucketFor(r.DaysOutstanding), "invoice %s", r.InvoiceNumber)
		}
	}
}

func TestServiceDashboardWrapsStoreError(t *testing.T) {
	boom := errors.New("boom")
	svc := &Service{Invoices: invoiceStore{err: boom}}
	_, err := svc.Dashboard(context.Background(), NewFilter(asOf))
	require.ErrorIs(t, err, boom)
	_, err = svc.Details(context.Background(), NewFilter(asOf), Bucket30)
	require.ErrorIs(t, err, boom)
}
