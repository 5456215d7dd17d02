package invoicing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/intake/internal/types"
)

type ledgerStore struct {
	ledger Ledger
	err    error
}

func (s ledgerStore) Ledger(context.Context) (Ledger, error) { return s.ledger, s.err }

func TestServicePayments(t *testing.T) {
	l := Ledger{
		Invoices: []types.Invoice{
			{ID: "i1", Number: "INV-1", IssuedOn: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Total: types.USD(10000)},
			{ID: "i2", Number: "INV-2", IssuedOn: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), Total: types.USD(5000)},
		},
		Payments: []types.Payment{
			{ID: "p1", InvoiceID: "i1", ReceivedOn: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), Amount: types.USD(4000)},
		},
	}
	svc := &Service{Ledger: ledgerStore{ledger: l}}
	ctx := context.Background()

	d, err := svc.Payments(ctx, "i1")
	require.NoError(t, err)
	assert.Len(t, d.Rows, 1)

	d, err = svc.Payments(ctx, "i2")
	require.NoError(t, err)
	assert.NotNil(t, d.Rows)
	assert.Empty(t, d.Rows)

	_, err = svc.Payments(ctx, "missing")
	assert.ErrorIs(t, err, ErrUnknownInvoice)
}

func TestServiceWrapsLedgerError(t *testing.T) {
	boom := errors.New("boom")
	svc := &Service{Ledger: ledgerStore{err: boom}}
	_, err := svc.Dashboard(context.Background(), NewFilter())
	require.ErrorIs(t, err, boom)
	_, err = svc.CollectionRate(context.Background(), NewFilter())
	require.ErrorIs(t, err, boom)
}
