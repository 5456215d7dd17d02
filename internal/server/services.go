package server

import (
	"fmt"
	"time"

	"github.com/matthewbaird/intake/internal/availability"
	"github.com/matthewbaird/intake/internal/conflict"
	"github.com/matthewbaird/intake/internal/intake"
	"github.com/matthewbaird/intake/internal/invoicing"
	"github.com/matthewbaird/intake/internal/leads"
	"github.com/matthewbaird/intake/internal/progress"
	"github.com/matthewbaird/intake/internal/receivables"
	"github.com/matthewbaird/intake/internal/rules"
	"github.com/matthewbaird/intake/internal/store"
	"github.com/matthewbaird/intake/internal/taxonomy"
	"github.com/matthewbaird/intake/internal/timekeeping"
)

// Services are the domain services every surface shares.
type Services struct {
	Intake       *intake.Service
	Progress     *progress.Estimator
	Conflict     *conflict.Service
	Availability *availability.Service
	Leads        *leads.Service
	Receivables  *receivables.Service
	Invoices     *invoicing.Service
	Time         *timekeeping.Service
}

// NewServices compiles the embedded catalog, taxonomy and rules and binds the
// services to db. A nil now uses the wall clock.
func NewServices(db *store.Store, now func() time.Time) (*Services, error) {
	if now == nil {
		now = time.Now
	}
	catalog, err := intake.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("load intake catalog: %w", err)
	}
	tax, err := taxonomy.Load()
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}
	set, err := rules.Load()
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	est, err := progress.New(catalog, set)
	if err != nil {
		return nil, err
	}
	return &Services{
		Intake:       &intake.Service{Store: db, Catalog: catalog, Taxonomy: tax},
		Progress:     est,
		Conflict:     &conflict.Service{Directory: db, Leads: db, Location: time.Local, Now: now},
		Availability: &availability.Service{Users: db},
		Leads:        &leads.Service{Leads: db, Matters: db, Now: now},
		Receivables:  &receivables.Service{Invoices: db, Now: now},
		Invoices:     &invoicing.Service{Ledger: db, Now: now},
		Time:         &timekeeping.Service{Entries: db, Users: db, Ledger: db, Now: now},
	}, nil
}
