// Package seed loads demo data into a fresh database.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/matthewbaird/intake/internal/conflict"
	"github.com/matthewbaird/intake/internal/store"
	"github.com/matthewbaird/intake/internal/types"
)

// Stores is the storage Demo writes to. *store.Store satisfies it.
type Stores interface {
	GetUser(ctx context.Context, id string) (types.User, error)
	PutUser(ctx context.Context, u types.User) error
	PutLead(ctx context.Context, l types.Lead) error
	PutMatter(ctx context.Context, m types.Matter) error
	PutParty(ctx context.Context, p conflict.Party) error
	PutInvoice(ctx context.Context, inv types.Invoice) error
	PutPayment(ctx context.Context, p types.Payment) error
	PutTimeEntry(ctx context.Context, e types.TimeEntry) error
}

// Counts reports what Demo wrote.
type Counts struct {
	Users       int `json:"users"`
	Leads       int `json:"leads"`
	Matters     int `json:"matters"`
	Parties     int `json:"parties"`
	Invoices    int `json:"invoices"`
	Payments    int `json:"payments"`
	TimeEntries int `json:"time_entries"`
}

// Total is the number of records written.
func (c Counts) Total() int {
	return c.Users + c.Leads + c.Matters + c.Parties + c.Invoices + c.Payments + c.TimeEntries
}

// sentinel is the first demo user; its presence marks a seeded database.
const sentinel = "usr-demo-01"

// Demo seeds users, leads, matters, conflict parties, invoices, payments and
// time entries dated relative to now. A database that already holds the demo
// users is left alone and Demo returns zero Counts.
func Demo(ctx context.Context, s Stores, now time.Time) (Counts, error) {
	var c Counts
	_, err := s.GetUser(ctx, sentinel)
	switch {
	case err == nil:
		log.Printf("seed: demo data already present, skipping")
		return c, nil
	case !errors.Is(err, store.ErrNotFound):
		return c, fmt.Errorf("checking demo users: %w", err)
	}

	day := func(offset int) time.Time {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, offset)
	}
	ptr := func(t time.Time) *time.Time { return &t }

	users := []types.User{
		{ID: sentinel, FirstName: "Avery", LastName: "Stone", Email: "avery.stone@example.com", Team: "Litigation", PracticeArea: "Civil Law", Availability: types.AvailabilityGreen, Active: true, StartDate: ptr(day(-400)), AnnualTarget: 1600},
		{ID: "usr-demo-02", FirstName: "Jordan", LastName: "Reyes", Email: "jordan.reyes@example.com", Team: "Litigation", PracticeArea: "Civil Law", Availability: types.AvailabilityYellow, Active: true, StartDate: ptr(day(-120)), AnnualTarget: 1500},
		{ID: "usr-demo-03", FirstName: "Morgan", LastName: "Patel", Email: "morgan.patel@example.com", Team: "Estate Planning", PracticeArea: "Estate Planning", Availability: types.AvailabilityRed, Active: true},
		{ID: "usr-demo-04", FirstName: "Casey", LastName: "Nguyen", Email: "casey.nguyen@example.com", Team: "Intake", Active: true},
	}
	for _, u := range users {
		if err := s.PutUser(ctx, u); err != nil {
			return c, fmt.Errorf("seeding user %s: %w", u.ID, err)
		}
		c.Users++
	}

	leads := []types.Lead{
		{ID: "lead-demo-01", FirstName: "Riley", LastName: "Hart", Email: "riley.hart@example.com", Phone: "555-0101", Status: "Qualified", Source: "Google Ads", PracticeArea: "Civil Law", OfficeLocation: "Denver", TypeOfCivilLaw: "Litigation", OwnerName: "Casey Nguyen", IntakeAttorneyName: "Avery Stone", CreatedAt: day(-3), IntakeCompletedAt: ptr(day(-2)), FirstCall: true},
		{ID: "lead-demo-02", FirstName: "Quinn", LastName: "Ellis", Email: "quinn@ellis.example.com", Company: "Ellis Holdings", Status: "Closed - Converted", Source: "Referral", PracticeArea: "Civil Law", OfficeLocation: "Boulder", TypeOfCivilLaw: "Business", OwnerName: "Casey Nguyen", IntakeAttorneyName: "Jordan Reyes", CreatedAt: day(-20), IntakeCompletedAt: ptr(day(-19)), PostConsultDone: true, PostConsultCompletedAt: ptr(day(-15)), DateFASent: ptr(day(-14)), DateFASigned: ptr(day(-12)), DateFirstPayment: ptr(day(-10))},
		{ID: "lead-demo-03", FirstName: "Sam", LastName: "Okafor", Phone: "555-0103", Status: "New", Source: "Website", LandingPage: "/estate-planning", PracticeArea: "Estate Planning", OfficeLocation: "Denver", OwnerName: "Casey Nguyen", CreatedAt: day(-1), FirstCall: true},
		{ID: "lead-demo-04", FirstName: "Drew", LastName: "Larsen", Status: "Disqualified", Source: "Google Ads", PracticeArea: "Criminal Law", OfficeLocation: "Denver", OwnerName: "Casey Nguyen", CreatedAt: day(-8), DisqualifiedReason: "Out of area", NoShow: true},
	}
	for _, l := range leads {
		if err := s.PutLead(ctx, l); err != nil {
			return c, fmt.Errorf("seeding lead %s: %w", l.ID, err)
		}
		c.Leads++
	}

	matters := []types.Matter{
		{ID: "mat-demo-01", Name: "Ellis Holdings v. Marston", PracticeArea: "Civil Law", Stage: "Discovery", Status: "Open", ResponsibleAttorney: "Jordan Reyes"},
		{ID: "mat-demo-02", Name: "Hart Contract Dispute", PracticeArea: "Civil Law", Stage: "Pleadings", Status: "Pending", ResponsibleAttorney: "Avery Stone"},
		{ID: "mat-demo-03", Name: "Okafor Family Trust", PracticeArea: "Estate Planning", Stage: "Drafting", Status: "Open", ResponsibleAttorney: "Morgan Patel"},
		{ID: "mat-demo-04", Name: "Larsen Estate", PracticeArea: "Estate Planning", Stage: "Closed", Status: "Closed", ResponsibleAttorney: "Morgan Patel"},
	}
	for _, m := range matters {
		if err := s.PutMatter(ctx, m); err != nil {
			return c, fmt.Errorf("seeding matter %s: %w", m.ID, err)
		}
		c.Matters++
	}

	parties := []conflict.Party{
		{ID: "pty-demo-01", Type: "Contact", Name: "Dana Marston", Email: "dana@marston.example.com", Phone: "555-0199", Company: "Marston Supply"},
		{ID: "pty-demo-02", Type: "Account", Name: "Marston Supply", Company: "Marston Supply"},
		{ID: "pty-demo-03", Type: "Lead", Name: "Riley Hart", Email: "riley.hart@example.com", Phone: "555-0101"},
	}
	for _, p := range parties {
		if err := s.PutParty(ctx, p); err != nil {
			return c, fmt.Errorf("seeding party %s: %w", p.ID, err)
		}
		c.Parties++
	}

	invoices := []types.Invoice{
		{ID: "inv-demo-01", Number: "INV-1001", IssuedOn: day(-12), Status: "Sent", Team: "Litigation", Matter: "Ellis Holdings v. Marston", ResponsibleAttorney: "Jordan Reyes", Total: types.USD(450000), Paid: types.USD(150000)},
		{ID: "inv-demo-02", Number: "INV-1002", IssuedOn: day(-45), Status: "Overdue", Team: "Litigation", Matter: "Hart Contract Dispute", ResponsibleAttorney: "Avery Stone", Total: types.USD(220000)},
		{ID: "inv-demo-03", Number: "INV-1003", IssuedOn: day(-75), Status: "Overdue", Team: "Estate Planning", Matter: "Okafor Family Trust", ResponsibleAttorney: "Morgan Patel", Total: types.USD(180000), Paid: types.USD(30000)},
		{ID: "inv-demo-04", Number: "INV-1004", IssuedOn: day(-130), Status: "Overdue", Team: "Estate Planning", Matter: "Larsen Estate", ResponsibleAttorney: "Morgan Patel", Total: types.USD(95000)},
		{ID: "inv-demo-05", Number: "INV-1005", IssuedOn: day(-30), Status: "Paid", Team: "Litigation", Matter: "Ellis Holdings v. Marston", ResponsibleAttorney: "Jordan Reyes", Total: types.USD(300000), Paid: types.USD(300000)},
	}
	for _, inv := range invoices {
		if err := s.PutInvoice(ctx, inv); err != nil {
			return c, fmt.Errorf("seeding invoice %s: %w", inv.ID, err)
		}
		c.Invoices++
	}

	payments := []types.Payment{
		{ID: "pay-demo-01", InvoiceID: "inv-demo-01", ReceivedOn: day(-5), Method: "ACH", Reference: "ACH-7781", Amount: types.USD(150000)},
		{ID: "pay-demo-02", InvoiceID: "inv-demo-03", ReceivedOn: day(-40), Method: "Check", Reference: "CHK-2203", Amount: types.USD(30000)},
		{ID: "pay-demo-03", InvoiceID: "inv-demo-05", ReceivedOn: day(-20), Method: "Card", Amount: types.USD(250000)},
		{ID: "pay-demo-04", InvoiceID: "inv-demo-05", ReceivedOn: day(-18), Method: "Credit", Reference: "CN-15", Amount: types.USD(50000), CreditNote: true},
	}
	for _, p := range payments {
		if err := s.PutPayment(ctx, p); err != nil {
			return c, fmt.Errorf("seeding payment %s: %w", p.ID, err)
		}
		c.Payments++
	}

	for i := range 20 {
		u := users[i%3]
		e := types.TimeEntry{
			ID:                  fmt.Sprintf("te-demo-%02d", i+1),
			UserID:              u.ID,
			UserName:            u.Name(),
			Team:                u.Team,
			Date:                day(-i),
			Matter:              matters[i%len(matters)].Name,
			ResponsibleAttorney: matters[i%len(matters)].ResponsibleAttorney,
			Note:                "Research and drafting",
			Hours:               float64(1 + i%4),
			Rate:                types.USD(int64(25000 + 5000*(i%3))),
			Billable:            i%5 != 0,
		}
		if err := s.PutTimeEntry(ctx, e); err != nil {
			return c, fmt.Errorf("seeding time entry %s: %w", e.ID, err)
		}
		c.TimeEntries++
	}

	log.Printf("seed: wrote %d demo records", c.Total())
	return c, nil
}
