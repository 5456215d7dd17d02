package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/intake/internal/conflict"
	"github.com/matthewbaird/intake/internal/types"
)

func newTestStore(t *testing.T, intakeColumns ...string) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(ctx, intakeColumns))
	return s
}

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "")
	require.Error(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t, "Name")
	require.NoError(t, s.Migrate(context.Background(), []string{"Name"}))
}

func TestLeadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	completed := time.Date(2024, 5, 3, 14, 30, 0, 0, time.UTC)
	in := types.Lead{
		ID:                "L1",
		FirstName:         "Ada",
		LastName:          "Lovelace",
		Email:             "ada@example.com",
		Status:            "Qualified",
		CreatedAt:         date(2024, 5, 1),
		IntakeCompletedAt: &completed,
		FirstCall:         true,
	}
	require.NoError(t, s.PutLead(ctx, in))

	got, err := s.GetLead(ctx, "L1")
	require.NoError(t, err)
	assert.Equal(t, in, got)

	in.Status = "Closed - Converted"
	require.NoError(t, s.PutLead(ctx, in))
	got, err = s.GetLead(ctx, "L1")
	require.NoError(t, err)
	assert.Equal(t, "Closed - Converted", got.Status)

	_, err = s.GetLead(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListLeadsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.PutLead(ctx, types.Lead{ID: "old", CreatedAt: date(2024, 1, 1)}))
	require.NoError(t, s.PutLead(ctx, types.Lead{ID: "new", CreatedAt: date(2024, 6, 1)}))

	leads, err := s.ListLeads(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "new", leads[0].ID)
	assert.Equal(t, "old", leads[1].ID)
}

func TestSearchLeadsMatchesEveryToken(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for _, l := range []types.Lead{
		{ID: "1", FirstName: "Maria", LastName: "Garcia", CreatedAt: date(2024, 1, 1)},
		{ID: "2", FirstName: "Mario", LastName: "Rossi", CreatedAt: date(2024, 1, 2)},
		{ID: "3", FirstName: "Ann", LastName: "Lee", Email: "garcia.fan@example.com", CreatedAt: date(2024, 1, 3)},
	} {
		require.NoError(t, s.PutLead(ctx, l))
	}

	got, err := s.SearchLeads(ctx, "mari", 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.SearchLeads(ctx, "maria GARCIA", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)

	got, err = s.SearchLeads(ctx, "garcia", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.SearchLeads(ctx, "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveConflictHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.PutLead(ctx, types.Lead{ID: "L1", CreatedAt: date(2024, 1, 1)}))

	require.NoError(t, s.SaveConflictHistory(ctx, "L1", `[{"id":"c1"}]`))
	l, err := s.GetLead(ctx, "L1")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"c1"}]`, l.ConflictHistory)

	assert.ErrorIs(t, s.SaveConflictHistory(ctx, "nope", "x"), ErrNotFound)
}

func TestPartiesIncludeLeads(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.PutLead(ctx, types.Lead{ID: "L1", FirstName: "Ada", LastName: "King", CreatedAt: date(2024, 1, 1)}))
	require.NoError(t, s.PutParty(ctx, conflict.Party{ID: "P1", Type: "Opposing Party", Name: "Acme Corp"}))

	parties, err := s.Parties(ctx)
	require.NoError(t, err)
	assert.Equal(t, []conflict.Party{
		{ID: "L1", Type: "Lead", Name: "Ada King"},
		{ID: "P1", Type: "Opposing Party", Name: "Acme Corp"},
	}, parties)
}

func TestUsersAndAvailability(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	start := date(2024, 1, 1)
	require.NoError(t, s.PutUser(ctx, types.User{
		ID: "U1", FirstName: "Grace", LastName: "Hopper", Active: true,
		StartDate: &start, AnnualTarget: 1800,
	}))
	require.NoError(t, s.PutUser(ctx, types.User{ID: "U2", FirstName: "Alan", LastName: "Turing"}))

	require.NoError(t, s.SetAvailability(ctx, "U1", types.AvailabilityYellow))
	u, err := s.GetUser(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, types.AvailabilityYellow, u.Availability)
	assert.True(t, u.HasGoal())
	assert.True(t, u.Active)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "U1", users[0].ID)
	assert.False(t, users[1].Active)

	assert.ErrorIs(t, s.SetAvailability(ctx, "nobody", types.AvailabilityRed), ErrNotFound)
	_, err = s.GetUser(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedger(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	inv := types.Invoice{
		ID: "I1", Number: "INV-1", IssuedOn: date(2024, 4, 1), Status: "Open",
		Team: "Family", Matter: "Smith", Total: types.USD(150000), Paid: types.USD(50000),
	}
	require.NoError(t, s.PutInvoice(ctx, inv))
	require.NoError(t, s.PutPayment(ctx, types.Payment{
		ID: "P1", InvoiceID: "I1", ReceivedOn: date(2024, 4, 10), Method: "Check", Amount: types.USD(50000),
	}))

	l, err := s.Ledger(ctx)
	require.NoError(t, err)
	require.Len(t, l.Invoices, 1)
	assert.Equal(t, inv, l.Invoices[0])
	require.Len(t, l.Payments, 1)
	assert.Equal(t, types.USD(50000), l.Payments[0].Amount)
	assert.Equal(t, date(2024, 4, 10), l.Payments[0].ReceivedOn)
}

func TestPaymentRequiresInvoice(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	err := s.PutPayment(ctx, types.Payment{ID: "P1", InvoiceID: "missing", ReceivedOn: date(2024, 1, 1)})
	assert.Error(t, err)
}

func TestTimeEntries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	e := types.TimeEntry{
		ID: "T1", UserID: "U1", UserName: "Grace Hopper", Date: date(2024, 5, 2),
		Matter: "Smith", Hours: 1.5, Rate: types.USD(30000), Billable: true,
	}
	require.NoError(t, s.PutTimeEntry(ctx, e))
	require.NoError(t, s.PutTimeEntry(ctx, types.TimeEntry{ID: "T0", Date: date(2024, 5, 1), Rate: types.USD(0)}))

	got, err := s.ListTimeEntries(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, e, got[0])
}

func TestMatters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.PutMatter(ctx, types.Matter{ID: "M2", Name: "Zed", Status: "Open"}))
	require.NoError(t, s.PutMatter(ctx, types.Matter{ID: "M1", Name: "Abel", Status: "Closed"}))

	got, err := s.ListMatters(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Abel", got[0].Name)
}

func TestIntakeColumns(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "Name", "Lead__c")

	fields, err := s.IntakeFields(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"Name": true, "Lead__c": true}, fields)

	require.NoError(t, s.Migrate(ctx, []string{"Name", "Lead__c", "Intake_Details_JSON__c", "bad name"}))
	fields, err = s.IntakeFields(ctx)
	require.NoError(t, err)
	assert.True(t, fields["Intake_Details_JSON__c"])
	assert.False(t, fields["bad name"])
}

func TestIntakeSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "Name", "Lead__c", "Intake_Details_JSON__c")

	id, created, err := s.SaveIntake(ctx, "", map[string]string{"Name": "First", "Lead__c": "L1"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, id)

	row, err := s.GetIntake(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Name": "First", "Lead__c": "L1", "Intake_Details_JSON__c": ""}, row.Columns)

	again, created, err := s.SaveIntake(ctx, id, map[string]string{"Intake_Details_JSON__c": `{"Pets__c":"2"}`})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, again)

	row, err = s.GetIntake(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "First", row.Columns["Name"])
	assert.Equal(t, `{"Pets__c":"2"}`, row.Columns["Intake_Details_JSON__c"])

	_, _, err = s.SaveIntake(ctx, id, map[string]string{"Unknown__c": "x"})
	assert.Error(t, err)
	_, _, err = s.SaveIntake(ctx, "missing", map[string]string{"Name": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetIntake(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListIntakesByLead(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "Name", "Lead__c")
	_, _, err := s.SaveIntake(ctx, "", map[string]string{"Name": "A", "Lead__c": "L1"})
	require.NoError(t, err)
	_, _, err = s.SaveIntake(ctx, "", map[string]string{"Name": "B", "Lead__c": "L2"})
	require.NoError(t, err)

	all, err := s.ListIntakes(ctx, "Lead__c", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := s.ListIntakes(ctx, "Lead__c", "L2")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "B", one[0].Columns["Name"])

	none, err := s.ListIntakes(ctx, "Lead__c", "L9")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestIsConstraint(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	err := s.PutPayment(ctx, types.Payment{ID: "P1", InvoiceID: "missing", ReceivedOn: date(2024, 1, 1)})
	require.Error(t, err)
	assert.True(t, IsConstraint(err))
	assert.False(t, IsConstraint(ErrNotFound))
}
