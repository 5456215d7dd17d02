package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/intake/internal/store"
	"github.com/matthewbaird/intake/internal/taxonomy"
)

func newService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()
	c := MustLoadCatalog()
	db, err := store.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(ctx, c.Columns()))
	return &Service{Store: db, Catalog: c, Taxonomy: taxonomy.MustLoad()}
}

func TestServiceSaveRejectsInvalid(t *testing.T) {
	s := newService(t)
	r := NewRecord()
	r.Set(FieldLead, Text("lead-1"))

	_, err := s.Save(context.Background(), "", r)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{MsgTypeOfLaw}, verr.Messages)

	rows, err := s.List(context.Background(), "lead-1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestServiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	r := NewRecord()
	r.Set(FieldName, Text("Intake 1"))
	r.Set(FieldLead, Text("lead-1"))
	r.Set(FieldTypeOfLaw, Text("Criminal"))
	r.Set(FieldLegalMatterType, List("Criminal Law"))
	r.Set("CL_Charges_Allegations__c", Text("Speeding"))
	r.Set(FieldIssueDescription, Text("Ticket"))

	saved, err := s.Save(ctx, "", r)
	require.NoError(t, err)
	assert.True(t, saved.Created)
	assert.Equal(t, MsgSaved, saved.Message)

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Speeding", got.Text("CL_Charges_Allegations__c"))
	assert.Equal(t, []string{"Criminal Law"}, got.List(FieldLegalMatterType))

	got.Set(FieldDesiredOutcome, Text("Dismissal"))
	again, err := s.Save(ctx, saved.ID, got)
	require.NoError(t, err)
	assert.False(t, again.Created)

	rows, err := s.List(ctx, "lead-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Intake 1", rows[0].Name)
	assert.Equal(t, "Criminal Law", rows[0].MatterTypes)

	sum, err := s.Summary(ctx, "lead-1", "Jane Doe")
	require.NoError(t, err)
	crim, ok := section(sum, "Criminal Law Details")
	require.True(t, ok, "charges come from the details blob")
	assert.Equal(t, []SummaryItem{{Label: "Charges/Allegations", Value: "Speeding"}}, crim.Items)
	gen, ok := section(sum, "General Information")
	require.True(t, ok)
	assert.Equal(t, []SummaryItem{
		{Label: "Issue Description", Value: "Ticket"},
		{Label: "Desired Outcome", Value: "Dismissal"},
	}, gen.Items)
}

func TestServiceSummaryWithoutIntake(t *testing.T) {
	s := newService(t)
	sum, err := s.Summary(context.Background(), "nobody", "No One")
	require.NoError(t, err)
	assert.False(t, sum.HasData())
}
