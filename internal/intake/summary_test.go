package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/intake/internal/types"
)

func record(kv ...string) *Record {
	r := NewRecord()
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i], Text(kv[i+1]))
	}
	return r
}

func section(s Summary, title string) (SummarySection, bool) {
	for _, sec := range s.Sections {
		if sec.Title == title {
			return sec, true
		}
	}
	return SummarySection{}, false
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize("Jane Doe", nil, nil)
	assert.False(t, s.HasData())
	assert.Equal(t, "Jane Doe", s.LeadName)
}

func TestSummarizeFallsBackToAdditional(t *testing.T) {
	form := record(FieldIssueDescription, "Unpaid wages")
	extra := record(FieldDesiredOutcome, "Back pay", "Preferred_Pronouns__c", "she/her")

	s := Summarize("Jane Doe", form, extra)
	sec, ok := section(s, "General Information")
	require.True(t, ok)
	want := []SummaryItem{
		{Label: "Issue Description", Value: "Unpaid wages"},
		{Label: "Desired Outcome", Value: "Back pay"},
	}
	if diff := cmp.Diff(want, sec.Items); diff != "" {
		t.Errorf("general items mismatch (-want +got):\n%s", diff)
	}

	// Pronouns only come from the lead form.
	_, ok = section(s, "Contact & Communication Preferences")
	assert.False(t, ok)
}

func TestSummarizeOfficePreferences(t *testing.T) {
	s := Summarize("x", record(FieldRequireAccommodat, "No"), nil)
	_, ok := section(s, "Office Preferences")
	assert.False(t, ok, "a plain No does not show the section")

	s = Summarize("x", record(FieldRequireAccommodat, "Yes"), nil)
	sec, ok := section(s, "Office Preferences")
	require.True(t, ok)
	assert.True(t, sec.WebOnly)
	assert.Equal(t, []SummaryItem{{Label: "Accommodations Needed", Value: "Yes"}}, sec.Items)

	s = Summarize("x", record(FieldRequireAccommodat, "Yes", FieldAccommodations, "Wheelchair access"), nil)
	sec, _ = section(s, "Office Preferences")
	assert.Equal(t, "Wheelchair access", sec.Items[0].Value)
}

func TestSummarizeHowHeardDetails(t *testing.T) {
	form := record(
		FieldHowDidYouHear, "Referral",
		"How_Hear_Referral_Specify__c", "Bob",
		"How_Hear_Other_Specify__c", "Radio",
	)
	sec, ok := section(Summarize("x", form, nil), "Referral Information")
	require.True(t, ok)
	assert.Equal(t, []SummaryItem{
		{Label: "How Did You Hear About Us", Value: "Referral"},
		{Label: "Details", Value: "Referral: Bob; Other: Radio"},
	}, sec.Items)
}

func TestSummarizeMatterSections(t *testing.T) {
	form := NewRecord()
	form.Set(FieldLegalMatterType, List("Family Law", "Criminal Law", "Real Estate"))
	form.Set(FieldMatterOther, Text("Traffic"))
	extra := record("RE_Transaction_Type__c", "Purchase")

	s := Summarize("x", form, extra)
	require.NotEmpty(t, s.Sections)
	assert.Equal(t, MatterSectionTitle, s.Sections[0].Title)
	assert.Equal(t, []SummaryItem{
		{Label: "Legal Matters", Value: "Family Law; Criminal Law; Real Estate"},
		{Label: "Other", Value: "Traffic"},
	}, s.Sections[0].Items)

	fam, ok := section(s, "Family Law Details")
	require.True(t, ok, "family law shows on the matter alone")
	assert.Empty(t, fam.Items)

	_, ok = section(s, "Criminal Law Details")
	assert.False(t, ok, "criminal law needs charges or case status")

	re, ok := section(s, "Real Estate Details")
	require.True(t, ok)
	assert.Equal(t, []SummaryItem{{Label: "Transaction Type", Value: "Purchase"}}, re.Items)

	_, ok = section(s, "HOA Details")
	assert.False(t, ok)
}

func TestEmailBody(t *testing.T) {
	form := record(FieldIssueDescription, "<b>rent</b> & deposit", FieldRequireAccommodat, "Yes")
	e, err := Compose("L1", Summarize("Jane Doe", form, nil))
	require.NoError(t, err)

	assert.Equal(t, "Intake Form Summary - Jane Doe", e.Subject)
	assert.Contains(t, e.Body, "Intake Form Summary - Jane Doe</h2>")
	assert.Contains(t, e.Body, "<p><strong>Issue Description:</strong> &lt;b&gt;rent&lt;/b&gt; &amp; deposit</p>")
	assert.NotContains(t, e.Body, "Office Preferences")
}

func TestEmailValidate(t *testing.T) {
	var verr *ValidationError

	err := Email{Subject: "s"}.Validate()
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{MsgNoRecipients}, verr.Messages)

	err = Email{UserIDs: []string{"u"}, Subject: "  "}.Validate()
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{MsgNoSubject}, verr.Messages)

	assert.NoError(t, Email{UserIDs: []string{"u"}, Subject: "s"}.Validate())
}

func TestRecipientOptions(t *testing.T) {
	users := []types.User{
		{ID: "1", FirstName: "Ada", LastName: "King", Email: "ada@example.com", Active: true},
		{ID: "2", FirstName: "Old", LastName: "Timer", Email: "old@example.com"},
	}
	assert.Equal(t, []types.Option{{Label: "Ada King (ada@example.com)", Value: "1"}}, RecipientOptions(users))
}

type userMap map[string]types.User

func (m userMap) GetUser(_ context.Context, id string) (types.User, error) {
	u, ok := m[id]
	if !ok {
		return types.User{}, errors.New("not found")
	}
	return u, nil
}

type captureMailer struct{ sent []Message }

func (c *captureMailer) Send(_ context.Context, m Message) error {
	c.sent = append(c.sent, m)
	return nil
}

func TestSendEmail(t *testing.T) {
	users := userMap{
		"1": {ID: "1", FirstName: "Ada", Email: "ada@example.com"},
		"2": {ID: "2", FirstName: "Nomail"},
	}
	m := &captureMailer{}
	ctx := context.Background()

	err := SendEmail(ctx, users, m, Email{UserIDs: []string{"1"}, Subject: "Hi", Body: "<p>x</p>"})
	require.NoError(t, err)
	require.Len(t, m.sent, 1)
	assert.Equal(t, Message{To: []string{"ada@example.com"}, Subject: "Hi", HTML: "<p>x</p>"}, m.sent[0])

	err = SendEmail(ctx, users, m, Email{UserIDs: []string{"2"}, Subject: "Hi"})
	assert.ErrorIs(t, err, ErrNoAddress)

	err = SendEmail(ctx, users, m, Email{UserIDs: []string{"9"}, Subject: "Hi"})
	assert.Error(t, err)
	assert.Len(t, m.sent, 1)

	assert.NoError(t, LogMailer{}.Send(ctx, Message{Subject: "s"}))
}
