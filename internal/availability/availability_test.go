package availability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/intake/internal/types"
)

type fakeUsers struct {
	users  map[string]types.User
	getErr error
}

func (f *fakeUsers) GetUser(_ context.Context, id string) (types.User, error) {
	if f.getErr != nil {
		return types.User{}, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return types.User{}, errors.New("not found")
	}
	return u, nil
}

func (f *fakeUsers) ListUsers(context.Context) ([]types.User, error) {
	var out []types.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) SetAvailability(_ context.Context, id string, a types.Availability) error {
	u := f.users[id]
	u.Availability = a
	f.users[id] = u
	return nil
}

func TestOptions(t *testing.T) {
	opts := Options(types.AvailabilityYellow)
	require.Len(t, opts, 3)
	assert.False(t, opts[0].Checked)
	assert.True(t, opts[1].Checked)
	assert.Equal(t, "Red - At capacity, no new work", opts[2].Label)
	assert.Equal(t, "radio-red", opts[2].ClassName)
}

func TestBadgeClass(t *testing.T) {
	assert.Equal(t, "slds-badge slds-text-heading_small badge-green", BadgeClass("Green"))
	assert.Equal(t, "slds-badge slds-text-heading_small badge-red", BadgeClass("Red"))
	assert.Equal(t, "slds-badge slds-text-heading_small slds-badge_inverse", BadgeClass(NotSet))
}

func TestBoard(t *testing.T) {
	rows := Board([]types.User{
		{ID: "3", FirstName: "Cy", LastName: "Lo", PracticeArea: "Family", Availability: types.AvailabilityRed, Active: true},
		{ID: "1", FirstName: "Al", LastName: "Bo", PracticeArea: "Criminal", Active: true},
		{ID: "2", FirstName: "Bea", LastName: "Ng", Active: true},
		{ID: "4", FirstName: "Gone", LastName: "Away", PracticeArea: "Family"},
	})
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "3", "2"}, []string{rows[0].ID, rows[1].ID, rows[2].ID})
	assert.Equal(t, NotSet, rows[0].Availability)
	assert.Equal(t, NotSet, rows[2].PracticeAreaDisplay)
	assert.Equal(t, "Cy Lo", rows[1].FullName)
}

func TestCurrentDefaultsToGreen(t *testing.T) {
	users := &fakeUsers{users: map[string]types.User{"u": {ID: "u"}}}
	svc := &Service{Users: users}
	st := svc.Current(context.Background(), "u")
	assert.Equal(t, types.AvailabilityGreen, st.Current)
	assert.Empty(t, st.Error)

	users.getErr = errors.New("boom")
	st = svc.Current(context.Background(), "u")
	assert.Equal(t, types.AvailabilityGreen, st.Current)
	assert.Equal(t, ReadErrorMessage, st.Error)
	assert.True(t, st.Options[0].Checked)
}

func TestSet(t *testing.T) {
	users := &fakeUsers{users: map[string]types.User{"u": {ID: "u", Availability: types.AvailabilityGreen}}}
	svc := &Service{Users: users}

	_, err := svc.Set(context.Background(), "u", "Blue")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	prev, err := svc.Set(context.Background(), "u", "Red")
	require.NoError(t, err)
	assert.Equal(t, types.AvailabilityGreen, prev)
	assert.Equal(t, types.AvailabilityRed, svc.Current(context.Background(), "u").Current)
}
