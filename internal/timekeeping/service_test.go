package timekeeping

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/intake/internal/types"
)

type fakeStores struct {
	entries []types.TimeEntry
	users   []types.User
	err     error
}

func (s fakeStores) ListTimeEntries(context.Context) ([]types.TimeEntry, error) {
	return s.entries, s.err
}

func (s fakeStores) ListUsers(context.Context) ([]types.User, error) { return s.users, nil }

func TestServiceFilteredEntriesWindowAndScope(t *testing.T) {
	now := time.Date(2024, 6, 12, 15, 0, 0, 0, time.UTC) // a Wednesday
	today := time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)
	stores := fakeStores{entries: []types.TimeEntry{
		{ID: "recent", UserID: "u1", Date: today, Matter: "Smith", Hours: 2, Billable: true},
		{ID: "empty", UserID: "u1", Date: today, Matter: "Smith"},
		{ID: "old", UserID: "u1", Date: today.AddDate(-1, 0, 0), Matter: "Smith", Hours: 1},
	}}
	svc := &Service{Entries: stores, Users: stores, Now: func() time.Time { return now }}

	ids := func(entries []types.TimeEntry) []string {
		out := []string{}
		for _, e := range entries {
			out = append(out, e.ID)
		}
		return out
	}

	team, err := svc.FilteredEntries(context.Background(), NewFilter(), ScopeTeam)
	require.NoError(t, err)
	assert.Equal(t, []string{"recent"}, ids(team))

	user, err := svc.FilteredEntries(context.Background(), NewFilter(), ScopeUser)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"recent", "empty"}, ids(user))
}

func TestServiceFilteredEntriesWrapsStoreError(t *testing.T) {
	boom := errors.New("boom")
	stores := fakeStores{err: boom}
	svc := &Service{Entries: stores, Users: stores}
	_, err := svc.FilteredEntries(context.Background(), NewFilter(), ScopeTeam)
	require.ErrorIs(t, err, boom)
}
