package timekeeping

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matthewbaird/intake/internal/invoicing"
	"github.com/matthewbaird/intake/internal/types"
)

// EntryStore lists time entries.
type EntryStore interface {
	ListTimeEntries(ctx context.Context) ([]types.TimeEntry, error)
}

// UserStore lists users.
type UserStore interface {
	ListUsers(ctx context.Context) ([]types.User, error)
}

// Service serves the personal and team time dashboards.
type Service struct {
	Entries EntryStore
	Users   UserStore
	Ledger  invoicing.LedgerStore
	Now     func() time.Time
}

// Scope picks between the two dashboards. The team dashboard drops entries
// without hours.
type Scope int

const (
	ScopeUser Scope = iota
	ScopeTeam
)

// View is one dashboard render.
type View struct {
	Summary
	Filter   Filter         `json:"filter"`
	Teams    []types.Option `json:"team_options"`
	People   []types.Option `json:"person_options"`
	Billable []types.Option `json:"billable_options"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type snapshot struct {
	entries []types.TimeEntry
	users   []types.User
	ledger  invoicing.Ledger
}

func (s *Service) load(ctx context.Context, withLedger bool) (snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if snap.entries, err = s.Entries.ListTimeEntries(gctx); err != nil {
			return fmt.Errorf("list time entries: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if snap.users, err = s.Users.ListUsers(gctx); err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		return nil
	})
	if withLedger && s.Ledger != nil {
		g.Go(func() error {
			var err error
			if snap.ledger, err = s.Ledger.Ledger(gctx); err != nil {
				return fmt.Errorf("load ledger: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}

func inWindow(entries []types.TimeEntry, w Window) []types.TimeEntry {
	out := make([]types.TimeEntry, 0, len(entries))
	for _, e := range entries {
		if w.Range.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// attorney names the selected person for the collection rate, or "" for
// everyone.
func attorney(users []types.User, f Filter) string {
	if f.UserID == "" || f.UserID == types.AllOption {
		return ""
	}
	for _, u := range users {
		if u.ID == f.UserID {
			return u.Name()
		}
	}
	return ""
}

// Dashboard totals the filtered entries against the users' goals.
func (s *Service) Dashboard(ctx context.Context, f Filter, scope Scope) (View, error) {
	now := s.now()
	w, err := WindowFor(f.Date, now)
	if err != nil {
		return View{}, err
	}
	snap, err := s.load(ctx, true)
	if err != nil {
		return View{}, err
	}
	windowed := inWindow(snap.entries, w)
	entries := f.Apply(windowed, scope == ScopeTeam)

	rate, err := invoicing.CollectionRate(snap.ledger, invoicing.Filter{
		Date:     f.Date,
		Team:     f.Team,
		Attorney: attorney(snap.users, f),
	}, now)
	if err != nil {
		return View{}, err
	}
	return View{
		Summary:  Summarize(entries, f.Users(snap.users), w, rate),
		Filter:   f,
		Teams:    TeamOptions(windowed),
		People:   PersonOptions(snap.users, f.Team),
		Billable: BillableOptions(),
	}, nil
}

// FilteredEntries lists the filtered entries behind the dashboard.
func (s *Service) FilteredEntries(ctx context.Context, f Filter, scope Scope) ([]types.TimeEntry, error) {
	w, err := WindowFor(f.Date, s.now())
	if err != nil {
		return nil, err
	}
	snap, err := s.load(ctx, false)
	if err != nil {
		return nil, err
	}
	return f.Apply(inWindow(snap.entries, w), scope == ScopeTeam), nil
}
