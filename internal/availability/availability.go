// Package availability tracks each attorney's self-reported weekly capacity
// and renders the firm-wide availability board.
package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/matthewbaird/intake/internal/types"
)

// Default is the status assumed when none is stored or it cannot be read.
const Default = types.AvailabilityGreen

// NotSet is shown for a missing status or practice area.
const NotSet = "Not Set"

// Console messages.
const (
	ReadErrorMessage    = "Error retrieving user availability."
	UpdatedMessage      = "Availability updated successfully"
	UpdateErrorTitle    = "Error updating availability"
	RefreshedMessage    = "Availability dashboard refreshed"
	RefreshErrorMessage = "Failed to refresh dashboard"
)

// ErrInvalidStatus is returned for a status other than Green, Yellow or Red.
var ErrInvalidStatus = errors.New("availability: status must be Green, Yellow or Red")

// Option is one radio button of the status picker.
type Option struct {
	Label     string             `json:"label"`
	Value     types.Availability `json:"value"`
	ClassName string             `json:"className"`
	Checked   bool               `json:"checked"`
}

// Options lists the picker with current checked.
func Options(current types.Availability) []Option {
	opts := []Option{
		{Label: "Green - Available for new work", Value: types.AvailabilityGreen, ClassName: "radio-green"},
		{Label: "Yellow - Nearing capacity", Value: types.AvailabilityYellow, ClassName: "radio-yellow"},
		{Label: "Red - At capacity, no new work", Value: types.AvailabilityRed, ClassName: "radio-red"},
	}
	for i := range opts {
		opts[i].Checked = opts[i].Value == current
	}
	return opts
}

// BadgeClass is the dashboard badge CSS class for a status.
func BadgeClass(status string) string {
	const base = "slds-badge slds-text-heading_small"
	switch types.Availability(status) {
	case types.AvailabilityGreen:
		return base + " badge-green"
	case types.AvailabilityYellow:
		return base + " badge-yellow"
	case types.AvailabilityRed:
		return base + " badge-red"
	}
	return base + " slds-badge_inverse"
}

// Row is one user on the availability board.
type Row struct {
	ID                  string `json:"id"`
	FullName            string `json:"fullName"`
	Email               string `json:"email,omitempty"`
	Availability        string `json:"availability"`
	BadgeClass          string `json:"badgeClass"`
	PracticeAreaDisplay string `json:"practiceAreaDisplay"`
}

// Board renders the active users grouped by practice area, then by name.
func Board(users []types.User) []Row {
	rows := make([]Row, 0, len(users))
	for _, u := range users {
		if !u.Active {
			continue
		}
		status := string(u.Availability)
		if status == "" {
			status = NotSet
		}
		area := u.PracticeArea
		if area == "" {
			area = NotSet
		}
		rows = append(rows, Row{
			ID:                  u.ID,
			FullName:            u.FirstName + " " + u.LastName,
			Email:               u.Email,
			Availability:        status,
			BadgeClass:          BadgeClass(status),
			PracticeAreaDisplay: area,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].PracticeAreaDisplay != rows[j].PracticeAreaDisplay {
			return rows[i].PracticeAreaDisplay < rows[j].PracticeAreaDisplay
		}
		return rows[i].FullName < rows[j].FullName
	})
	return rows
}

// Users is the user storage availability reads and writes.
type Users interface {
	GetUser(ctx context.Context, id string) (types.User, error)
	ListUsers(ctx context.Context) ([]types.User, error)
	SetAvailability(ctx context.Context, id string, a types.Availability) error
}

// Service reads and updates statuses.
type Service struct {
	Users Users
}

// Status is a user's current status as the picker shows it.
type Status struct {
	Current types.Availability `json:"currentAvailability"`
	Options []Option           `json:"options"`
	Error   string             `json:"error,omitempty"`
}

// Current reads a user's status. A missing value, or a failed read, yields
// Green; the failure is reported in Error rather than returned.
func (s *Service) Current(ctx context.Context, userID string) Status {
	st := Status{Current: Default}
	u, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		st.Error = ReadErrorMessage
	} else if u.Availability != "" {
		st.Current = u.Availability
	}
	st.Options = Options(st.Current)
	return st
}

// Set stores a new status for userID and returns the previous one.
func (s *Service) Set(ctx context.Context, userID, status string) (previous types.Availability, err error) {
	a, ok := types.ParseAvailability(status)
	if !ok {
		return "", ErrInvalidStatus
	}
	u, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}
	if err := s.Users.SetAvailability(ctx, userID, a); err != nil {
		return "", fmt.Errorf("update availability: %w", err)
	}
	return u.Availability, nil
}

// Board lists the active users for the dashboard.
func (s *Service) Board(ctx context.Context) ([]Row, error) {
	users, err := s.Users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return Board(users), nil
}
