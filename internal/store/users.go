package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/matthewbaird/intake/internal/types"
)

var userColumns = []string{
	"id", "first_name", "last_name", "email", "team", "practice_area",
	"availability", "active", "start_date", "annual_target",
}

func scanUser(rows *sql.Rows) (types.User, error) {
	var (
		u     types.User
		avail string
		start sql.NullString
	)
	err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Team, &u.PracticeArea,
		&avail, &u.Active, &start, &u.AnnualTarget)
	if err != nil {
		return types.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.Availability = types.Availability(avail)
	u.StartDate = decodeTimePtr(start)
	return u, nil
}

// PutUser inserts or replaces a user.
func (s *Store) PutUser(ctx context.Context, u types.User) error {
	return s.upsert(ctx, "users", userColumns,
		u.ID, u.FirstName, u.LastName, u.Email, u.Team, u.PracticeArea,
		string(u.Availability), u.Active, encodeTimePtr(u.StartDate), u.AnnualTarget)
}

func (s *Store) selectUsers(ctx context.Context, sel *entsql.Selector) ([]types.User, error) {
	var out []types.User
	err := s.query(ctx, sel, func(rows *sql.Rows) error {
		u, err := scanUser(rows)
		if err != nil {
			return err
		}
		out = append(out, u)
		return nil
	})
	return out, err
}

// GetUser loads one user.
func (s *Store) GetUser(ctx context.Context, id string) (types.User, error) {
	sel := s.builder().Select(userColumns...).From(s.builder().Table("users")).
		Where(entsql.EQ("id", id)).Limit(1)
	users, err := s.selectUsers(ctx, sel)
	if err != nil {
		return types.User{}, fmt.Errorf("get user: %w", err)
	}
	if len(users) == 0 {
		return types.User{}, ErrNotFound
	}
	return users[0], nil
}

// ListUsers returns every user, active or not, by name.
func (s *Store) ListUsers(ctx context.Context) ([]types.User, error) {
	sel := s.builder().Select(userColumns...).From(s.builder().Table("users")).
		OrderBy("last_name", "first_name", "id")
	users, err := s.selectUsers(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// SetAvailability updates one user's status.
func (s *Store) SetAvailability(ctx context.Context, id string, a types.Availability) error {
	upd := s.builder().Update("users").Set("availability", string(a)).Where(entsql.EQ("id", id))
	return s.updateOne(ctx, upd)
}
