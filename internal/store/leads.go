package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/matthewbaird/intake/internal/conflict"
	"github.com/matthewbaird/intake/internal/types"
)

var leadColumns = []string{
	"id", "first_name", "last_name", "email", "phone", "company", "status", "source",
	"landing_page", "practice_area", "office_location", "type_of_civil_law", "owner_name",
	"intake_attorney_name", "team_lead", "created_at", "intake_completed_at", "first_call",
	"post_consult_done", "post_consult_completed_at", "no_show", "test_market",
	"disqualified_reason", "date_fa_signed", "date_fa_sent", "date_first_payment",
	"conflict_history",
}

func scanLead(rows *sql.Rows) (types.Lead, error) {
	var (
		l         types.Lead
		created   string
		completed sql.NullString
		consulted sql.NullString
		signed    sql.NullString
		sent      sql.NullString
		paid      sql.NullString
	)
	err := rows.Scan(
		&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.Company, &l.Status, &l.Source,
		&l.LandingPage, &l.PracticeArea, &l.OfficeLocation, &l.TypeOfCivilLaw, &l.OwnerName,
		&l.IntakeAttorneyName, &l.TeamLead, &created, &completed, &l.FirstCall,
		&l.PostConsultDone, &consulted, &l.NoShow, &l.TestMarket,
		&l.DisqualifiedReason, &signed, &sent, &paid,
		&l.ConflictHistory,
	)
	if err != nil {
		return types.Lead{}, fmt.Errorf("scan lead: %w", err)
	}
	l.CreatedAt = decodeTime(created)
	l.IntakeCompletedAt = decodeTimePtr(completed)
	l.PostConsultCompletedAt = decodeTimePtr(consulted)
	l.DateFASigned = decodeTimePtr(signed)
	l.DateFASent = decodeTimePtr(sent)
	l.DateFirstPayment = decodeTimePtr(paid)
	return l, nil
}

func (s *Store) selectLeads(ctx context.Context, sel *entsql.Selector) ([]types.Lead, error) {
	var out []types.Lead
	err := s.query(ctx, sel, func(rows *sql.Rows) error {
		l, err := scanLead(rows)
		if err != nil {
			return err
		}
		out = append(out, l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PutLead inserts or replaces a lead.
func (s *Store) PutLead(ctx context.Context, l types.Lead) error {
	return s.upsert(ctx, "leads", leadColumns,
		l.ID, l.FirstName, l.LastName, l.Email, l.Phone, l.Company, l.Status, l.Source,
		l.LandingPage, l.PracticeArea, l.OfficeLocation, l.TypeOfCivilLaw, l.OwnerName,
		l.IntakeAttorneyName, l.TeamLead, encodeTime(l.CreatedAt), encodeTimePtr(l.IntakeCompletedAt), l.FirstCall,
		l.PostConsultDone, encodeTimePtr(l.PostConsultCompletedAt), l.NoShow, l.TestMarket,
		l.DisqualifiedReason, encodeTimePtr(l.DateFASigned), encodeTimePtr(l.DateFASent), encodeTimePtr(l.DateFirstPayment),
		l.ConflictHistory,
	)
}

// GetLead loads one lead.
func (s *Store) GetLead(ctx context.Context, id string) (types.Lead, error) {
	sel := s.builder().Select(leadColumns...).From(s.builder().Table("leads")).
		Where(entsql.EQ("id", id)).Limit(1)
	leads, err := s.selectLeads(ctx, sel)
	if err != nil {
		return types.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	if len(leads) == 0 {
		return types.Lead{}, ErrNotFound
	}
	return leads[0], nil
}

// ListLeads returns every lead, newest first.
func (s *Store) ListLeads(ctx context.Context) ([]types.Lead, error) {
	sel := s.builder().Select(leadColumns...).From(s.builder().Table("leads")).
		OrderBy(entsql.Desc("created_at"), "id")
	leads, err := s.selectLeads(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}

// SearchLeads matches every whitespace-separated token of term against the
// first name, last name or email, case-insensitively.
func (s *Store) SearchLeads(ctx context.Context, term string, limit int) ([]types.Lead, error) {
	tokens := strings.Fields(term)
	if len(tokens) == 0 {
		return []types.Lead{}, nil
	}
	preds := make([]*entsql.Predicate, 0, len(tokens))
	for _, tok := range tokens {
		preds = append(preds, entsql.Or(
			entsql.ContainsFold("first_name", tok),
			entsql.ContainsFold("last_name", tok),
			entsql.ContainsFold("email", tok),
		))
	}
	sel := s.builder().Select(leadColumns...).From(s.builder().Table("leads")).
		Where(entsql.And(preds...)).
		OrderBy("last_name", "first_name", "id")
	if limit > 0 {
		sel.Limit(limit)
	}
	leads, err := s.selectLeads(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("search leads: %w", err)
	}
	if leads == nil {
		leads = []types.Lead{}
	}
	return leads, nil
}

// SaveConflictHistory replaces a lead's stored conflict checks.
func (s *Store) SaveConflictHistory(ctx context.Context, leadID, history string) error {
	upd := s.builder().Update("leads").Set("conflict_history", history).Where(entsql.EQ("id", leadID))
	return s.updateOne(ctx, upd)
}

func (s *Store) updateOne(ctx context.Context, upd *entsql.UpdateBuilder) error {
	res, err := s.exec(ctx, upd)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var partyColumns = []string{"id", "type", "name", "email", "phone", "company"}

// PutParty inserts or replaces a directory party.
func (s *Store) PutParty(ctx context.Context, p conflict.Party) error {
	return s.upsert(ctx, "parties", partyColumns, p.ID, p.Type, p.Name, p.Email, p.Phone, p.Company)
}

// Parties is the conflict directory: every lead plus the stored clients,
// contacts and opposing parties.
func (s *Store) Parties(ctx context.Context) ([]conflict.Party, error) {
	leads, err := s.ListLeads(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]conflict.Party, 0, len(leads))
	for _, l := range leads {
		out = append(out, conflict.Party{
			ID:      l.ID,
			Type:    "Lead",
			Name:    l.Name(),
			Email:   l.Email,
			Phone:   l.Phone,
			Company: l.Company,
		})
	}
	sel := s.builder().Select(partyColumns...).From(s.builder().Table("parties")).OrderBy("name", "id")
	err = s.query(ctx, sel, func(rows *sql.Rows) error {
		var p conflict.Party
		if err := rows.Scan(&p.ID, &p.Type, &p.Name, &p.Email, &p.Phone, &p.Company); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list parties: %w", err)
	}
	return out, nil
}

var matterColumns = []string{"id", "name", "practice_area", "stage", "status", "responsible_attorney"}

// PutMatter inserts or replaces a matter.
func (s *Store) PutMatter(ctx context.Context, m types.Matter) error {
	return s.upsert(ctx, "matters", matterColumns, m.ID, m.Name, m.PracticeArea, m.Stage, m.Status, m.ResponsibleAttorney)
}

// ListMatters returns every matter by name.
func (s *Store) ListMatters(ctx context.Context) ([]types.Matter, error) {
	sel := s.builder().Select(matterColumns...).From(s.builder().Table("matters")).OrderBy("name", "id")
	var out []types.Matter
	err := s.query(ctx, sel, func(rows *sql.Rows) error {
		var m types.Matter
		if err := rows.Scan(&m.ID, &m.Name, &m.PracticeArea, &m.Stage, &m.Status, &m.ResponsibleAttorney); err != nil {
			return err
		}
		out = append(out, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list matters: %w", err)
	}
	return out, nil
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
