package intake

import (
	"context"
	"fmt"
	"time"

	"github.com/matthewbaird/intake/internal/store"
	"github.com/matthewbaird/intake/internal/taxonomy"
)

// Store persists intake rows.
type Store interface {
	IntakeFields(ctx context.Context) (map[string]bool, error)
	SaveIntake(ctx context.Context, id string, cols map[string]string) (string, bool, error)
	GetIntake(ctx context.Context, id string) (store.IntakeRow, error)
	ListIntakes(ctx context.Context, leadColumn, leadID string) ([]store.IntakeRow, error)
}

// Service validates, stores and reloads intakes.
type Service struct {
	Store    Store
	Catalog  *Catalog
	Taxonomy *taxonomy.Taxonomy
}

// Saved is the outcome of a successful save.
type Saved struct {
	ID      string `json:"id"`
	Created bool   `json:"created"`
	Message string `json:"message"`
}

// Save validates r and writes it to intake id, or to a new intake when id is
// empty. Invalid records return a *ValidationError and nothing is written.
func (s *Service) Save(ctx context.Context, id string, r *Record) (Saved, error) {
	form := LoadForm(s.Catalog, s.Taxonomy, r.Clone())
	if err := form.Validate(); err != nil {
		return Saved{}, err
	}
	realFields, err := s.Store.IntakeFields(ctx)
	if err != nil {
		return Saved{}, fmt.Errorf("describe intakes: %w", err)
	}
	cols, err := Split(form.Record, realFields)
	if err != nil {
		return Saved{}, err
	}
	id, created, err := s.Store.SaveIntake(ctx, id, cols)
	if err != nil {
		return Saved{}, fmt.Errorf("save intake: %w", err)
	}
	return Saved{ID: id, Created: created, Message: MsgSaved}, nil
}

// Get loads one intake as a record.
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	row, err := s.Store.GetIntake(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Catalog.Hydrate(row.Columns), nil
}

// ListRow is one entry of a lead's intake list.
type ListRow struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	MatterTypes string    `json:"matterTypes"`
	TypeOfLaw   string    `json:"typeOfLaw"`
	CreatedAt   time.Time `json:"createdAt"`
}

// List returns a lead's intakes, newest first.
func (s *Service) List(ctx context.Context, leadID string) ([]ListRow, error) {
	rows, err := s.Store.ListIntakes(ctx, FieldLead, leadID)
	if err != nil {
		return nil, fmt.Errorf("list intakes: %w", err)
	}
	out := make([]ListRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, ListRow{
			ID:          r.ID,
			Name:        r.Columns[FieldName],
			MatterTypes: ListMatterTypes(r.Columns[FieldLegalMatterType]),
			TypeOfLaw:   r.Columns[FieldTypeOfLaw],
			CreatedAt:   r.CreatedAt,
		})
	}
	return out, nil
}

// Summary digests a lead's latest intake. Shared fields left blank on the
// form fall back to the raw details blob.
func (s *Service) Summary(ctx context.Context, leadID, leadName string) (Summary, error) {
	rows, err := s.Store.ListIntakes(ctx, FieldLead, leadID)
	if err != nil {
		return Summary{}, fmt.Errorf("list intakes: %w", err)
	}
	if len(rows) == 0 {
		return Summarize(leadName, nil, nil), nil
	}
	latest := rows[0].Columns
	form := s.Catalog.Hydrate(latest)
	additional := NewRecord()
	for k, v := range parseDetails(latest[FieldDetailsJSON]) {
		additional.Set(k, s.Catalog.Normalize(k, v))
	}
	return Summarize(leadName, form, additional), nil
}
