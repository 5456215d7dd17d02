package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

const intakeTable = "intakes"

// intakeMeta are the bookkeeping columns every intake row carries.
var intakeMeta = []string{"id", "created_at", "updated_at"}

var identRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

func intakeTableDDL(columns []string) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS intakes (\n")
	b.WriteString("\tid TEXT PRIMARY KEY,\n\tcreated_at TEXT NOT NULL,\n\tupdated_at TEXT NOT NULL")
	for _, c := range columns {
		if !identRe.MatchString(c) || isMeta(c) {
			continue
		}
		fmt.Fprintf(&b, ",\n\t%q TEXT NOT NULL DEFAULT ''", c)
	}
	b.WriteString("\n)")
	return b.String()
}

func isMeta(c string) bool {
	for _, m := range intakeMeta {
		if strings.EqualFold(m, c) {
			return true
		}
	}
	return false
}

// IntakeRow is a stored intake: its id, timestamps and field columns.
type IntakeRow struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Columns   map[string]string `json:"columns"`
}

// IntakeFields describes the intake table: the field columns it really has.
// Values for any other field must travel in the details blob.
func (s *Store) IntakeFields(ctx context.Context) (map[string]bool, error) {
	var (
		query string
		args  []any
	)
	if s.dialect == dialect.Postgres {
		query, args = s.builder().Select("column_name").
			From(s.builder().Table("columns").Schema("information_schema")).
			Where(entsql.EQ("table_name", intakeTable)).
			Query()
	} else {
		query = "SELECT name FROM pragma_table_info('intakes')"
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("describe intakes: %w", err)
	}
	defer rows.Close()
	fields := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("describe intakes: %w", err)
		}
		if !isMeta(name) {
			fields[name] = true
		}
	}
	return fields, rows.Err()
}

// AddIntakeColumns adds any missing field columns to an existing table.
func (s *Store) AddIntakeColumns(ctx context.Context, columns []string) error {
	have, err := s.IntakeFields(ctx)
	if err != nil {
		return err
	}
	for _, c := range columns {
		if have[c] || !identRe.MatchString(c) || isMeta(c) {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE intakes ADD COLUMN %q TEXT NOT NULL DEFAULT ''", c)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("add intake column %s: %w", c, err)
		}
	}
	return nil
}

func (s *Store) fieldColumns(ctx context.Context) ([]string, error) {
	fields, err := s.IntakeFields(ctx)
	if err != nil {
		return nil, err
	}
	cols := make([]string, 0, len(fields))
	for f := range fields {
		cols = append(cols, f)
	}
	sort.Strings(cols)
	return cols, nil
}

// SaveIntake writes cols to the intake id, creating it when id is empty.
// Columns the table lacks are an error. It returns the row id and whether
// the row was created.
func (s *Store) SaveIntake(ctx context.Context, id string, cols map[string]string) (string, bool, error) {
	fields, err := s.IntakeFields(ctx)
	if err != nil {
		return "", false, err
	}
	names := make([]string, 0, len(cols))
	for c := range cols {
		if !fields[c] {
			return "", false, fmt.Errorf("save intake: unknown column %q", c)
		}
		names = append(names, c)
	}
	sort.Strings(names)
	now := encodeTime(time.Now())

	if id == "" {
		id = uuid.NewString()
		ins := s.builder().Insert(intakeTable).
			Columns(append([]string{"id", "created_at", "updated_at"}, names...)...)
		vals := []any{id, now, now}
		for _, c := range names {
			vals = append(vals, cols[c])
		}
		ins.Values(vals...)
		if _, err := s.exec(ctx, ins); err != nil {
			return "", false, fmt.Errorf("create intake: %w", err)
		}
		return id, true, nil
	}

	upd := s.builder().Update(intakeTable).Set("updated_at", now)
	for _, c := range names {
		upd.Set(c, cols[c])
	}
	upd.Where(entsql.EQ("id", id))
	if err := s.updateOne(ctx, upd); err != nil {
		return "", false, fmt.Errorf("update intake %s: %w", id, err)
	}
	return id, false, nil
}

func (s *Store) selectIntakes(ctx context.Context, where *entsql.Predicate, limit int) ([]IntakeRow, error) {
	fields, err := s.fieldColumns(ctx)
	if err != nil {
		return nil, err
	}
	sel := s.builder().Select(append(append([]string{}, intakeMeta...), fields...)...).
		From(s.builder().Table(intakeTable)).
		OrderBy(entsql.Desc("created_at"), "id")
	if where != nil {
		sel.Where(where)
	}
	if limit > 0 {
		sel.Limit(limit)
	}
	var out []IntakeRow
	err = s.query(ctx, sel, func(rows *sql.Rows) error {
		var created, updated string
		vals := make([]sql.NullString, len(fields))
		dest := []any{new(string), &created, &updated}
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		r := IntakeRow{
			ID:        *dest[0].(*string),
			CreatedAt: decodeTime(created),
			UpdatedAt: decodeTime(updated),
			Columns:   make(map[string]string, len(fields)),
		}
		for i, f := range fields {
			r.Columns[f] = vals[i].String
		}
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("select intakes: %w", err)
	}
	return out, nil
}

// GetIntake loads one intake.
func (s *Store) GetIntake(ctx context.Context, id string) (IntakeRow, error) {
	rows, err := s.selectIntakes(ctx, entsql.EQ("id", id), 1)
	if err != nil {
		return IntakeRow{}, err
	}
	if len(rows) == 0 {
		return IntakeRow{}, ErrNotFound
	}
	return rows[0], nil
}

// ListIntakes returns intakes newest first, limited to one lead when leadID
// is set.
func (s *Store) ListIntakes(ctx context.Context, leadColumn, leadID string) ([]IntakeRow, error) {
	var where *entsql.Predicate
	if leadID != "" {
		where = entsql.EQ(leadColumn, leadID)
	}
	rows, err := s.selectIntakes(ctx, where, 0)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []IntakeRow{}
	}
	return rows, nil
}
