// Package store persists the console's records in SQLite or Postgres. Queries
// are built with ent's dialect-aware SQL builder so the same code runs on
// both databases.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("store: not found")

// IsConstraint reports whether err is a constraint violation from either
// database, such as a payment naming a missing invoice.
func IsConstraint(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "23")
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}

// Store is the database handle shared by every repository method.
type Store struct {
	db      *sql.DB
	dialect string
}

// Open connects to driver ("sqlite" or "postgres") at dsn. SQLite is
// limited to one connection with foreign keys on.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	var (
		name string
		d    string
	)
	switch strings.ToLower(driver) {
	case "", "sqlite", "sqlite3":
		name, d = "sqlite", dialect.SQLite
	case "postgres", "postgresql", "pgx":
		name, d = "pgx", dialect.Postgres
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if d == dialect.SQLite {
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return New(db, d), nil
}

// New wraps an open database of the given ent dialect.
func New(db *sql.DB, d string) *Store { return &Store{db: db, dialect: d} }

// DB exposes the handle for packages that keep their own tables.
func (s *Store) DB() *sql.DB { return s.db }

// Dialect is the ent dialect name.
func (s *Store) Dialect() string { return s.dialect }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) builder() *entsql.DialectBuilder { return entsql.Dialect(s.dialect) }

type querier interface {
	Query() (string, []any)
}

func (s *Store) exec(ctx context.Context, q querier) (sql.Result, error) {
	query, args := q.Query()
	return s.db.ExecContext(ctx, query, args...)
}

func (s *Store) query(ctx context.Context, q querier, scan func(*sql.Rows) error) error {
	query, args := q.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// upsert inserts a row or replaces every column but the key.
func (s *Store) upsert(ctx context.Context, table string, cols []string, vals ...any) error {
	ins := s.builder().Insert(table).Columns(cols...).Values(vals...).
		OnConflict(entsql.ConflictColumns(cols[0]), entsql.ResolveWithNewValues())
	if _, err := s.exec(ctx, ins); err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

// Timestamps are stored as fixed-width UTC text so they sort as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func encodeTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func encodeTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return encodeTime(*t)
}

func decodeTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func decodeTimePtr(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t := decodeTime(ns.String)
	return &t
}
