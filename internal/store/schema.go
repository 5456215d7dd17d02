package store

import (
	"context"
	"fmt"
	"strings"

	"entgo.io/ent/dialect"
)

var tables = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		first_name    TEXT NOT NULL DEFAULT '',
		last_name     TEXT NOT NULL DEFAULT '',
		email         TEXT NOT NULL DEFAULT '',
		team          TEXT NOT NULL DEFAULT '',
		practice_area TEXT NOT NULL DEFAULT '',
		availability  TEXT NOT NULL DEFAULT '',
		active        BOOLEAN NOT NULL DEFAULT TRUE,
		start_date    TEXT,
		annual_target {{float}} NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS leads (
		id                        TEXT PRIMARY KEY,
		first_name                TEXT NOT NULL DEFAULT '',
		last_name                 TEXT NOT NULL DEFAULT '',
		email                     TEXT NOT NULL DEFAULT '',
		phone                     TEXT NOT NULL DEFAULT '',
		company                   TEXT NOT NULL DEFAULT '',
		status                    TEXT NOT NULL DEFAULT '',
		source                    TEXT NOT NULL DEFAULT '',
		landing_page              TEXT NOT NULL DEFAULT '',
		practice_area             TEXT NOT NULL DEFAULT '',
		office_location           TEXT NOT NULL DEFAULT '',
		type_of_civil_law         TEXT NOT NULL DEFAULT '',
		owner_name                TEXT NOT NULL DEFAULT '',
		intake_attorney_name      TEXT NOT NULL DEFAULT '',
		team_lead                 TEXT NOT NULL DEFAULT '',
		created_at                TEXT NOT NULL,
		intake_completed_at       TEXT,
		first_call                BOOLEAN NOT NULL DEFAULT FALSE,
		post_consult_done         BOOLEAN NOT NULL DEFAULT FALSE,
		post_consult_completed_at TEXT,
		no_show                   BOOLEAN NOT NULL DEFAULT FALSE,
		test_market               BOOLEAN NOT NULL DEFAULT FALSE,
		disqualified_reason       TEXT NOT NULL DEFAULT '',
		date_fa_signed            TEXT,
		date_fa_sent              TEXT,
		date_first_payment        TEXT,
		conflict_history          TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS parties (
		id      TEXT PRIMARY KEY,
		type    TEXT NOT NULL,
		name    TEXT NOT NULL DEFAULT '',
		email   TEXT NOT NULL DEFAULT '',
		phone   TEXT NOT NULL DEFAULT '',
		company TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS matters (
		id                   TEXT PRIMARY KEY,
		name                 TEXT NOT NULL DEFAULT '',
		practice_area        TEXT NOT NULL DEFAULT '',
		stage                TEXT NOT NULL DEFAULT '',
		status               TEXT NOT NULL DEFAULT '',
		responsible_attorney TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id                   TEXT PRIMARY KEY,
		number               TEXT NOT NULL DEFAULT '',
		issued_on            TEXT NOT NULL,
		status               TEXT NOT NULL DEFAULT '',
		team                 TEXT NOT NULL DEFAULT '',
		matter               TEXT NOT NULL DEFAULT '',
		responsible_attorney TEXT NOT NULL DEFAULT '',
		currency             TEXT NOT NULL DEFAULT 'USD',
		total_cents          BIGINT NOT NULL DEFAULT 0,
		paid_cents           BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id           TEXT PRIMARY KEY,
		invoice_id   TEXT NOT NULL REFERENCES invoices (id),
		received_on  TEXT NOT NULL,
		method       TEXT NOT NULL DEFAULT '',
		reference    TEXT NOT NULL DEFAULT '',
		currency     TEXT NOT NULL DEFAULT 'USD',
		amount_cents BIGINT NOT NULL DEFAULT 0,
		credit_note  BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS time_entries (
		id                   TEXT PRIMARY KEY,
		user_id              TEXT NOT NULL DEFAULT '',
		user_name            TEXT NOT NULL DEFAULT '',
		team                 TEXT NOT NULL DEFAULT '',
		date                 TEXT NOT NULL,
		matter               TEXT NOT NULL DEFAULT '',
		responsible_attorney TEXT NOT NULL DEFAULT '',
		note                 TEXT NOT NULL DEFAULT '',
		hours                {{float}} NOT NULL DEFAULT 0,
		currency             TEXT NOT NULL DEFAULT 'USD',
		rate_cents           BIGINT NOT NULL DEFAULT 0,
		billable             BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_invoice ON payments (invoice_id)`,
	`CREATE INDEX IF NOT EXISTS idx_time_entries_date ON time_entries (date)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_created ON leads (created_at)`,
}

func ddl(d, stmt string) string {
	float := "REAL"
	if d == dialect.Postgres {
		float = "DOUBLE PRECISION"
	}
	return strings.ReplaceAll(stmt, "{{float}}", float)
}

// Migrate creates every table and adds intake columns missing from an
// existing intakes table. It is safe to run on every start.
func (s *Store) Migrate(ctx context.Context, intakeColumns []string) error {
	stmts := append([]string{}, tables...)
	stmts = append(stmts, intakeTableDDL(intakeColumns))
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, ddl(s.dialect, stmt)); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return s.AddIntakeColumns(ctx, intakeColumns)
}
