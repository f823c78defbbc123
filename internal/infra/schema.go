package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied on startup. Every statement is idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    phone_number TEXT PRIMARY KEY,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS applications (
    id              UUID NOT NULL,
    phone_number    TEXT PRIMARY KEY,
    full_name       TEXT NOT NULL,
    national_id     TEXT NOT NULL,
    email           TEXT NOT NULL DEFAULT '',
    date_of_birth   DATE NOT NULL,
    loan_amount     NUMERIC NOT NULL,
    loan_term       INTEGER NOT NULL,
    purpose         TEXT NOT NULL,
    status          TEXT NOT NULL,
    decision_reason TEXT NOT NULL,
    submitted_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS applications_status_idx ON applications (status);
`

// Migrate creates the tables the Postgres repositories expect.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if db == nil {
		return nil
	}
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
