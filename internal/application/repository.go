package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/loandesk/loandesk/internal/decision"
)

var (
	// ErrNotFound is returned when a phone number has no application.
	ErrNotFound = errors.New("application not found")
	// ErrApplicationExists blocks a submission while an active application exists.
	ErrApplicationExists = errors.New("Application already exists")
)

// Repository persists applications keyed by phone number.
type Repository interface {
	FindByPhone(ctx context.Context, phone string) (Application, error)
	// CreateUnlessActive stores app as the record for app.Phone unless the current
	// record is active, in which case it returns ErrApplicationExists. The check
	// and the write are atomic.
	CreateUnlessActive(ctx context.Context, app Application) error
}

// PostgresRepository stores applications in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindByPhone fetches the application for a phone number.
func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (Application, error) {
	row := r.db.QueryRow(ctx, `SELECT id, phone_number, full_name, national_id, email,
        to_char(date_of_birth, 'YYYY-MM-DD'), loan_amount::text, loan_term, purpose, status,
        decision_reason, submitted_at
        FROM applications WHERE phone_number = $1`, phone)
	var (
		app         Application
		id          uuid.UUID
		amount      string
		status      string
		submittedAt time.Time
	)
	if err := row.Scan(&id, &app.Phone, &app.FullName, &app.NationalID, &app.Email, &app.DateOfBirth,
		&amount, &app.LoanTerm, &app.Purpose, &status, &app.DecisionReason, &submittedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Application{}, ErrNotFound
		}
		return Application{}, err
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return Application{}, fmt.Errorf("parse loan amount: %w", err)
	}
	app.ID = id.String()
	app.LoanAmount = parsed
	app.Status = decision.Status(status)
	app.SubmittedAt = submittedAt.UTC()
	return app, nil
}

// CreateUnlessActive serializes writers on the phone number with an advisory lock
// so that concurrent submissions from several processes cannot both succeed.
func (r *PostgresRepository) CreateUnlessActive(ctx context.Context, app Application) error {
	appID, err := uuid.Parse(app.ID)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, app.Phone); err != nil {
		return fmt.Errorf("lock applicant: %w", err)
	}

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM applications WHERE phone_number = $1 FOR UPDATE`, app.Phone).Scan(&status)
	switch {
	case err == nil:
		if decision.Status(status).Active() {
			return ErrApplicationExists
		}
	case !errors.Is(err, pgx.ErrNoRows):
		return err
	}

	if _, err := tx.Exec(ctx, `INSERT INTO applications (id, phone_number, full_name, national_id, email,
        date_of_birth, loan_amount, loan_term, purpose, status, decision_reason, submitted_at)
        VALUES ($1, $2, $3, $4, $5, $6::date, $7::numeric, $8, $9, $10, $11, $12)
        ON CONFLICT (phone_number) DO UPDATE SET
            id = EXCLUDED.id,
            full_name = EXCLUDED.full_name,
            national_id = EXCLUDED.national_id,
            email = EXCLUDED.email,
            date_of_birth = EXCLUDED.date_of_birth,
            loan_amount = EXCLUDED.loan_amount,
            loan_term = EXCLUDED.loan_term,
            purpose = EXCLUDED.purpose,
            status = EXCLUDED.status,
            decision_reason = EXCLUDED.decision_reason,
            submitted_at = EXCLUDED.submitted_at`,
		appID, app.Phone, app.FullName, app.NationalID, app.Email, app.DateOfBirth, app.LoanAmount.String(),
		app.LoanTerm, app.Purpose, string(app.Status), app.DecisionReason, app.SubmittedAt.UTC()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
