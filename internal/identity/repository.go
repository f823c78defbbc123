package identity

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no identity exists for a phone number.
var ErrNotFound = errors.New("user not found")

// Repository persists users.
type Repository interface {
	// Ensure stores user unless one already exists for the phone number and
	// returns whichever record is stored. created reports whether user was inserted.
	Ensure(ctx context.Context, user User) (stored User, created bool, err error)
	FindByPhone(ctx context.Context, phone string) (User, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Ensure inserts the user if the phone number is new.
func (r *PostgresRepository) Ensure(ctx context.Context, user User) (User, bool, error) {
	cmd, err := r.db.Exec(ctx, `INSERT INTO users (phone_number, created_at) VALUES ($1, $2)
        ON CONFLICT (phone_number) DO NOTHING`, user.Phone, user.CreatedAt.UTC())
	if err != nil {
		return User{}, false, err
	}
	if cmd.RowsAffected() == 1 {
		return user, true, nil
	}
	stored, err := r.FindByPhone(ctx, user.Phone)
	return stored, false, err
}

// FindByPhone fetches a user by phone number.
func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT phone_number, created_at FROM users WHERE phone_number = $1`, phone)
	var (
		user      User
		createdAt time.Time
	)
	if err := row.Scan(&user.Phone, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.CreatedAt = createdAt.UTC()
	return user, nil
}
