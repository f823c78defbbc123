package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for tokens that were never issued.
var ErrNotFound = errors.New("session not found")

// Session binds an opaque bearer token to a phone number. Sessions do not expire
// and are never revoked; one phone may hold many.
type Session struct {
	Token     string    `json:"-"`
	Phone     string    `json:"phone_number"`
	CreatedAt time.Time `json:"created_at"`
}

// Store maps tokens to sessions.
type Store interface {
	Create(ctx context.Context, session Session) error
	Lookup(ctx context.Context, token string) (Session, error)
}

// NewToken mints a random UUIDv4 token.
func NewToken() string {
	return uuid.NewString()
}
