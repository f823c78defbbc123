package otp

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no challenge is stored for a phone number.
var ErrNotFound = errors.New("otp challenge not found")

// Challenge is the pending code for a phone number. A zero ExpiresAt never expires.
type Challenge struct {
	Phone     string    `json:"phone_number"`
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the challenge is past its expiry at now.
func (c Challenge) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Store keeps at most one challenge per phone number. Put overwrites.
type Store interface {
	Put(ctx context.Context, challenge Challenge) error
	Get(ctx context.Context, phone string) (Challenge, error)
	Delete(ctx context.Context, phone string) error
}
