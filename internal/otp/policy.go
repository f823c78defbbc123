package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Generator produces the code for a new challenge.
type Generator interface {
	Generate() (string, error)
}

// FixedCode issues the same code every time.
type FixedCode string

func (f FixedCode) Generate() (string, error) {
	return string(f), nil
}

// RandomDigits issues a uniformly random numeric code of the given length.
type RandomDigits int

func (n RandomDigits) Generate() (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("otp length must be positive, got %d", int(n))
	}
	var b strings.Builder
	b.Grow(int(n))
	ten := big.NewInt(10)
	for i := 0; i < int(n); i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}

// Policy configures issuing and checking challenges. Zero-valued knobs mean no
// expiry, reusable codes and case-insensitive comparison.
type Policy struct {
	Generator Generator
	// TTL of zero means challenges never expire.
	TTL time.Duration
	// SingleUse deletes the challenge after a successful verification.
	SingleUse bool
	// StrictCompare switches to an exact, constant-time comparison.
	StrictCompare bool
}

// DefaultPolicy issues the fixed code "0000" with every knob at its zero value.
func DefaultPolicy() Policy {
	return Policy{Generator: FixedCode("0000")}
}

// Issue builds a new challenge for phone.
func (p Policy) Issue(phone string, now time.Time) (Challenge, error) {
	gen := p.Generator
	if gen == nil {
		gen = FixedCode("0000")
	}
	code, err := gen.Generate()
	if err != nil {
		return Challenge{}, fmt.Errorf("generate otp: %w", err)
	}
	ch := Challenge{Phone: phone, Code: code, IssuedAt: now.UTC()}
	if p.TTL > 0 {
		ch.ExpiresAt = ch.IssuedAt.Add(p.TTL)
	}
	return ch, nil
}

// Matches compares a submitted code against the stored one.
func (p Policy) Matches(stored, submitted string) bool {
	if stored == "" {
		return false
	}
	if p.StrictCompare {
		return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
	}
	return strings.EqualFold(stored, submitted)
}
