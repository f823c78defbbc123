package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/loandesk/loandesk/internal/identity"
	"github.com/loandesk/loandesk/internal/keylock"
	"github.com/loandesk/loandesk/internal/logging"
	"github.com/loandesk/loandesk/internal/notification"
	"github.com/loandesk/loandesk/internal/otp"
	"github.com/loandesk/loandesk/internal/session"
	"github.com/loandesk/loandesk/internal/validation"
)

var (
	// ErrInvalidPhone rejects a malformed phone number before any OTP lookup.
	ErrInvalidPhone = errors.New("Invalid phone number format")
	// ErrInvalidOTP covers both a missing challenge and a wrong code.
	ErrInvalidOTP = errors.New("Invalid OTP")
	// ErrUnauthorized is returned for missing or unknown session tokens.
	ErrUnauthorized = errors.New("Unauthorized")
)

// Service runs the request-otp / verify-otp flow and resolves bearer tokens.
type Service struct {
	policy     otp.Policy
	challenges otp.Store
	sessions   session.Store
	identities *identity.Service
	notifier   notification.Notifier
	logger     *slog.Logger
	locks      *keylock.Locker
	now        func() time.Time
}

// Deps groups the collaborators of Service.
type Deps struct {
	Policy     otp.Policy
	Challenges otp.Store
	Sessions   session.Store
	Identities *identity.Service
	Notifier   notification.Notifier
	Logger     *slog.Logger
}

func NewService(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{
		policy:     d.Policy,
		challenges: d.Challenges,
		sessions:   d.Sessions,
		identities: d.Identities,
		notifier:   d.Notifier,
		logger:     logger,
		locks:      keylock.New(),
		now:        time.Now,
	}
}

// RequestOTP (re)issues a challenge for phone, replacing any pending one.
func (s *Service) RequestOTP(ctx context.Context, phone string) (otp.Challenge, error) {
	phone = strings.TrimSpace(phone)
	if _, err := validation.PhoneNumber(phone); err != nil {
		return otp.Challenge{}, ErrInvalidPhone
	}

	ch, err := s.policy.Issue(phone, s.now())
	if err != nil {
		return otp.Challenge{}, err
	}
	if err := s.challenges.Put(ctx, ch); err != nil {
		return otp.Challenge{}, fmt.Errorf("store otp: %w", err)
	}

	s.logger.InfoContext(ctx, "otp issued", slog.String("phone", logging.MaskPhone(phone)))
	if s.notifier != nil {
		msg := notification.Message{
			Kind:        notification.KindOTPIssued,
			Destination: phone,
			Body:        fmt.Sprintf("Your verification code is %s", ch.Code),
		}
		if err := s.notifier.Send(ctx, msg); err != nil {
			s.logger.WarnContext(ctx, "otp delivery failed", slog.String("phone", logging.MaskPhone(phone)), slog.Any("error", err))
		}
	}
	return ch, nil
}

// VerifyOTP checks code against the stored challenge for the identical phone
// string and, on success, opens a new session and lazily creates the identity.
func (s *Service) VerifyOTP(ctx context.Context, phone, code string) (session.Session, error) {
	phone = strings.TrimSpace(phone)
	code = strings.TrimSpace(code)
	if _, err := validation.PhoneNumber(phone); err != nil {
		return session.Session{}, ErrInvalidPhone
	}

	unlock := s.locks.Lock(phone)
	defer unlock()

	now := s.now()
	ch, err := s.challenges.Get(ctx, phone)
	if err != nil {
		if errors.Is(err, otp.ErrNotFound) {
			return session.Session{}, ErrInvalidOTP
		}
		return session.Session{}, fmt.Errorf("load otp: %w", err)
	}
	if ch.Expired(now) {
		if err := s.challenges.Delete(ctx, phone); err != nil {
			s.logger.WarnContext(ctx, "drop expired otp", slog.Any("error", err))
		}
		return session.Session{}, ErrInvalidOTP
	}
	if !s.policy.Matches(ch.Code, code) {
		s.logger.WarnContext(ctx, "otp verification failed", slog.String("phone", logging.MaskPhone(phone)))
		return session.Session{}, ErrInvalidOTP
	}
	if s.policy.SingleUse {
		if err := s.challenges.Delete(ctx, phone); err != nil {
			return session.Session{}, fmt.Errorf("consume otp: %w", err)
		}
	}

	if _, err := s.identities.Ensure(ctx, phone); err != nil {
		return session.Session{}, fmt.Errorf("ensure identity: %w", err)
	}
	sess := session.Session{Token: session.NewToken(), Phone: phone, CreatedAt: now.UTC()}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return session.Session{}, fmt.Errorf("create session: %w", err)
	}

	s.logger.InfoContext(ctx, "session created", slog.String("phone", logging.MaskPhone(phone)))
	return sess, nil
}

// Authenticate resolves a bearer token to its session.
func (s *Service) Authenticate(ctx context.Context, token string) (session.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return session.Session{}, ErrUnauthorized
	}
	sess, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return session.Session{}, ErrUnauthorized
		}
		return session.Session{}, fmt.Errorf("lookup session: %w", err)
	}
	return sess, nil
}
