package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/loandesk/loandesk/internal/decision"
	"github.com/loandesk/loandesk/internal/keylock"
	"github.com/loandesk/loandesk/internal/logging"
	"github.com/loandesk/loandesk/internal/notification"
	"github.com/loandesk/loandesk/internal/validation"
)

// Service accepts, validates and decides loan applications.
type Service struct {
	repo     Repository
	notifier notification.Notifier
	logger   *slog.Logger
	locks    *keylock.Locker
	now      func() time.Time
}

// NewService builds an application service instance.
func NewService(repo Repository, notifier notification.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{repo: repo, notifier: notifier, logger: logger, locks: keylock.New(), now: time.Now}
}

// Status returns the application for phone, if any.
func (s *Service) Status(ctx context.Context, phone string) (Application, bool, error) {
	app, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Application{}, false, nil
		}
		return Application{}, false, err
	}
	return app, true, nil
}

// Submit validates input, runs the decision engine and stores the result. An
// active application for the same phone blocks the submission before any field
// is validated. Validation failures are returned as validation.Errors and leave
// the store untouched.
func (s *Service) Submit(ctx context.Context, phone string, input validation.ApplicationInput) (Application, error) {
	unlock := s.locks.Lock(phone)
	defer unlock()

	existing, err := s.repo.FindByPhone(ctx, phone)
	switch {
	case err == nil:
		if existing.Status.Active() {
			return Application{}, ErrApplicationExists
		}
	case !errors.Is(err, ErrNotFound):
		return Application{}, fmt.Errorf("load application: %w", err)
	}

	now := s.now()
	valid, err := validation.ValidateApplication(input, now)
	if err != nil {
		return Application{}, err
	}

	status := decision.Decide(valid.Age, valid.LoanAmount)
	app := Application{
		ID:             uuid.NewString(),
		Phone:          phone,
		FullName:       valid.FullName,
		NationalID:     valid.NationalID,
		Email:          valid.Email,
		DateOfBirth:    valid.DateOfBirth,
		LoanAmount:     valid.LoanAmount,
		LoanTerm:       valid.LoanTerm,
		Purpose:        valid.Purpose,
		Status:         status,
		DecisionReason: decision.Reason,
		SubmittedAt:    now.UTC(),
	}

	if err := s.repo.CreateUnlessActive(ctx, app); err != nil {
		if errors.Is(err, ErrApplicationExists) {
			return Application{}, err
		}
		return Application{}, fmt.Errorf("store application: %w", err)
	}

	s.logger.InfoContext(ctx, "application decided",
		slog.String("application_id", app.ID),
		slog.String("phone", logging.MaskPhone(phone)),
		slog.String("status", string(app.Status)),
		slog.String("loan_amount", app.LoanAmount.String()),
		slog.Int("loan_term", app.LoanTerm),
	)

	if s.notifier != nil {
		msg := notification.Message{
			Kind:        notification.KindApplicationDecision,
			Destination: phone,
			Body:        fmt.Sprintf("Your loan application %s is %s", app.ID, app.Status),
		}
		if err := s.notifier.Send(ctx, msg); err != nil {
			s.logger.WarnContext(ctx, "decision notification failed", slog.String("application_id", app.ID), slog.Any("error", err))
		}
	}

	return app, nil
}
