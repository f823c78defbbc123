package identity

import (
	"context"
	"log/slog"
	"time"

	"github.com/loandesk/loandesk/internal/logging"
)

// Service manages the identity lifecycle.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new identity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Ensure lazily creates the identity for phone the first time it authenticates.
// Later calls return the original record untouched.
func (s *Service) Ensure(ctx context.Context, phone string) (User, error) {
	user, created, err := s.repo.Ensure(ctx, User{Phone: phone, CreatedAt: s.now().UTC()})
	if err != nil {
		return User{}, err
	}
	if created {
		s.logger.InfoContext(ctx, "identity created", slog.String("phone", logging.MaskPhone(phone)))
	}
	return user, nil
}

// Get returns the identity for phone.
func (s *Service) Get(ctx context.Context, phone string) (User, error) {
	return s.repo.FindByPhone(ctx, phone)
}
