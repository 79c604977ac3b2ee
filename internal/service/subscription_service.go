package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/favorite-board/internal/domain"
	"github.com/spec-kit/favorite-board/internal/repository"
)

// SubscriptionService flips the subscription flag. It never touches roles or tokens.
type SubscriptionService struct {
	principals repository.PrincipalRepository
	logger     *zap.Logger
}

// NewSubscriptionService constructs the service.
func NewSubscriptionService(principals repository.PrincipalRepository, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{principals: principals, logger: logger}
}

// Subscribe creates the principal or re-enables its subscription.
func (s *SubscriptionService) Subscribe(ctx context.Context, identifier string) (domain.SubscribeOutcome, error) {
	email := domain.NormalizeEmail(identifier)
	if !domain.ValidEmail(email) {
		return "", ErrInvalidEmail
	}
	outcome, err := s.principals.Subscribe(ctx, email)
	if err != nil {
		return "", storeUnavailable("subscribe", err)
	}
	s.logger.Info("subscribe", zap.String("email", email), zap.String("outcome", string(outcome)))
	return outcome, nil
}

// Unsubscribe is idempotent and silently ignores unknown identifiers.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, identifier string) error {
	email := domain.NormalizeEmail(identifier)
	if err := s.principals.SetSubscribed(ctx, email, false); err != nil {
		return storeUnavailable("unsubscribe", err)
	}
	s.logger.Info("unsubscribe", zap.String("email", email))
	return nil
}
