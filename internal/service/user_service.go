package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/favorite-board/internal/domain"
	"github.com/spec-kit/favorite-board/internal/repository"
)

// UserService covers admin-side management of principals.
type UserService struct {
	principals repository.PrincipalRepository
	logger     *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(principals repository.PrincipalRepository, logger *zap.Logger) *UserService {
	return &UserService{principals: principals, logger: logger}
}

// UserInput carries the flags an admin may set.
type UserInput struct {
	Email        string
	IsAdmin      bool
	IsEditor     bool
	IsSubscribed bool
}

// AddUser creates the principal or overwrites its flags. A pending login token survives.
func (s *UserService) AddUser(ctx context.Context, input UserInput) (*domain.Principal, error) {
	email := domain.NormalizeEmail(input.Email)
	if !domain.ValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	principal := &domain.Principal{
		Email:        email,
		IsAdmin:      input.IsAdmin,
		IsEditor:     input.IsEditor,
		IsSubscribed: input.IsSubscribed,
	}
	if err := s.principals.UpsertRoles(ctx, principal); err != nil {
		return nil, storeUnavailable("upsert roles", err)
	}
	s.logger.Info("user flags updated",
		zap.String("email", email),
		zap.Bool("is_admin", principal.IsAdmin),
		zap.Bool("is_editor", principal.IsEditor),
		zap.Bool("is_subscribed", principal.IsSubscribed))
	return principal, nil
}

// SetupAdmin grants admin and editor to the email and subscribes it.
func (s *UserService) SetupAdmin(ctx context.Context, email string) (*domain.Principal, error) {
	return s.AddUser(ctx, UserInput{Email: email, IsAdmin: true, IsEditor: true, IsSubscribed: true})
}

// ListUsers returns every principal ordered by email.
func (s *UserService) ListUsers(ctx context.Context) ([]*domain.Principal, error) {
	principals, err := s.principals.List(ctx)
	if err != nil {
		return nil, storeUnavailable("list users", err)
	}
	return principals, nil
}
