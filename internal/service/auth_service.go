package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/favorite-board/internal/auth"
	"github.com/spec-kit/favorite-board/internal/domain"
	"github.com/spec-kit/favorite-board/internal/events"
	"github.com/spec-kit/favorite-board/internal/observability"
	"github.com/spec-kit/favorite-board/internal/repository"
)

// DefaultMagicLinkTTL is how long an issued login token stays valid.
const DefaultMagicLinkTTL = time.Hour

// AuthService issues and redeems magic link tokens.
type AuthService struct {
	principals repository.PrincipalRepository
	tokenMgr   *auth.TokenManager
	throttle   auth.Throttle
	dispatcher events.Dispatcher
	logger     *zap.Logger
	baseURL    string
	linkTTL    time.Duration
	now        func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	PrincipalRepo repository.PrincipalRepository
	TokenManager  *auth.TokenManager
	Throttle      auth.Throttle
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	BaseURL       string
	MagicLinkTTL  time.Duration
	Now           func() time.Time
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	s := &AuthService{
		principals: deps.PrincipalRepo,
		tokenMgr:   deps.TokenManager,
		throttle:   deps.Throttle,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		baseURL:    deps.BaseURL,
		linkTTL:    deps.MagicLinkTTL,
		now:        deps.Now,
	}
	if s.throttle == nil {
		s.throttle = auth.NoopThrottle{}
	}
	if s.linkTTL <= 0 {
		s.linkTTL = DefaultMagicLinkTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// RequestMagicLink issues a fresh token for the identifier, superseding any earlier one,
// and queues the login link for delivery. Delivery problems never reach the caller.
func (s *AuthService) RequestMagicLink(ctx context.Context, identifier string) error {
	email := domain.NormalizeEmail(identifier)

	allowed, err := s.throttle.Allow(ctx, email)
	if err != nil {
		s.logger.Warn("login throttle unavailable; allowing request", zap.Error(err))
	}
	if !allowed {
		return ErrTooManyRequests
	}

	token, err := auth.GenerateMagicToken()
	if err != nil {
		return err
	}
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.linkTTL)

	if err := s.principals.SetToken(ctx, email, auth.DigestToken(token), expiresAt); err != nil {
		return storeUnavailable("set token", err)
	}
	s.logger.Info("magic link issued", zap.String("email", email), zap.Time("expires_at", expiresAt))

	if s.dispatcher != nil {
		event := events.NewEvent(events.EventMagicLinkRequested, email, issuedAt, events.MagicLinkRequestedPayload{
			Email:     email,
			LoginURL:  auth.LoginURL(s.baseURL, token),
			ExpiresAt: expiresAt,
		})
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("magic link delivery not queued", zap.String("email", email), zap.Error(err))
		}
	}
	return nil
}

// ValidateToken redeems a token exactly once. Unknown and expired tokens both yield
// ErrInvalidOrExpired; which one it was only shows up in debug logs.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*domain.Principal, error) {
	if token == "" {
		return nil, ErrInvalidOrExpired
	}
	digest := auth.DigestToken(token)

	principal, err := s.principals.ConsumeToken(ctx, digest, s.now())
	if err == nil {
		s.logger.Info("magic link redeemed", zap.String("email", principal.Email))
		return principal, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeUnavailable("consume token", err)
	}

	s.logger.Debug("magic link rejected",
		zap.String("token", observability.TokenPrefix(token)),
		zap.String("reason", s.rejectionReason(ctx, digest)))
	return nil, ErrInvalidOrExpired
}

func (s *AuthService) rejectionReason(ctx context.Context, digest string) string {
	holder, err := s.principals.FindByTokenDigest(ctx, digest)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return "unknown"
	case err != nil:
		return "lookup_failed"
	case holder.TokenExpiresAt == nil:
		return "unknown"
	default:
		return "expired since " + holder.TokenExpiresAt.Format(time.RFC3339)
	}
}

// Login redeems the token and elevates the caller to a signed session.
func (s *AuthService) Login(ctx context.Context, token string) (*domain.Principal, string, time.Time, error) {
	principal, err := s.ValidateToken(ctx, token)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	session, exp, err := s.tokenMgr.GenerateToken(domain.SessionFor(principal))
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return principal, session, exp, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
