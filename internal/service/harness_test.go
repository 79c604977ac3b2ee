package service_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/favorite-board/internal/auth"
	"github.com/spec-kit/favorite-board/internal/delivery"
	"github.com/spec-kit/favorite-board/internal/domain"
	"github.com/spec-kit/favorite-board/internal/events"
	"github.com/spec-kit/favorite-board/internal/observability"
	"github.com/spec-kit/favorite-board/internal/repository"
	"github.com/spec-kit/favorite-board/internal/service"
	"github.com/spec-kit/favorite-board/internal/worker"
)

const testBaseURL = "http://board.test"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	principals    *repository.MemoryPrincipalRepository
	favorites     *repository.MemoryFavoriteRepository
	channel       *delivery.RecordingChannel
	pool          *worker.Pool
	metrics       *observability.Metrics
	clock         *fakeClock
	auth          *service.AuthService
	notifications *service.NotificationService
	favoriteSvc   *service.FavoriteService
	subscriptions *service.SubscriptionService
	users         *service.UserService
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	principals repository.PrincipalRepository
	channel    delivery.Channel
	throttle   auth.Throttle
}

func withPrincipals(repo repository.PrincipalRepository) harnessOption {
	return func(c *harnessConfig) { c.principals = repo }
}

func withChannel(ch delivery.Channel) harnessOption {
	return func(c *harnessConfig) { c.channel = ch }
}

func withThrottle(th auth.Throttle) harnessOption {
	return func(c *harnessConfig) { c.throttle = th }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	logger := zap.NewNop()

	h := &harness{
		principals: repository.NewMemoryPrincipalRepository(),
		favorites:  repository.NewMemoryFavoriteRepository(),
		channel:    &delivery.RecordingChannel{FailFor: map[string]bool{}},
		metrics:    observability.NewMetrics(),
		clock:      newFakeClock(),
	}
	cfg := harnessConfig{principals: h.principals, channel: h.channel}
	for _, opt := range opts {
		opt(&cfg)
	}

	h.pool = worker.NewPool(worker.Options{Workers: 4, QueueSize: 16, JobTimeout: time.Second}, logger)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.pool.Shutdown(ctx)
	})

	dispatcher := events.NewInMemoryDispatcher()
	h.notifications = service.NewNotificationService(service.NotificationDependencies{
		PrincipalRepo: cfg.principals,
		Channel:       cfg.channel,
		Pool:          h.pool,
		Dispatcher:    dispatcher,
		Metrics:       h.metrics,
		Logger:        logger,
		BaseURL:       testBaseURL,
	})
	h.notifications.RegisterHandlers()

	h.auth = service.NewAuthService(service.AuthDependencies{
		PrincipalRepo: cfg.principals,
		TokenManager:  auth.NewTokenManager("test-secret", 60),
		Throttle:      cfg.throttle,
		Dispatcher:    dispatcher,
		Logger:        logger,
		BaseURL:       testBaseURL,
		Now:           h.clock.Now,
	})
	h.favoriteSvc = service.NewFavoriteService(service.FavoriteDependencies{
		FavoriteRepo: h.favorites,
		Dispatcher:   dispatcher,
		Logger:       logger,
		Now:          h.clock.Now,
	})
	h.subscriptions = service.NewSubscriptionService(cfg.principals, logger)
	h.users = service.NewUserService(cfg.principals, logger)
	return h
}

// waitForMessages blocks until the recording channel has seen n sends.
func (h *harness) waitForMessages(t *testing.T, n int) []delivery.Message {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(h.channel.Messages()) >= n
	}, 2*time.Second, 5*time.Millisecond)
	return h.channel.Messages()
}

var loginLinkPattern = regexp.MustCompile(`/auth/magic/([A-Za-z0-9_-]+)`)

// issueToken requests a login link and returns the token carried in the delivered mail.
func (h *harness) issueToken(t *testing.T, email string) string {
	t.Helper()
	before := len(h.channel.Messages())
	require.NoError(t, h.auth.RequestMagicLink(context.Background(), email))

	messages := h.waitForMessages(t, before+1)
	match := loginLinkPattern.FindStringSubmatch(messages[before].Body)
	require.Len(t, match, 2, "login mail carries a link")
	return match[1]
}

type failingPrincipals struct {
	repository.PrincipalRepository
	err error
}

func (f failingPrincipals) SetToken(context.Context, string, string, time.Time) error {
	return f.err
}

func (f failingPrincipals) ConsumeToken(context.Context, string, time.Time) (*domain.Principal, error) {
	return nil, f.err
}

func (f failingPrincipals) ListSubscribed(context.Context) ([]*domain.Principal, error) {
	return nil, f.err
}

func (f failingPrincipals) SetSubscribed(context.Context, string, bool) error {
	return f.err
}

type denyThrottle struct{}

func (denyThrottle) Allow(context.Context, string) (bool, error) { return false, nil }

// brokenThrottle allows every request but reports a backend error.
type brokenThrottle struct{}

func (brokenThrottle) Allow(context.Context, string) (bool, error) {
	return true, errors.New("redis: connection refused")
}

type panickingChannel struct{}

func (panickingChannel) Send(context.Context, string, string, string) error {
	panic("smtp client exploded")
}
