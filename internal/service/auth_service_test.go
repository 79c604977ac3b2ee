package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/favorite-board/internal/auth"
	"github.com/spec-kit/favorite-board/internal/domain"
	"github.com/spec-kit/favorite-board/internal/service"
)

func TestIssueThenValidateOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	token := h.issueToken(t, "  A@Example.com ")

	principal, err := h.auth.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", principal.Email)
	assert.False(t, principal.IsAdmin)
	assert.False(t, principal.IsEditor)
	assert.True(t, principal.IsSubscribed)

	_, err = h.auth.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, service.ErrInvalidOrExpired)
}

func TestLoginMailContents(t *testing.T) {
	h := newHarness(t)
	token := h.issueToken(t, "a@example.com")

	msg := h.channel.Messages()[0]
	assert.Equal(t, "a@example.com", msg.Address)
	assert.Equal(t, "Login to New Favorite Child", msg.Subject)
	assert.Contains(t, msg.Body, auth.LoginURL(testBaseURL, token))
	assert.Contains(t, msg.Body, "expire in 1 hour")
	assert.Len(t, token, 43)
}

func TestStoredTokenIsDigest(t *testing.T) {
	h := newHarness(t)
	token := h.issueToken(t, "a@example.com")

	p, err := h.principals.Get(context.Background(), "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, p.TokenDigest)
	assert.Equal(t, auth.DigestToken(token), *p.TokenDigest)
	assert.Equal(t, h.clock.Now().Add(time.Hour), *p.TokenExpiresAt)
}

func TestValidateAfterExpiry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	token := h.issueToken(t, "a@example.com")

	h.clock.Advance(61 * time.Minute)

	_, err := h.auth.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, service.ErrInvalidOrExpired)

	p, err := h.principals.Get(ctx, "a@example.com")
	require.NoError(t, err)
	assert.NotNil(t, p.TokenDigest, "expired token is left in place")

	fresh := h.issueToken(t, "a@example.com")
	principal, err := h.auth.ValidateToken(ctx, fresh)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", principal.Email)
}

func TestValidateJustBeforeExpiry(t *testing.T) {
	h := newHarness(t)
	token := h.issueToken(t, "a@example.com")

	h.clock.Advance(time.Hour - time.Second)
	_, err := h.auth.ValidateToken(context.Background(), token)
	assert.NoError(t, err)
}

func TestValidateAtExactExpiryFails(t *testing.T) {
	h := newHarness(t)
	token := h.issueToken(t, "a@example.com")

	h.clock.Advance(time.Hour)
	_, err := h.auth.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, service.ErrInvalidOrExpired)
}

func TestReissueSupersedesEarlierToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first := h.issueToken(t, "a@example.com")
	second := h.issueToken(t, "a@example.com")
	require.NotEqual(t, first, second)

	_, err := h.auth.ValidateToken(ctx, first)
	assert.ErrorIs(t, err, service.ErrInvalidOrExpired)

	_, err = h.auth.ValidateToken(ctx, second)
	assert.NoError(t, err)
}

func TestRoleFlagsSurviveIssueAndValidate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.principals.UpsertRoles(ctx, &domain.Principal{
		Email: "boss@example.com", IsAdmin: true, IsEditor: true, IsSubscribed: false,
	}))

	token := h.issueToken(t, "boss@example.com")
	principal, err := h.auth.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.True(t, principal.IsAdmin)
	assert.True(t, principal.IsEditor)
	assert.False(t, principal.IsSubscribed)

	stored, err := h.principals.Get(ctx, "boss@example.com")
	require.NoError(t, err)
	assert.True(t, stored.IsAdmin)
	assert.True(t, stored.IsEditor)
	assert.False(t, stored.IsSubscribed)
	assert.Nil(t, stored.TokenDigest)
}

func TestUnknownAndEmptyTokens(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.auth.ValidateToken(ctx, "")
	assert.ErrorIs(t, err, service.ErrInvalidOrExpired)

	_, err = h.auth.ValidateToken(ctx, "never-issued")
	assert.ErrorIs(t, err, service.ErrInvalidOrExpired)
}

func TestDeliveryFailureDoesNotUndoToken(t *testing.T) {
	h := newHarness(t)
	h.channel.FailFor["a@example.com"] = true

	token := h.issueToken(t, "a@example.com")

	_, err := h.auth.ValidateToken(context.Background(), token)
	assert.NoError(t, err)
}

func TestConcurrentValidationHasOneWinner(t *testing.T) {
	h := newHarness(t)
	token := h.issueToken(t, "a@example.com")

	var (
		wg      sync.WaitGroup
		wins    atomic.Int32
		invalid atomic.Int32
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.auth.ValidateToken(context.Background(), token)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, service.ErrInvalidOrExpired):
				invalid.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(31), invalid.Load())
}

func TestStoreFailuresPropagate(t *testing.T) {
	down := errors.New("connection refused")
	h := newHarness(t, withPrincipals(failingPrincipals{err: down}))
	ctx := context.Background()

	err := h.auth.RequestMagicLink(ctx, "a@example.com")
	assert.ErrorIs(t, err, service.ErrStoreUnavailable)
	assert.ErrorIs(t, err, down)

	_, err = h.auth.ValidateToken(ctx, "whatever")
	assert.ErrorIs(t, err, service.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, service.ErrInvalidOrExpired)

	assert.Empty(t, h.channel.Messages())
}

func TestThrottleDeniesWithoutIssuing(t *testing.T) {
	h := newHarness(t, withThrottle(denyThrottle{}))
	ctx := context.Background()

	err := h.auth.RequestMagicLink(ctx, "a@example.com")
	assert.ErrorIs(t, err, service.ErrTooManyRequests)

	_, err = h.principals.Get(ctx, "a@example.com")
	assert.Error(t, err)
}

func TestLoginElevatesSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.principals.UpsertRoles(ctx, &domain.Principal{Email: "ed@example.com", IsEditor: true, IsSubscribed: true}))

	token := h.issueToken(t, "ed@example.com")
	principal, session, exp, err := h.auth.Login(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "ed@example.com", principal.Email)
	assert.False(t, exp.IsZero())
	assert.Equal(t, 2, strings.Count(session, "."))

	claims, err := h.auth.TokenManager().ParseToken(session)
	require.NoError(t, err)
	assert.Equal(t, domain.Session{Email: "ed@example.com", IsEditor: true}, claims.Session())

	_, _, _, err = h.auth.Login(ctx, token)
	assert.ErrorIs(t, err, service.ErrInvalidOrExpired)
}

func TestThrottleErrorsFailOpen(t *testing.T) {
	h := newHarness(t, withThrottle(brokenThrottle{}))

	token := h.issueToken(t, "a@example.com")

	principal, err := h.auth.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", principal.Email)
}
