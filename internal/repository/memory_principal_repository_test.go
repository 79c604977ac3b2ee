package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/favorite-board/internal/domain"
)

func TestMemoryPrincipalSetTokenCreatesWithDefaults(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPrincipalRepository()
	exp := time.Now().Add(time.Hour)

	require.NoError(t, repo.SetToken(ctx, "a@example.com", "d1", exp))

	p, err := repo.Get(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, p.IsSubscribed)
	assert.False(t, p.IsAdmin)
	assert.False(t, p.IsEditor)
	require.NotNil(t, p.TokenDigest)
	assert.Equal(t, "d1", *p.TokenDigest)
}

func TestMemoryPrincipalSetTokenKeepsFlags(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPrincipalRepository()
	require.NoError(t, repo.UpsertRoles(ctx, &domain.Principal{Email: "a@example.com", IsAdmin: true, IsEditor: true}))

	require.NoError(t, repo.SetToken(ctx, "a@example.com", "d1", time.Now().Add(time.Hour)))

	p, err := repo.Get(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, p.IsAdmin)
	assert.True(t, p.IsEditor)
	assert.False(t, p.IsSubscribed)
}

func TestMemoryPrincipalConsumeToken(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	repo := NewMemoryPrincipalRepository()
	require.NoError(t, repo.SetToken(ctx, "a@example.com", "d1", now.Add(time.Hour)))

	t.Run("expired token does not match and is left in place", func(t *testing.T) {
		_, err := repo.ConsumeToken(ctx, "d1", now.Add(time.Hour))
		assert.ErrorIs(t, err, ErrNotFound)

		p, err := repo.FindByTokenDigest(ctx, "d1")
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", p.Email)
	})

	t.Run("unknown digest", func(t *testing.T) {
		_, err := repo.ConsumeToken(ctx, "nope", now)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("live token is cleared once", func(t *testing.T) {
		p, err := repo.ConsumeToken(ctx, "d1", now)
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", p.Email)
		assert.Nil(t, p.TokenDigest)
		assert.Nil(t, p.TokenExpiresAt)

		_, err = repo.ConsumeToken(ctx, "d1", now)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryPrincipalConsumeTokenSingleWinner(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	repo := NewMemoryPrincipalRepository()
	require.NoError(t, repo.SetToken(ctx, "a@example.com", "race", now.Add(time.Hour)))

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.ConsumeToken(ctx, "race", now); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestMemoryPrincipalSubscribeOutcomes(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPrincipalRepository()

	outcome, err := repo.Subscribe(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.SubscribeCreated, outcome)

	outcome, err = repo.Subscribe(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.SubscribeAlreadyActive, outcome)

	require.NoError(t, repo.SetSubscribed(ctx, "b@example.com", false))
	outcome, err = repo.Subscribe(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.SubscribeResubscribed, outcome)
}

func TestMemoryPrincipalSetSubscribedMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPrincipalRepository()

	require.NoError(t, repo.SetSubscribed(ctx, "ghost@example.com", false))

	_, err := repo.Get(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryPrincipalListSubscribed(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPrincipalRepository()
	_, _ = repo.Subscribe(ctx, "c@example.com")
	_, _ = repo.Subscribe(ctx, "b@example.com")
	require.NoError(t, repo.UpsertRoles(ctx, &domain.Principal{Email: "z@example.com", IsAdmin: true}))

	subs, err := repo.ListSubscribed(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "b@example.com", subs[0].Email)
	assert.Equal(t, "c@example.com", subs[1].Email)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryPrincipalReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPrincipalRepository()
	require.NoError(t, repo.SetToken(ctx, "a@example.com", "d1", time.Now().Add(time.Hour)))

	p, err := repo.Get(ctx, "a@example.com")
	require.NoError(t, err)
	*p.TokenDigest = "tampered"
	p.IsAdmin = true

	again, err := repo.Get(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "d1", *again.TokenDigest)
	assert.False(t, again.IsAdmin)
}

func TestMemoryPrincipalNormalizesKeys(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPrincipalRepository()
	require.NoError(t, repo.UpsertRoles(ctx, &domain.Principal{Email: "a@x.com", IsAdmin: true, IsEditor: true}))

	require.NoError(t, repo.SetToken(ctx, " A@X.com", "d1", time.Now().Add(time.Hour)))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsAdmin)
	assert.True(t, all[0].IsEditor)
	require.NotNil(t, all[0].TokenDigest)

	p, err := repo.Get(ctx, "A@x.com")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", p.Email)

	outcome, err := repo.Subscribe(ctx, "A@X.COM")
	require.NoError(t, err)
	assert.Equal(t, domain.SubscribeResubscribed, outcome)

	require.NoError(t, repo.SetSubscribed(ctx, "A@x.com", false))
	p, err = repo.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, p.IsSubscribed)
}
