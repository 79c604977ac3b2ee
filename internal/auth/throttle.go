package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Throttle limits how often a login link may be requested for one identifier.
type Throttle interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// NoopThrottle allows everything.
type NoopThrottle struct{}

func (NoopThrottle) Allow(context.Context, string) (bool, error) { return true, nil }

// RedisThrottle is a fixed-window counter per key.
type RedisThrottle struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewRedisThrottle allows at most limit requests per key in each window.
func NewRedisThrottle(client *redis.Client, limit int, window time.Duration) *RedisThrottle {
	return &RedisThrottle{client: client, limit: limit, window: window, prefix: "magiclink:throttle:"}
}

// Allow increments the window counter and reports whether the key is still under the limit.
func (t *RedisThrottle) Allow(ctx context.Context, key string) (bool, error) {
	if t.limit <= 0 {
		return true, nil
	}
	redisKey := t.prefix + key

	pipe := t.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	// NX keeps the window anchored to the first request.
	pipe.ExpireNX(ctx, redisKey, t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("throttle %s: %w", key, err)
	}
	return incr.Val() <= int64(t.limit), nil
}
