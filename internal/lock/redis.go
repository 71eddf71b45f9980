package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
)

const keyPrefix = "brass:lock:"

// RedisLocker holds keys as redislock leases. Leases expire after ttl so a crashed
// instance cannot block a product forever.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
}

func NewRedisLocker(client *redislock.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{client: client, ttl: ttl}
}

func (r *RedisLocker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	keys = normalize(keys)
	held := make([]*redislock.Lock, 0, len(keys))

	releaseAll := func() {
		// release with a fresh context; the request context may already be done
		bg := context.Background()
		for i := len(held) - 1; i >= 0; i-- {
			_ = held[i].Release(bg)
		}
	}

	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.ExponentialBackoff(10*time.Millisecond, 500*time.Millisecond), 20),
	}
	for _, k := range keys {
		l, err := r.client.Obtain(ctx, keyPrefix+k, r.ttl, opts)
		if err != nil {
			releaseAll()
			if errors.Is(err, redislock.ErrNotObtained) {
				return nil, ErrNotObtained
			}
			return nil, err
		}
		held = append(held, l)
	}

	var once sync.Once
	return func() { once.Do(releaseAll) }, nil
}
