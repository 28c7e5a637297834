package limiter

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "login:attempts:"

// RedisLimiter counts attempts in Redis so every replica shares the same view.
type RedisLimiter struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

// NewRedisLimiter builds a limiter allowing maxAttempts per window.
func NewRedisLimiter(client *redis.Client, maxAttempts int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, maxAttempts: int64(maxAttempts), window: window}
}

// Allow increments the counter and arms its expiry on the first hit only, so
// the window runs from the first attempt rather than the latest one.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	key = redisKeyPrefix + key
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return true, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			// A counter without a TTL would lock the account for good.
			l.client.Del(ctx, key)
			return true, err
		}
	}
	return count <= l.maxAttempts, nil
}

// Success deletes the counter.
func (l *RedisLimiter) Success(ctx context.Context, key string) error {
	return l.client.Del(ctx, redisKeyPrefix+key).Err()
}
