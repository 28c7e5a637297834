package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/barbershop-api/internal/config"
	"github.com/spec-kit/barbershop-api/internal/limiter"
)

// Redis holds the client shared by login throttling and the health check.
type Redis struct {
	Client *redis.Client
	// Reachable records whether the startup ping succeeded.
	Reachable bool
}

// NewRedis connects to Redis using the provided configuration. An unreachable
// server is logged, not fatal.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	r := &Redis{Client: client}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		r.Reachable = true
		logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	}
	return r
}

// LoginLimiter returns the shared Redis limiter when the server answered at
// startup, and a per-process one otherwise.
func (r *Redis) LoginLimiter(cfg config.LoginConfig, logger *zap.Logger) limiter.LoginLimiter {
	if r != nil && r.Reachable {
		return limiter.NewRedisLimiter(r.Client, cfg.MaxFailures, cfg.LockWindow())
	}
	logger.Warn("login throttling falls back to in-process limiter")
	return limiter.NewMemoryLimiter(cfg.MaxFailures, cfg.LockWindow())
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
