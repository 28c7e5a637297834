package limiter

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseBlocking(t *testing.T, l LoginLimiter) {
	t.Helper()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i)
	}

	ok, err := l.Allow(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok, "blocked after max attempts")

	ok, err = l.Allow(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok, "other keys unaffected")

	require.NoError(t, l.Success(ctx, "a"))
	ok, err = l.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok, "success clears history")
}

// exerciseConcurrentAllow fires attempts in parallel; exactly limit of them may
// get through no matter how they interleave.
func exerciseConcurrentAllow(t *testing.T, l LoginLimiter, limit int) {
	t.Helper()
	const attempts = 50

	var allowed atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := l.Allow(context.Background(), "a")
			assert.NoError(t, err)
			if ok {
				allowed.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, limit, allowed.Load())
}

func TestMemoryLimiter(t *testing.T) {
	t.Parallel()
	exerciseBlocking(t, NewMemoryLimiter(3, time.Hour))
}

func TestMemoryLimiter_ConcurrentAttemptsAreCounted(t *testing.T) {
	t.Parallel()
	exerciseConcurrentAllow(t, NewMemoryLimiter(5, time.Hour), 5)
}

func TestMemoryLimiter_WindowRunsFromFirstAttempt(t *testing.T) {
	t.Parallel()

	now := time.Date(2030, time.March, 10, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(2, 15*time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "a")
	assert.True(t, ok)
	now = now.Add(10 * time.Minute)
	ok, _ = l.Allow(ctx, "a")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "a")
	assert.False(t, ok)

	// Blocked attempts do not push the window out.
	now = now.Add(5 * time.Minute)
	ok, _ = l.Allow(ctx, "a")
	assert.True(t, ok)
}

func TestMemoryLimiter_PruneDropsExpiredWindows(t *testing.T) {
	t.Parallel()

	now := time.Date(2030, time.March, 10, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(2, time.Hour)
	l.now = func() time.Time { return now }
	ctx := context.Background()
	_, _ = l.Allow(ctx, "idle")
	now = now.Add(2 * time.Hour)
	_, _ = l.Allow(ctx, "busy")

	l.mu.Lock()
	l.prune(now)
	_, kept := l.windows["busy"]
	_, idleKept := l.windows["idle"]
	l.mu.Unlock()
	assert.True(t, kept)
	assert.False(t, idleKept)
}

func newRedisLimiter(t *testing.T, limit int) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLimiter(client, limit, 15*time.Minute), mr
}

func TestRedisLimiter(t *testing.T) {
	l, _ := newRedisLimiter(t, 3)
	exerciseBlocking(t, l)
}

func TestRedisLimiter_ConcurrentAttemptsAreCounted(t *testing.T) {
	l, _ := newRedisLimiter(t, 5)
	exerciseConcurrentAllow(t, l, 5)
}

func TestRedisLimiter_WindowRunsFromFirstAttempt(t *testing.T) {
	l, mr := newRedisLimiter(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 15*time.Minute, mr.TTL(redisKeyPrefix+"a"))

	mr.FastForward(10 * time.Minute)
	ok, err := l.Allow(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 5*time.Minute, mr.TTL(redisKeyPrefix+"a"), "later attempts keep the original expiry")

	mr.FastForward(6 * time.Minute)
	ok, err = l.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiter_ErrorsSurface(t *testing.T) {
	l, mr := newRedisLimiter(t, 3)
	mr.Close()

	ok, err := l.Allow(context.Background(), "a")
	assert.Error(t, err)
	assert.True(t, ok)
	assert.Error(t, l.Success(context.Background(), "a"))
}

func TestRequestLimiter(t *testing.T) {
	t.Parallel()

	now := time.Date(2030, time.March, 10, 12, 0, 0, 0, time.UTC)
	l := NewRequestLimiter(2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "addresses have separate buckets")
	assert.Equal(t, 30*time.Second, l.RetryAfter())

	now = now.Add(31 * time.Second)
	assert.True(t, l.Allow("10.0.0.1"), "one token back after refill interval")
	assert.False(t, l.Allow("10.0.0.1"))
}

func TestRequestLimiter_PruneDropsIdleClients(t *testing.T) {
	t.Parallel()

	now := time.Date(2030, time.March, 10, 12, 0, 0, 0, time.UTC)
	l := NewRequestLimiter(5)
	l.now = func() time.Time { return now }
	l.Allow("idle")
	now = now.Add(time.Hour)
	l.Allow("busy")

	l.mu.Lock()
	l.prune(now)
	_, kept := l.clients["busy"]
	_, idleKept := l.clients["idle"]
	l.mu.Unlock()
	assert.True(t, kept)
	assert.False(t, idleKept)
}
