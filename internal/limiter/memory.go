package limiter

import (
	"context"
	"sync"
	"time"
)

const pruneThreshold = 10000

type window struct {
	count   int
	expires time.Time
}

// MemoryLimiter keeps per-process attempt windows. It is the fallback when
// Redis is unreachable, so replicas do not share counts.
type MemoryLimiter struct {
	mu          sync.Mutex
	windows     map[string]*window
	maxAttempts int
	length      time.Duration
	now         func() time.Time
}

// NewMemoryLimiter builds a limiter allowing maxAttempts per window.
func NewMemoryLimiter(maxAttempts int, length time.Duration) *MemoryLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	if length <= 0 {
		length = time.Minute
	}
	return &MemoryLimiter{
		windows:     make(map[string]*window),
		maxAttempts: maxAttempts,
		length:      length,
		now:         time.Now,
	}
}

// Allow counts the attempt and reports whether it is within the limit.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.expires) {
		if !ok && len(l.windows) >= pruneThreshold {
			l.prune(now)
		}
		w = &window{expires: now.Add(l.length)}
		l.windows[key] = w
	}
	w.count++
	return w.count <= l.maxAttempts, nil
}

// Success forgets key.
func (l *MemoryLimiter) Success(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
	return nil
}

// prune drops expired windows. Caller holds mu.
func (l *MemoryLimiter) prune(now time.Time) {
	for key, w := range l.windows {
		if !now.Before(w.expires) {
			delete(l.windows, key)
		}
	}
}
