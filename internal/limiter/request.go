package limiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type client struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RequestLimiter is a token bucket per client address for the unauthenticated
// auth routes. It caps request volume; per-account lockout is LoginLimiter's job.
type RequestLimiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	limit     rate.Limit
	burst     int
	perMinute int
	idle      time.Duration
	now       func() time.Time
}

// NewRequestLimiter allows perMinute requests per address, bursting to the
// same amount.
func NewRequestLimiter(perMinute int) *RequestLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &RequestLimiter{
		clients:   make(map[string]*client),
		limit:     rate.Limit(float64(perMinute) / 60),
		burst:     perMinute,
		perMinute: perMinute,
		idle:      10 * time.Minute,
		now:       time.Now,
	}
}

// Allow spends a token for addr.
func (l *RequestLimiter) Allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, ok := l.clients[addr]
	if !ok {
		if len(l.clients) >= pruneThreshold {
			l.prune(now)
		}
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[addr] = c
	}
	c.lastAccess = now
	return c.limiter.AllowN(now, 1)
}

// RetryAfter is how long a blocked client should wait for its next token.
func (l *RequestLimiter) RetryAfter() time.Duration {
	return time.Minute / time.Duration(l.perMinute)
}

// prune drops clients idle for longer than l.idle. Caller holds mu.
func (l *RequestLimiter) prune(now time.Time) {
	for addr, c := range l.clients {
		if now.Sub(c.lastAccess) > l.idle {
			delete(l.clients, addr)
		}
	}
}
