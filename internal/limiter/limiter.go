// Package limiter throttles login attempts per account and auth requests per
// client address.
package limiter

import "context"

// LoginLimiter counts login attempts per key (the username) in a fixed window
// that opens with the first attempt. Allow reserves the attempt before any
// password is checked, so concurrent guesses cannot all slip past the count.
type LoginLimiter interface {
	// Allow counts an attempt for key and reports whether it may proceed.
	Allow(ctx context.Context, key string) (bool, error)
	// Success clears the window after a successful login.
	Success(ctx context.Context, key string) error
}
