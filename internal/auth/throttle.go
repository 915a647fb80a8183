package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultThrottlePrefix = "ideas:login:failures:"

// attemptScript increments the counter and starts the window on the first attempt.
var attemptScript = redis.NewScript(`
	local count = redis.call('INCR', KEYS[1])
	if count == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return count
`)

// LoginThrottle caps login attempts per identifier in a fixed Redis window.
// A nil *LoginThrottle never blocks.
type LoginThrottle struct {
	client      *redis.Client
	prefix      string
	maxFailures int
	window      time.Duration
}

// NewLoginThrottle builds a throttle. maxFailures <= 0 disables it.
func NewLoginThrottle(client *redis.Client, maxFailures int, window time.Duration) *LoginThrottle {
	if client == nil || maxFailures <= 0 || window <= 0 {
		return nil
	}
	return &LoginThrottle{
		client:      client,
		prefix:      defaultThrottlePrefix,
		maxFailures: maxFailures,
		window:      window,
	}
}

func (t *LoginThrottle) key(identifier string) string {
	return t.prefix + strings.ToLower(identifier)
}

// Attempt reserves one login attempt for identifier in the current window and
// reports whether it is allowed. Attempts stay counted until Reset, so only a
// successful login gives the budget back.
func (t *LoginThrottle) Attempt(ctx context.Context, identifier string) (bool, int, error) {
	if t == nil {
		return true, 0, nil
	}
	count, err := attemptScript.Run(ctx, t.client, []string{t.key(identifier)}, t.window.Milliseconds()).Int64()
	if err != nil {
		return true, 0, fmt.Errorf("login throttle: record attempt: %w", err)
	}
	return int(count) <= t.maxFailures, int(count), nil
}

// Reset clears the failure count after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, identifier string) error {
	if t == nil {
		return nil
	}
	if err := t.client.Del(ctx, t.key(identifier)).Err(); err != nil {
		return fmt.Errorf("login throttle: reset: %w", err)
	}
	return nil
}
