// Package ratelimit caps sensitive-endpoint call frequency per client
// IP with fixed windows. Distinct scopes never share counters.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Scope names one rate-limited endpoint family.
type Scope string

const (
	ScopeLogin    Scope = "login"
	ScopeRegister Scope = "register"
	ScopeSMS      Scope = "sms"
)

// Result reports the outcome of one rate-limit check.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Store advances the counter for a key within a fixed window and
// returns the new count plus the time left until the window resets.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

// Limiter enforces per-scope, per-IP ceilings over a Store.
type Limiter struct {
	store  Store
	window time.Duration
	limits map[Scope]int
}

// NewLimiter creates a Limiter with per-scope ceilings.
func NewLimiter(store Store, window time.Duration, limits map[Scope]int) *Limiter {
	return &Limiter{store: store, window: window, limits: limits}
}

// Allow counts the request and reports whether it is within the
// scope's ceiling. The request is counted even when rejected.
func (l *Limiter) Allow(ctx context.Context, scope Scope, ip string) (*Result, error) {
	limit, ok := l.limits[scope]
	if !ok || limit <= 0 {
		return &Result{Allowed: true}, nil
	}

	key := fmt.Sprintf("rl:%s:%s", scope, ip)
	count, ttl, err := l.store.Incr(ctx, key, l.window)
	if err != nil {
		return nil, fmt.Errorf("rate limit store error for scope %s: %w", scope, err)
	}

	if count > int64(limit) {
		return &Result{Allowed: false, RetryAfter: ttl}, nil
	}
	return &Result{Allowed: true, Remaining: limit - int(count)}, nil
}
