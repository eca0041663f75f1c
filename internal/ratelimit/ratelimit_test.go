package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLimiter(now *time.Time) *Limiter {
	store := NewMemoryStoreWithClock(func() time.Time { return *now })
	return NewLimiter(store, time.Minute, map[Scope]int{
		ScopeLogin:    5,
		ScopeRegister: 3,
		ScopeSMS:      3,
	})
}

func TestLimiter_AllowsUpToLimit(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	limiter := testLimiter(&now)

	for i := 0; i < 5; i++ {
		res, err := limiter.Allow(context.Background(), ScopeLogin, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "attempt %d should pass", i+1)
		assert.Equal(t, 4-i, res.Remaining)
	}

	res, err := limiter.Allow(context.Background(), ScopeLogin, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
}

func TestLimiter_WindowResets(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	limiter := testLimiter(&now)

	for i := 0; i < 6; i++ {
		_, err := limiter.Allow(context.Background(), ScopeLogin, "10.0.0.1")
		require.NoError(t, err)
	}

	now = now.Add(61 * time.Second)

	res, err := limiter.Allow(context.Background(), ScopeLogin, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 4, res.Remaining)
}

func TestLimiter_ScopesAreIsolated(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	limiter := testLimiter(&now)

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(context.Background(), ScopeSMS, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
	res, err := limiter.Allow(context.Background(), ScopeSMS, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	// Exhausting the sms scope leaves login untouched
	res, err = limiter.Allow(context.Background(), ScopeLogin, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestLimiter_ClientsAreIsolated(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	limiter := testLimiter(&now)

	for i := 0; i < 6; i++ {
		_, err := limiter.Allow(context.Background(), ScopeLogin, "10.0.0.1")
		require.NoError(t, err)
	}

	res, err := limiter.Allow(context.Background(), ScopeLogin, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestLimiter_UnknownScopePasses(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	limiter := testLimiter(&now)

	res, err := limiter.Allow(context.Background(), Scope("export"), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

type brokenStore struct{ err error }

func (b *brokenStore) Incr(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return 0, 0, b.err
}

func TestLimiter_StoreErrorIsWrapped(t *testing.T) {
	cause := errors.New("redis down")
	limiter := NewLimiter(&brokenStore{err: cause}, time.Minute, map[Scope]int{ScopeLogin: 5})

	_, err := limiter.Allow(context.Background(), ScopeLogin, "10.0.0.1")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}
