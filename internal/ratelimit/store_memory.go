package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process fixed-window counter store. Windows
// expire lazily: the next increment after expiry restarts the count.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*windowEntry
	now     func() time.Time
}

type windowEntry struct {
	count   int64
	resetAt time.Time
}

// NewMemoryStore creates a MemoryStore using the local clock.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*windowEntry), now: time.Now}
}

// NewMemoryStoreWithClock creates a MemoryStore with an injected clock.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{windows: make(map[string]*windowEntry), now: now}
}

// Incr advances the counter for key, restarting the window if the
// previous one has elapsed.
func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry := s.windows[key]
	if entry == nil || !entry.resetAt.After(now) {
		entry = &windowEntry{resetAt: now.Add(window)}
		s.windows[key] = entry
	}
	entry.count++
	return entry.count, entry.resetAt.Sub(now), nil
}
