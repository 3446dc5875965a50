package ratelimit

import (
	"context"
	"sort"
	"sync"
	"time"
)

// DefaultMaxEntries is the soft cap on tracked keys before eviction kicks in.
const DefaultMaxEntries = 50000

type entry struct {
	count       int
	windowStart time.Time
	lastAccess  time.Time
}

// MemoryStore is an in-process fixed-window counter store. Expired windows
// are reset lazily on access; total memory is bounded by maxEntries, and on
// overflow the oldest ~10% of keys by last access are evicted. A periodic
// Sweep removes expired entries but is not required for correctness.
type MemoryStore struct {
	mu         sync.Mutex
	limit      int
	window     time.Duration
	maxEntries int
	entries    map[string]*entry
	now        func() time.Time
}

// NewMemoryStore creates a memory store allowing limit events per window.
func NewMemoryStore(limit int, window time.Duration) *MemoryStore {
	return &MemoryStore{
		limit:      limit,
		window:     window,
		maxEntries: DefaultMaxEntries,
		entries:    make(map[string]*entry),
		now:        time.Now,
	}
}

// Allow performs an atomic check-and-increment for key.
func (s *MemoryStore) Allow(_ context.Context, key string) (Decision, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		if len(s.entries) >= s.maxEntries {
			s.evictLocked()
		}
		e = &entry{windowStart: now}
		s.entries[key] = e
	}

	// Lazy expiry: a stale window resets on first access.
	if now.Sub(e.windowStart) >= s.window {
		e.count = 0
		e.windowStart = now
	}
	e.lastAccess = now

	if e.count >= s.limit {
		return Decision{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: e.windowStart.Add(s.window).Sub(now),
		}, nil
	}

	e.count++
	return Decision{Allowed: true, Remaining: s.limit - e.count}, nil
}

// Reset clears the counter for key.
func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Sweep removes entries whose window has fully expired. Meant to run
// periodically (e.g. hourly) as a memory optimization.
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.entries {
		if now.Sub(e.windowStart) >= s.window {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on the given interval until ctx is done.
func (s *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// evictLocked drops the oldest ~10% of entries by last access.
// Caller must hold s.mu.
func (s *MemoryStore) evictLocked() {
	n := len(s.entries) / 10
	if n < 1 {
		n = 1
	}

	type aged struct {
		key        string
		lastAccess time.Time
	}
	all := make([]aged, 0, len(s.entries))
	for key, e := range s.entries {
		all = append(all, aged{key: key, lastAccess: e.lastAccess})
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].lastAccess.Before(all[j].lastAccess)
	})
	for i := 0; i < n; i++ {
		delete(s.entries, all[i].key)
	}
}
