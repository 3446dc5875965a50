package ratelimit

import (
	"context"
	"strconv"
	"testing"
	"time"
)

func TestMemoryStore_AllowWithinLimit(t *testing.T) {
	store := NewMemoryStore(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := store.Allow(ctx, "k")
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !d.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if d.Remaining != 3-i-1 {
			t.Errorf("request %d: remaining = %d, want %d", i+1, d.Remaining, 3-i-1)
		}
	}

	d, err := store.Allow(ctx, "k")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if d.Allowed {
		t.Error("fourth request should be rejected")
	}
	if d.RetryAfter <= 0 || d.RetryAfter > time.Minute {
		t.Errorf("retry-after = %v, want within the window", d.RetryAfter)
	}
}

func TestMemoryStore_KeysAreIndependent(t *testing.T) {
	store := NewMemoryStore(1, time.Minute)
	ctx := context.Background()

	if d, _ := store.Allow(ctx, "a"); !d.Allowed {
		t.Fatal("first request on a should pass")
	}
	if d, _ := store.Allow(ctx, "a"); d.Allowed {
		t.Fatal("second request on a should be rejected")
	}
	if d, _ := store.Allow(ctx, "b"); !d.Allowed {
		t.Fatal("key b must not be affected by key a")
	}
}

func TestMemoryStore_WindowExpiry(t *testing.T) {
	store := NewMemoryStore(1, time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if d, _ := store.Allow(ctx, "k"); !d.Allowed {
		t.Fatal("first request should pass")
	}
	if d, _ := store.Allow(ctx, "k"); d.Allowed {
		t.Fatal("second request should be rejected")
	}

	now = now.Add(time.Minute + time.Second)
	if d, _ := store.Allow(ctx, "k"); !d.Allowed {
		t.Fatal("request after the window should pass")
	}
}

func TestMemoryStore_Reset(t *testing.T) {
	store := NewMemoryStore(1, time.Minute)
	ctx := context.Background()

	store.Allow(ctx, "k")
	if err := store.Reset(ctx, "k"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if d, _ := store.Allow(ctx, "k"); !d.Allowed {
		t.Fatal("request after reset should pass")
	}
}

func TestMemoryStore_EvictsAtCapacity(t *testing.T) {
	store := NewMemoryStore(1, time.Minute)
	store.maxEntries = 100
	ctx := context.Background()

	for i := 0; i < 150; i++ {
		if _, err := store.Allow(ctx, "key-"+strconv.Itoa(i)); err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
	}

	if got := store.Len(); got > 100 {
		t.Errorf("entries = %d, want bounded at 100", got)
	}
}

func TestMemoryStore_SweepRemovesExpired(t *testing.T) {
	store := NewMemoryStore(5, time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	store.Allow(ctx, "old")
	now = now.Add(2 * time.Minute)
	store.Allow(ctx, "fresh")

	removed := store.Sweep()
	if removed != 1 {
		t.Errorf("swept %d entries, want 1", removed)
	}
	if store.Len() != 1 {
		t.Errorf("entries = %d, want 1", store.Len())
	}
}
