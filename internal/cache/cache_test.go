package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	c := New[string, int](time.Minute)
	c.now = func() time.Time { return now }

	c.Set(ctx, "offer-1", 7)
	c.Set(ctx, "offer-2", 8)
	if v := c.Values(); len(v) != 2 {
		t.Fatalf("expected 2 live values, got %v", v)
	}
	if v, ok := c.Take(ctx, "offer-1"); !ok || v != 7 {
		t.Fatalf("expected 7, got %d (ok=%v)", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Take(ctx, "offer-2"); ok {
		t.Error("expected entry to be expired")
	}
	if c.Len() != 0 {
		t.Errorf("expected expired entry to be evicted, len=%d", c.Len())
	}
}

func TestCache_SetExpiring(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	c := New[string, int](time.Hour)
	c.now = func() time.Time { return now }

	c.SetExpiring(ctx, "restored", 1, now.Add(time.Minute))
	c.SetExpiring(ctx, "forever", 2, time.Time{})

	now = now.Add(2 * time.Minute)
	if v := c.Values(); len(v) != 1 || v[0] != 2 {
		t.Errorf("live values = %v, want [2]", v)
	}
	if removed := c.Prune(); removed != 1 {
		t.Errorf("pruned %d, want 1", removed)
	}
}

func TestCache_Prune(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	c := New[int, string](time.Second)
	c.now = func() time.Time { return now }
	c.Set(ctx, 1, "a")
	c.Set(ctx, 2, "b")

	now = now.Add(2 * time.Second)
	c.Set(ctx, 3, "c")

	if removed := c.Prune(); removed != 2 {
		t.Errorf("expected 2 pruned, got %d", removed)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 entry left, got %d", c.Len())
	}
}

func TestCache_TakeIsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	c := New[string, int](0)
	c.Set(ctx, "offer", 1)

	var hits atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := c.Take(ctx, "offer"); ok {
				hits.Add(1)
			}
		}()
	}
	wg.Wait()

	if hits.Load() != 1 {
		t.Errorf("expected exactly one Take to succeed, got %d", hits.Load())
	}
}
