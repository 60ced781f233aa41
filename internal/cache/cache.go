// Package cache provides a small generic in-memory cache with per-entry expiry.
package cache

import (
	"context"
	"sync"
	"time"
)

type item[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a concurrency-safe TTL map. Expired entries are evicted lazily on
// access and by Prune.
type Cache[K comparable, V any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[K]item[V]
	now   func() time.Time
}

// New creates a cache whose entries live for ttl. A ttl <= 0 disables expiry.
func New[K comparable, V any](ttl time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		ttl:   ttl,
		items: make(map[K]item[V]),
		now:   time.Now,
	}
}

// Set stores value under key, replacing any previous entry.
func (c *Cache[K, V]) Set(_ context.Context, key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var exp time.Time
	if c.ttl > 0 {
		exp = c.now().Add(c.ttl)
	}
	c.items[key] = item[V]{value: value, expiresAt: exp}
}

// SetExpiring stores value under key with an explicit deadline. A zero
// expiresAt never expires.
func (c *Cache[K, V]) SetExpiring(_ context.Context, key K, value V, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = item[V]{value: value, expiresAt: expiresAt}
}

// Take returns the live value for key and removes it in the same critical
// section, so concurrent callers observe it at most once.
func (c *Cache[K, V]) Take(_ context.Context, key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.lookup(key)
	if ok {
		delete(c.items, key)
	}
	return v, ok
}

// Values returns the live values in no particular order.
func (c *Cache[K, V]) Values() []V {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	out := make([]V, 0, len(c.items))
	for _, it := range c.items {
		if it.expiresAt.IsZero() || !now.After(it.expiresAt) {
			out = append(out, it.value)
		}
	}
	return out
}

// Len returns the number of stored entries, expired ones included until pruned.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Prune evicts expired entries and returns how many were removed.
func (c *Cache[K, V]) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, it := range c.items {
		if !it.expiresAt.IsZero() && now.After(it.expiresAt) {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

func (c *Cache[K, V]) lookup(key K) (V, bool) {
	var zero V
	it, ok := c.items[key]
	if !ok {
		return zero, false
	}
	if !it.expiresAt.IsZero() && c.now().After(it.expiresAt) {
		delete(c.items, key)
		return zero, false
	}
	return it.value, true
}
