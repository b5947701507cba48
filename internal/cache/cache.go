// Short-lived memoization of directory lookups. A manual search and a
// reconcile pass frequently hit the same creator within seconds; the cache
// absorbs those bursts so the upstream sees each query once per TTL.
package cache

import (
	"strings"
	"sync"
	"time"
)

// Lookup kinds. The kind is part of the cache key so a video search and a
// creator-scoped search for the same keyword never collide.
const (
	KindVideo   = "video" // keyword search, relevance ordered
	KindCreator = "up"    // keyword search scoped to a creator, newest first
	KindUser    = "user"  // creator account search
	KindSpace   = "space" // per-creator upload listing, keyed by numeric ID
)

type entry[T any] struct {
	value    T
	storedAt time.Time
}

// Cache memoizes lookup results for a fixed TTL measured from insertion.
// Reads re-check the entry's age, so correctness never depends on the
// background sweep; the sweep only bounds memory growth.
type Cache[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry[T]
	now     func() time.Time // swapped out by tests
}

// New creates a cache whose entries expire ttl after insertion.
func New[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		ttl:     ttl,
		entries: make(map[string]entry[T]),
		now:     time.Now,
	}
}

func key(kind, query string) string {
	return kind + ":" + strings.ToLower(query)
}

// Get returns the cached value for (kind, query). An entry older than the
// TTL is treated as a miss and dropped.
func (c *Cache[T]) Get(kind, query string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(kind, query)
	e, ok := c.entries[k]
	if !ok {
		var zero T
		return zero, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, k)
		var zero T
		return zero, false
	}
	return e.value, true
}

// Put stores a value for (kind, query), resetting its age.
func (c *Cache[T]) Put(kind, query string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key(kind, query)] = entry[T]{value: value, storedAt: c.now()}
}

// Sweep removes every expired entry and reports how many were dropped.
func (c *Cache[T]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for k, e := range c.entries {
		if now.Sub(e.storedAt) >= c.ttl {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len reports the number of entries currently held, expired or not.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
