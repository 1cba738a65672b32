// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package cache

import (
	"sync"
	"time"

	"github.com/tomtom215/rollcall/internal/metrics"
)

// DefaultCleanupInterval is how often expired entries are swept.
const DefaultCleanupInterval = 5 * time.Minute

// Entry represents a cached item with expiration
type Entry[V any] struct {
	Data      V
	ExpiresAt time.Time
}

// Stats tracks cache performance
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// Cache is a thread-safe in-memory cache with TTL support.
type Cache[V any] struct {
	name string
	ttl  time.Duration
	now  func() time.Time

	mu      sync.RWMutex
	entries map[string]Entry[V]
	stats   Stats

	stop      chan struct{}
	closeOnce sync.Once
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	cleanupInterval time.Duration
	now             func() time.Time
}

// WithCleanupInterval sets the background sweep interval. Zero disables the sweep.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) { o.cleanupInterval = d }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a cache whose entries live for ttl. A background sweep removes
// expired entries until Close is called.
func New[V any](name string, ttl time.Duration, opts ...Option) *Cache[V] {
	o := options{cleanupInterval: DefaultCleanupInterval, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Cache[V]{
		name:    name,
		ttl:     ttl,
		now:     o.now,
		entries: make(map[string]Entry[V]),
		stop:    make(chan struct{}),
	}
	c.stats.LastCleanup = c.now()

	if o.cleanupInterval > 0 {
		go c.cleanupLoop(o.cleanupInterval)
	}

	return c
}

// Name returns the cache name used in metrics.
func (c *Cache[V]) Name() string {
	return c.name
}

// Get returns the value for key if present and not expired.
// Expired entries are removed and counted as misses.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return zero, false
	}

	if c.now().After(entry.ExpiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have refreshed it.
		if cur, ok := c.entries[key]; ok && c.now().After(cur.ExpiresAt) {
			delete(c.entries, key)
			c.stats.Evictions++
			c.stats.TotalKeys = int64(len(c.entries))
		}
		c.mu.Unlock()
		c.recordMiss()
		return zero, false
	}

	c.recordHit()
	return entry.Data, true
}

// Set stores a value with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry[V]{
		Data:      value,
		ExpiresAt: c.now().Add(ttl),
	}
	c.stats.TotalKeys = int64(len(c.entries))
}

// Delete removes a cache entry. Missing keys are ignored.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.stats.Evictions++
		c.stats.TotalKeys = int64(len(c.entries))
	}
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Evictions += int64(len(c.entries))
	c.entries = make(map[string]Entry[V])
	c.stats.TotalKeys = 0
}

// GetStats returns a snapshot of cache statistics.
func (c *Cache[V]) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// HitRate returns the cache hit rate as a percentage
func (c *Cache[V]) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// Close stops the background sweep. It is safe to call more than once.
func (c *Cache[V]) Close() {
	c.closeOnce.Do(func() { close(c.stop) })
}

func (c *Cache[V]) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

// cleanup removes all expired entries
func (c *Cache[V]) cleanup() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			c.stats.Evictions++
		}
	}
	c.stats.TotalKeys = int64(len(c.entries))
	c.stats.LastCleanup = now
}

func (c *Cache[V]) recordHit() {
	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()
	metrics.CacheHits.WithLabelValues(c.name).Inc()
}

func (c *Cache[V]) recordMiss() {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
	metrics.CacheMisses.WithLabelValues(c.name).Inc()
}
