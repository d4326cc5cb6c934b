package health

import (
	"sync"
	"time"
)

// CacheStats provides metrics about cache performance
type CacheStats struct {
	Hits    int64   `json:"hits" yaml:"hits"`
	Misses  int64   `json:"misses" yaml:"misses"`
	Size    int     `json:"size" yaml:"size"`
	HitRate float64 `json:"hit_rate" yaml:"hit_rate"`
}

// Cache is a thread-safe in-memory TTL cache with LRU eviction. Expired
// entries are dropped lazily when they are read.
type Cache[V any] struct {
	mu      sync.Mutex
	items   map[string]cacheItem[V]
	stats   CacheStats
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

type cacheItem[V any] struct {
	value      V
	expiresAt  time.Time
	accessedAt time.Time
}

// NewCache creates a cache holding at most maxSize entries for ttl each.
func NewCache[V any](maxSize int, ttl time.Duration) *Cache[V] {
	if maxSize <= 0 {
		maxSize = 512
	}
	return &Cache[V]{
		items:   make(map[string]cacheItem[V]),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get retrieves an item from the cache
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	item, exists := c.items[key]
	if !exists {
		c.miss()
		return zero, false
	}

	now := c.now()
	if now.After(item.expiresAt) {
		delete(c.items, key)
		c.stats.Size = len(c.items)
		c.miss()
		return zero, false
	}

	item.accessedAt = now
	c.items[key] = item
	c.stats.Hits++
	c.updateHitRate()

	return item.value, true
}

// Set adds or updates an item in the cache
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxSize {
		c.evictLRU()
	}

	now := c.now()
	c.items[key] = cacheItem[V]{
		value:      value,
		expiresAt:  now.Add(c.ttl),
		accessedAt: now,
	}
	c.stats.Size = len(c.items)
}

// Stats returns current cache statistics
func (c *Cache[V]) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stats
}

func (c *Cache[V]) miss() {
	c.stats.Misses++
	c.updateHitRate()
}

func (c *Cache[V]) updateHitRate() {
	total := c.stats.Hits + c.stats.Misses
	if total > 0 {
		c.stats.HitRate = float64(c.stats.Hits) / float64(total)
	}
}

// evictLRU removes the least recently used item
func (c *Cache[V]) evictLRU() {
	var oldestKey string
	var oldestTime time.Time

	for key, item := range c.items {
		if oldestKey == "" || item.accessedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = item.accessedAt
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}
