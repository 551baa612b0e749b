package cache

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU is a size-bounded cache whose entries also expire after a TTL.
type LRU[K comparable, V any] struct {
	cache    *lru.Cache[K, *entry[V]]
	config   Config
	stats    Stats
	mu       sync.Mutex
	now      func() time.Time
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewLRU creates a cache. A zero CleanupInterval disables the background sweep;
// expired entries are then dropped lazily on Get.
func NewLRU[K comparable, V any](config Config) (*LRU[K, V], error) {
	if config.MaxSize <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", config.MaxSize)
	}

	cache, err := lru.New[K, *entry[V]](config.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}

	c := &LRU[K, V]{
		cache:    cache,
		config:   config,
		stats:    Stats{MaxSize: config.MaxSize},
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	if config.CleanupInterval > 0 {
		go c.cleanup()
	}

	return c, nil
}

// Get retrieves a value from the cache
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.cache.Get(key)
	if !ok {
		c.stats.Misses++
		return zero, false
	}
	if e.expired(c.now()) {
		c.cache.Remove(key)
		c.stats.Expirations++
		c.stats.Misses++
		return zero, false
	}

	c.stats.Hits++
	return e.value, true
}

// Set stores a value; a non-positive ttl uses the configured default.
func (c *LRU[K, V]) Set(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		ttl = c.config.DefaultTTL
	}
	e := &entry[V]{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	if evicted := c.cache.Add(key, e); evicted {
		c.stats.Evictions++
	}
}

func (c *LRU[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Remove(key)
}

func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}

// Stats returns cache statistics
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Size = c.cache.Len()
	stats.CalculateHitRate()
	return stats
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *LRU[K, V]) Close() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

func (c *LRU[K, V]) cleanup() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopChan:
			return
		}
	}
}

func (c *LRU[K, V]) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for _, key := range c.cache.Keys() {
		if e, ok := c.cache.Peek(key); ok && e.expired(now) {
			c.cache.Remove(key)
			c.stats.Expirations++
		}
	}
}
