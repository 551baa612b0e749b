package cache

import (
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Deduplicator collapses concurrent calls for the same key into one execution.
type Deduplicator[V any] struct {
	group        singleflight.Group
	requests     atomic.Int64
	deduplicated atomic.Int64
	cacheHits    atomic.Int64
}

// DedupStats represents deduplication statistics
type DedupStats struct {
	Requests     int64 `json:"requests"`
	Deduplicated int64 `json:"deduplicated"`
	CacheHits    int64 `json:"cache_hits"`
}

func NewDeduplicator[V any]() *Deduplicator[V] {
	return &Deduplicator[V]{}
}

// Do runs fn once per key among concurrent callers. shared reports whether the
// result was produced by another caller's fn.
func (d *Deduplicator[V]) Do(key string, fn func() (V, error)) (v V, shared bool, err error) {
	d.requests.Add(1)

	// singleflight marks the leader as shared too once anyone joins it.
	executed := false
	result, err, _ := d.group.Do(key, func() (interface{}, error) {
		executed = true
		return fn()
	})
	shared = !executed
	if shared {
		d.deduplicated.Add(1)
	}
	if err != nil {
		var zero V
		return zero, shared, err
	}
	return result.(V), shared, nil
}

// DoCached checks cache first and stores successful results in it.
func (d *Deduplicator[V]) DoCached(key string, cache *LRU[string, V], ttl time.Duration, fn func() (V, error)) (V, error) {
	if cache != nil {
		if v, ok := cache.Get(key); ok {
			d.cacheHits.Add(1)
			return v, nil
		}
	}

	v, _, err := d.Do(key, func() (V, error) {
		v, err := fn()
		if err != nil {
			return v, err
		}
		if cache != nil {
			cache.Set(key, v, ttl)
		}
		return v, nil
	})
	return v, err
}

func (d *Deduplicator[V]) Stats() DedupStats {
	return DedupStats{
		Requests:     d.requests.Load(),
		Deduplicated: d.deduplicated.Load(),
		CacheHits:    d.cacheHits.Load(),
	}
}
