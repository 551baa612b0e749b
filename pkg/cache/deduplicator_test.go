package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeduplicator(t *testing.T) {
	d := NewDeduplicator[string]()

	v, shared, err := d.Do("k", func() (string, error) { return "value", nil })
	require.NoError(t, err)
	assert.Equal(t, "value", v)
	assert.False(t, shared)

	stats := d.Stats()
	assert.Equal(t, int64(1), stats.Requests)
	assert.Equal(t, int64(0), stats.Deduplicated)
}

func TestDeduplicatorConcurrent(t *testing.T) {
	d := NewDeduplicator[int]()
	var calls, sharedResults atomic.Int32
	release := make(chan struct{})

	const n = 5
	var wg sync.WaitGroup
	results := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, shared, err := d.Do("k", func() (int, error) {
				calls.Add(1)
				<-release
				return 42, nil
			})
			assert.NoError(t, err)
			if shared {
				sharedResults.Add(1)
			}
			results[i] = v
		}(i)
	}

	// Give every goroutine a chance to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, 42, r)
	}
	assert.Equal(t, int64(n), d.Stats().Requests)
	// The caller that ran fn is not counted as deduplicated.
	assert.Equal(t, int32(n-1), sharedResults.Load())
	assert.Equal(t, int64(n-1), d.Stats().Deduplicated)
}

func TestDeduplicatorError(t *testing.T) {
	d := NewDeduplicator[int]()
	boom := errors.New("boom")

	v, _, err := d.Do("k", func() (int, error) { return 7, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, v)
}

func TestDeduplicatorDoCached(t *testing.T) {
	c, err := NewLRU[string, int](Config{MaxSize: 4, DefaultTTL: time.Minute})
	require.NoError(t, err)
	defer c.Close()

	d := NewDeduplicator[int]()
	calls := 0
	fn := func() (int, error) {
		calls++
		return calls, nil
	}

	first, err := d.DoCached("k", c, 0, fn)
	require.NoError(t, err)
	second, err := d.DoCached("k", c, 0, fn)
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, int64(1), d.Stats().CacheHits)

	_, err = d.DoCached("bad", c, 0, func() (int, error) { return 0, errors.New("nope") })
	assert.Error(t, err)
	_, ok := c.Get("bad")
	assert.False(t, ok, "errors must not be cached")
}
