package embeddings

import (
	"context"
	"time"

	"github.com/snow-ghost/interviewer/pkg/cache"
	"go.uber.org/zap"
)

// sharedCallTimeout bounds an upstream call that no single caller owns.
const sharedCallTimeout = 30 * time.Second

// Cached memoizes an Embedder. Concurrent requests for the same text share one
// upstream call and failures are never cached.
type Cached struct {
	inner  Embedder
	cache  *cache.LRU[string, []float32]
	dedup  *cache.Deduplicator[[]float32]
	logger *zap.Logger
}

func NewCached(inner Embedder, cfg cache.Config, logger *zap.Logger) (*Cached, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	lru, err := cache.NewLRU[string, []float32](cfg)
	if err != nil {
		return nil, err
	}
	return &Cached{
		inner:  inner,
		cache:  lru,
		dedup:  cache.NewDeduplicator[[]float32](),
		logger: logger,
	}, nil
}

func (c *Cached) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vec, err := c.dedup.DoCached(text, c.cache, 0, func() ([]float32, error) {
		// Other callers may be waiting on this call, so it must outlive ctx.
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedCallTimeout)
		defer cancel()
		return c.inner.EmbedText(shared, text)
	})
	if err != nil {
		c.logger.Debug("embedding failed", zap.Error(err), zap.Int("text_len", len(text)))
		return nil, err
	}
	return vec, nil
}

// Stats reports cache and deduplication counters.
func (c *Cached) Stats() (cache.Stats, cache.DedupStats) {
	return c.cache.Stats(), c.dedup.Stats()
}

func (c *Cached) Close() {
	c.cache.Close()
}
