package embeddings

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/snow-ghost/interviewer/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestMockEmbedderDeterministic(t *testing.T) {
	m := NewMockEmbedder(64)
	ctx := context.Background()

	a, err := m.EmbedText(ctx, "Convolutional neural networks for image segmentation")
	require.NoError(t, err)
	b, err := m.EmbedText(ctx, "Convolutional neural networks for image segmentation")
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.InDelta(t, 1.0, cosine(a, a), 1e-5)
}

func TestMockEmbedderRanksSharedVocabularyHigher(t *testing.T) {
	m := NewMockEmbedder(256)
	ctx := context.Background()

	profile, _ := m.EmbedText(ctx, "Built convolutional neural networks for image classification and object detection")
	near, _ := m.EmbedText(ctx, "Computer Vision: How do convolutional neural networks detect objects in an image?")
	far, _ := m.EmbedText(ctx, "Ensemble Methods: Compare bagging with boosting")

	assert.Greater(t, cosine(profile, near), cosine(profile, far))
}

func TestMockEmbedderEmptyText(t *testing.T) {
	v, err := NewMockEmbedder(8).EmbedText(context.Background(), "  ?! ")
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 8), v)
}

type countingEmbedder struct {
	calls atomic.Int32
	err   error
}

func (c *countingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return []float32{float32(len(text))}, nil
}

func TestCachedEmbedder(t *testing.T) {
	inner := &countingEmbedder{}
	c, err := NewCached(inner, cache.Config{MaxSize: 8, DefaultTTL: time.Minute}, nil)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		v, err := c.EmbedText(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, []float32{3}, v)
	}
	assert.Equal(t, int32(1), inner.calls.Load())

	cs, ds := c.Stats()
	assert.Equal(t, int64(2), cs.Hits)
	assert.Equal(t, int64(2), ds.CacheHits)
}

func TestCachedEmbedderDoesNotCacheErrors(t *testing.T) {
	inner := &countingEmbedder{err: errors.New("quota")}
	c, err := NewCached(inner, cache.Config{MaxSize: 8}, nil)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.EmbedText(context.Background(), "abc")
	assert.Error(t, err)
	_, err = c.EmbedText(context.Background(), "abc")
	assert.Error(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestNewSelectsProvider(t *testing.T) {
	e, err := New(Config{Provider: "mock", Dimension: 16}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MockEmbedder{}, e)

	e, err = New(Config{Provider: "mock", Dimension: 16, CacheSize: 4, CacheTTL: time.Minute}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Cached{}, e)
	e.(*Cached).Close()

	_, err = New(Config{Provider: "openai"}, nil)
	assert.Error(t, err, "api key is required")

	_, err = New(Config{Provider: "word2vec"}, nil)
	assert.Error(t, err)
}

type contextEmbedder struct{}

func (contextEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []float32{1}, nil
}

func TestCachedEmbedderCallIgnoresCallerCancellation(t *testing.T) {
	c, err := NewCached(contextEmbedder{}, cache.Config{MaxSize: 8}, nil)
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, err := c.EmbedText(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, v)
}
