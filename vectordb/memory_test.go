package vectordb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"scaled", []float32{1, 1}, []float32{3, 3}, 1},
		{"empty", nil, nil, 0},
		{"mismatched", []float32{1}, []float32{1, 2}, 0},
		{"zero norm", []float32{0, 0}, []float32{1, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestMemoryVectorStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryVectorStore(DefaultConfig())

	require.NoError(t, s.Upsert(ctx, "x", []float32{1, 0}, map[string]string{"topic": "X"}))
	require.NoError(t, s.Upsert(ctx, "y", []float32{0, 1}, nil))
	require.NoError(t, s.Upsert(ctx, "xy", []float32{1, 1}, nil))

	t.Run("dimension adopted from first upsert", func(t *testing.T) {
		assert.Error(t, s.Upsert(ctx, "bad", []float32{1, 2, 3}, nil))
		_, err := s.Search(ctx, []float32{1}, 1)
		assert.Error(t, err)
	})

	t.Run("search orders by score", func(t *testing.T) {
		hits, err := s.Search(ctx, []float32{1, 0.1}, 2)
		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, "x", hits[0].ID)
		assert.Equal(t, "xy", hits[1].ID)
		assert.Equal(t, "X", hits[0].Meta["topic"])
	})

	t.Run("get returns copies", func(t *testing.T) {
		vec, meta, err := s.Get(ctx, "x")
		require.NoError(t, err)
		vec[0] = 9
		meta["topic"] = "changed"

		again, meta2, err := s.Get(ctx, "x")
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 0}, again)
		assert.Equal(t, "X", meta2["topic"])
	})

	t.Run("get unknown", func(t *testing.T) {
		_, _, err := s.Get(ctx, "nope")
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("delete and clear", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "y"))
		n, _ := s.Count(ctx)
		assert.Equal(t, 2, n)

		require.NoError(t, s.Clear(ctx))
		n, _ = s.Count(ctx)
		assert.Equal(t, 0, n)
		assert.NoError(t, s.Upsert(ctx, "z", []float32{1, 2, 3}, nil), "dimension resets after clear")
	})
}
