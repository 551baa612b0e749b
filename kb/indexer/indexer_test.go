package indexer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/snow-ghost/interviewer/embeddings"
	"github.com/snow-ghost/interviewer/kb"
	"github.com/snow-ghost/interviewer/relevance"
	"github.com/snow-ghost/interviewer/vectordb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBank(t *testing.T) *kb.Bank {
	b, err := kb.New([]kb.Topic{
		{Name: "Computer Vision", Questions: []string{"How do convolutional filters detect edges in images?"}},
		{Name: "Natural Language Processing", Questions: []string{"How does attention help machine translation of sentences?"}},
		{Name: "Ensemble Methods", Questions: []string{"Compare bagging and boosting decision trees"}},
	})
	require.NoError(t, err)
	return b
}

func TestIndexBank(t *testing.T) {
	ctx := context.Background()
	store := vectordb.NewMemoryVectorStore(vectordb.DefaultConfig())
	idx := NewIndexer(embeddings.NewMockEmbedder(256), store, nil)

	stats, err := idx.IndexBank(ctx, testBank(t))
	require.NoError(t, err)
	assert.Equal(t, Stats{Indexed: 3}, stats)

	n, _ := store.Count(ctx)
	assert.Equal(t, 3, n)

	item := relevance.Item{Topic: "Ensemble Methods", Question: "Compare bagging and boosting decision trees"}
	_, meta, err := store.Get(ctx, item.Text())
	require.NoError(t, err)
	assert.Equal(t, "Ensemble Methods", meta["topic"])

	t.Run("search", func(t *testing.T) {
		matches, err := idx.Search(ctx, "translation with attention over sentences", 1)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "Natural Language Processing", matches[0].Topic)
	})
}

type flakyEmbedder struct{ inner embeddings.Embedder }

func (f flakyEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if strings.HasPrefix(text, "Ensemble") {
		return nil, errors.New("rate limited")
	}
	return f.inner.EmbedText(ctx, text)
}

func TestIndexBankSkipsFailures(t *testing.T) {
	store := vectordb.NewMemoryVectorStore(vectordb.DefaultConfig())
	idx := NewIndexer(flakyEmbedder{embeddings.NewMockEmbedder(64)}, store, nil)

	stats, err := idx.IndexBank(context.Background(), testBank(t))
	require.NoError(t, err)
	assert.Equal(t, Stats{Indexed: 2, Failed: 1}, stats)
}
