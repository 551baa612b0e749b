package indexer

import (
	"context"
	"fmt"

	"github.com/snow-ghost/interviewer/embeddings"
	"github.com/snow-ghost/interviewer/kb"
	"github.com/snow-ghost/interviewer/relevance"
	"github.com/snow-ghost/interviewer/vectordb"
	"go.uber.org/zap"
)

// Indexer pre-embeds bank questions so that selection only embeds the fingerprint.
type Indexer struct {
	embedder    embeddings.Embedder
	vectorStore vectordb.VectorStore
	logger      *zap.Logger
}

// NewIndexer creates a new question indexer
func NewIndexer(embedder embeddings.Embedder, vectorStore vectordb.VectorStore, logger *zap.Logger) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indexer{
		embedder:    embedder,
		vectorStore: vectorStore,
		logger:      logger,
	}
}

// Stats summarises one indexing run.
type Stats struct {
	Indexed int
	Failed  int
}

// IndexBank embeds every "{topic}: {question}". A question that fails to embed
// is skipped; the scorer embeds it on demand later.
func (i *Indexer) IndexBank(ctx context.Context, bank *kb.Bank) (Stats, error) {
	var stats Stats
	for _, e := range bank.Entries() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		item := relevance.Item{Topic: e.Topic, Question: e.Question}
		vec, err := i.embedder.EmbedText(ctx, item.Text())
		if err != nil {
			stats.Failed++
			i.logger.Warn("skipping question", zap.String("topic", e.Topic), zap.Error(err))
			continue
		}

		meta := map[string]string{"topic": e.Topic, "question": e.Question}
		if err := i.vectorStore.Upsert(ctx, item.Text(), vec, meta); err != nil {
			return stats, fmt.Errorf("failed to store vector: %w", err)
		}
		stats.Indexed++
	}

	i.logger.Info("question bank indexed",
		zap.Int("indexed", stats.Indexed), zap.Int("failed", stats.Failed))
	return stats, nil
}

// Match is a question ranked against a free-text query.
type Match struct {
	Topic    string  `json:"topic"`
	Question string  `json:"question"`
	Score    float64 `json:"score"`
}

// Search ranks indexed questions against text, best first.
func (i *Indexer) Search(ctx context.Context, text string, topK int) ([]Match, error) {
	vec, err := i.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to create query embedding: %w", err)
	}

	hits, err := i.vectorStore.Search(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search vectors: %w", err)
	}

	out := make([]Match, 0, len(hits))
	for _, h := range hits {
		out = append(out, Match{Topic: h.Meta["topic"], Question: h.Meta["question"], Score: h.Score})
	}
	return out, nil
}
