// Package relevance scores bank questions against a candidate fingerprint.
package relevance

import (
	"context"

	"github.com/snow-ghost/interviewer/embeddings"
	"github.com/snow-ghost/interviewer/vectordb"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Item is one question to score.
type Item struct {
	Topic    string
	Question string
}

// Text is the string embedded for an item; it also keys precomputed vectors.
func (i Item) Text() string {
	return i.Topic + ": " + i.Question
}

// Scorer computes cosine similarity between a fingerprint and questions.
type Scorer struct {
	embedder    embeddings.Embedder
	vectors     vectordb.VectorStore
	logger      *zap.Logger
	concurrency int
}

type Option func(*Scorer)

// WithVectors makes the scorer read question vectors written by the indexer
// before falling back to embedding them.
func WithVectors(store vectordb.VectorStore) Option {
	return func(s *Scorer) { s.vectors = store }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Scorer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithConcurrency bounds parallel item embeddings.
func WithConcurrency(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func NewScorer(embedder embeddings.Embedder, opts ...Option) *Scorer {
	s := &Scorer{
		embedder:    embedder,
		logger:      zap.NewNop(),
		concurrency: 8,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns one similarity per item, in input order. A failed item
// embedding scores 0; a failed fingerprint embedding scores every item 0.
// Score never returns an error: degraded relevance must not block a turn.
func (s *Scorer) Score(ctx context.Context, fingerprint string, items []Item) []float64 {
	scores := make([]float64, len(items))
	if len(items) == 0 {
		return scores
	}

	profile, err := s.embedder.EmbedText(ctx, fingerprint)
	if err != nil {
		s.logger.Warn("fingerprint embedding failed, scoring all questions 0", zap.Error(err))
		return scores
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			vec, err := s.itemVector(gctx, item)
			if err != nil {
				s.logger.Warn("question embedding failed, scoring 0",
					zap.String("topic", item.Topic), zap.Error(err))
				return nil
			}
			scores[i] = vectordb.CosineSimilarity(profile, vec)
			return nil
		})
	}
	_ = g.Wait()
	return scores
}

func (s *Scorer) itemVector(ctx context.Context, item Item) ([]float32, error) {
	text := item.Text()
	if s.vectors != nil {
		if vec, _, err := s.vectors.Get(ctx, text); err == nil {
			return vec, nil
		}
	}
	return s.embedder.EmbedText(ctx, text)
}
