package embeddings

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// MockEmbedder hashes words and word bigrams into a fixed number of buckets.
// Identical text always yields the identical unit vector and texts sharing
// vocabulary land close together, which is all ranking tests need.
type MockEmbedder struct {
	dim int
}

// NewMockEmbedder creates a new mock embedder
func NewMockEmbedder(dim int) *MockEmbedder {
	if dim <= 0 {
		dim = DefaultConfig().Dimension
	}
	return &MockEmbedder{dim: dim}
}

// EmbedText is safe for concurrent use.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	words := tokenize(text)
	tf := make(map[string]int, len(words)*2)
	for i, w := range words {
		tf[w]++
		if i > 0 {
			tf[words[i-1]+" "+w]++
		}
	}

	vec := make([]float64, m.dim)
	for feature, n := range tf {
		h := fnv.New64a()
		_, _ = h.Write([]byte(feature))
		sum := h.Sum64()
		weight := 1 + math.Log(float64(n))
		if sum&(1<<63) != 0 {
			weight = -weight
		}
		vec[sum%uint64(m.dim)] += weight
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	out := make([]float32, m.dim)
	if norm == 0 {
		return out, nil
	}
	norm = math.Sqrt(norm)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

// Dimension returns the vector length
func (m *MockEmbedder) Dimension() int { return m.dim }

func tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := words[:0]
	for _, w := range words {
		if len(w) > 1 && !stopWords[w] {
			out = append(out, w)
		}
	}
	return out
}

var stopWords = map[string]bool{
	"the": true, "and": true, "or": true, "of": true, "to": true, "in": true,
	"is": true, "are": true, "for": true, "on": true, "with": true, "as": true,
	"an": true, "be": true, "by": true, "it": true, "this": true, "that": true,
	"what": true, "how": true, "why": true, "do": true, "you": true, "can": true,
}
