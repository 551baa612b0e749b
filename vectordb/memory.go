package vectordb

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryVectorStore implements an in-memory vector store using cosine similarity
type MemoryVectorStore struct {
	config   Config
	dim      int
	vectors  map[string][]float32
	metadata map[string]map[string]string
	mu       sync.RWMutex
}

// NewMemoryVectorStore creates a new in-memory vector store
func NewMemoryVectorStore(config Config) *MemoryVectorStore {
	return &MemoryVectorStore{
		config:   config,
		dim:      config.Dimension,
		vectors:  make(map[string][]float32),
		metadata: make(map[string]map[string]string),
	}
}

// Upsert stores a copy of vec and meta under id.
func (m *MemoryVectorStore) Upsert(ctx context.Context, id string, vec []float32, meta map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(vec) == 0 {
		return fmt.Errorf("empty vector for %q", id)
	}
	if m.dim == 0 {
		m.dim = len(vec)
	}
	if len(vec) != m.dim {
		return fmt.Errorf("vector dimension %d does not match expected %d", len(vec), m.dim)
	}

	m.vectors[id] = append([]float32(nil), vec...)
	m.metadata[id] = copyMeta(meta)
	return nil
}

// Search ranks every stored vector against vec. Equal scores are ordered by id.
func (m *MemoryVectorStore) Search(ctx context.Context, vec []float32, topK int) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.dim != 0 && len(vec) != m.dim {
		return nil, fmt.Errorf("vector dimension %d does not match expected %d", len(vec), m.dim)
	}

	hits := make([]Hit, 0, len(m.vectors))
	for id, stored := range m.vectors {
		hits = append(hits, Hit{
			ID:    id,
			Score: CosineSimilarity(vec, stored),
			Meta:  copyMeta(m.metadata[id]),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})

	if topK > 0 && topK < len(hits) {
		hits = hits[:topK]
	}
	return hits, nil
}

// Get retrieves a vector by ID
func (m *MemoryVectorStore) Get(ctx context.Context, id string) ([]float32, map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	vec, ok := m.vectors[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return append([]float32(nil), vec...), copyMeta(m.metadata[id]), nil
}

func (m *MemoryVectorStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.vectors, id)
	delete(m.metadata, id)
	return nil
}

func (m *MemoryVectorStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors), nil
}

func (m *MemoryVectorStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.vectors = make(map[string][]float32)
	m.metadata = make(map[string]map[string]string)
	m.dim = m.config.Dimension
	return nil
}

// CosineSimilarity returns 0 for empty, mismatched or zero-norm vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func copyMeta(meta map[string]string) map[string]string {
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
