package vectordb

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("vector not found")

// Hit represents a search result from vector store
type Hit struct {
	ID    string            `json:"id"`
	Score float64           `json:"score"`
	Meta  map[string]string `json:"meta"`
}

// VectorStore defines the interface for vector storage and retrieval
type VectorStore interface {
	// Upsert stores or updates a vector with metadata
	Upsert(ctx context.Context, id string, vec []float32, meta map[string]string) error

	// Search returns the topK most similar vectors, best first
	Search(ctx context.Context, vec []float32, topK int) ([]Hit, error)

	// Get retrieves a vector by ID
	Get(ctx context.Context, id string) ([]float32, map[string]string, error)

	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// Config holds configuration for vector stores
type Config struct {
	Collection string `mapstructure:"collection" json:"collection"`
	// Dimension fixes the vector length; zero adopts the length of the first upsert.
	Dimension int `mapstructure:"dimension" json:"dimension"`
}

// DefaultConfig returns default vector store configuration
func DefaultConfig() Config {
	return Config{Collection: "questions"}
}
