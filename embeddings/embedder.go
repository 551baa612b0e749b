package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/snow-ghost/interviewer/pkg/cache"
	"go.uber.org/zap"
)

// Embedder defines the interface for text embedding generation
type Embedder interface {
	// EmbedText converts text to a vector representation
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Config holds configuration for embedders
type Config struct {
	Provider  string        `mapstructure:"provider" json:"provider"`
	Model     string        `mapstructure:"model" json:"model"`
	Dimension int           `mapstructure:"dimension" json:"dimension"`
	MaxTokens int           `mapstructure:"max_tokens" json:"max_tokens"`
	APIKey    string        `mapstructure:"api_key" json:"-"`
	BaseURL   string        `mapstructure:"base_url" json:"base_url,omitempty"`
	CacheSize int           `mapstructure:"cache_size" json:"cache_size"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl" json:"cache_ttl"`
}

// DefaultConfig returns default embedding configuration
func DefaultConfig() Config {
	return Config{
		Provider:  "mock",
		Model:     "text-embedding-3-small",
		Dimension: 256,
		MaxTokens: 8191,
		CacheSize: 1024,
		CacheTTL:  time.Hour,
	}
}

// New builds the configured embedder. A positive CacheSize wraps it in Cached.
func New(cfg Config, logger *zap.Logger) (Embedder, error) {
	var inner Embedder
	switch cfg.Provider {
	case "", "mock":
		inner = NewMockEmbedder(cfg.Dimension)
	case "openai":
		e, err := NewOpenAIEmbedder(cfg)
		if err != nil {
			return nil, err
		}
		inner = e
	default:
		return nil, fmt.Errorf("unknown embeddings provider %q", cfg.Provider)
	}

	if cfg.CacheSize <= 0 {
		return inner, nil
	}
	return NewCached(inner, cache.Config{
		MaxSize:         cfg.CacheSize,
		DefaultTTL:      cfg.CacheTTL,
		CleanupInterval: cfg.CacheTTL,
	}, logger)
}
