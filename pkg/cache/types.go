package cache

import "time"

// Config configures an LRU cache.
type Config struct {
	MaxSize         int           `mapstructure:"max_size" json:"max_size"`
	DefaultTTL      time.Duration `mapstructure:"ttl" json:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" json:"cleanup_interval"`
}

// DefaultConfig returns sizes suitable for caching question embeddings.
func DefaultConfig() Config {
	return Config{
		MaxSize:         2048,
		DefaultTTL:      time.Hour,
		CleanupInterval: 10 * time.Minute,
	}
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e *entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Stats represents cache statistics
type Stats struct {
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	Size        int     `json:"size"`
	MaxSize     int     `json:"max_size"`
	HitRate     float64 `json:"hit_rate"`
	Evictions   int64   `json:"evictions"`
	Expirations int64   `json:"expirations"`
}

// CalculateHitRate calculates the hit rate
func (s *Stats) CalculateHitRate() {
	total := s.Hits + s.Misses
	if total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	} else {
		s.HitRate = 0.0
	}
}
