package limiter

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per key
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
	}
}

// limiter returns or creates the limiter for key
func (rl *RateLimiter) limiter(key string, policy Policy) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, exists := rl.limiters[key]; exists {
		return limiter
	}

	limit := rate.Inf
	if policy.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(policy.RequestsPerMinute) / 60.0)
	}
	burst := policy.Burst
	if burst <= 0 {
		burst = 1
	}

	limiter := rate.NewLimiter(limit, burst)
	rl.limiters[key] = limiter
	return limiter
}

// Wait waits for the rate limiter to allow the request
func (rl *RateLimiter) Wait(ctx context.Context, key string, policy Policy) error {
	if err := rl.limiter(key, policy).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}
	return nil
}

// Allow checks if the request is allowed without waiting
func (rl *RateLimiter) Allow(key string, policy Policy) bool {
	return rl.limiter(key, policy).Allow()
}
