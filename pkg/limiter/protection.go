package limiter

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrCircuitOpen is returned without calling upstream while a breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Protection applies timeout, rate limiting, retries and circuit breaking per key.
type Protection struct {
	rateLimiter    *RateLimiter
	circuitBreaker *CircuitBreakerManager
	policies       map[string]Policy
	fallback       Policy
	retry          RetryConfig
}

// NewProtection uses policies[key] for known keys and fallback for the rest.
func NewProtection(fallback Policy, policies map[string]Policy, logger *zap.Logger) *Protection {
	if policies == nil {
		policies = map[string]Policy{}
	}
	return &Protection{
		rateLimiter:    NewRateLimiter(),
		circuitBreaker: NewCircuitBreakerManager(logger),
		policies:       policies,
		fallback:       fallback,
		retry:          DefaultRetryConfig(),
	}
}

func (p *Protection) policy(key string) Policy {
	if pol, ok := p.policies[key]; ok {
		return pol
	}
	return p.fallback
}

// Execute runs fn under the policy for key. Each attempt gets its own timeout.
func (p *Protection) Execute(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	pol := p.policy(key)

	if p.circuitBreaker.IsOpen(key, pol) {
		return fmt.Errorf("%w for %s", ErrCircuitOpen, key)
	}

	if err := p.rateLimiter.Wait(ctx, key, pol); err != nil {
		return err
	}

	retryCfg := p.retry
	retryCfg.MaxRetries = pol.MaxRetries
	retry := NewRetryManager(retryCfg)

	err := p.circuitBreaker.Execute(key, pol, func() error {
		return retry.Execute(ctx, func(ctx context.Context) error {
			if pol.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, pol.Timeout)
				defer cancel()
			}
			return fn(ctx)
		})
	})
	if err != nil {
		return fmt.Errorf("protected execution failed: %w", err)
	}
	return nil
}
