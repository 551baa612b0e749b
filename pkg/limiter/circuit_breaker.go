package limiter

import (
	"fmt"
	"sync"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// CircuitBreakerManager keeps one breaker per key
type CircuitBreakerManager struct {
	breakers map[string]*gobreaker.CircuitBreaker
	logger   *zap.Logger
	mu       sync.Mutex
}

// NewCircuitBreakerManager creates a new circuit breaker manager
func NewCircuitBreakerManager(logger *zap.Logger) *CircuitBreakerManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CircuitBreakerManager{
		breakers: make(map[string]*gobreaker.CircuitBreaker),
		logger:   logger,
	}
}

// breaker returns or creates the breaker for key
func (cbm *CircuitBreakerManager) breaker(key string, policy Policy) *gobreaker.CircuitBreaker {
	cbm.mu.Lock()
	defer cbm.mu.Unlock()

	if breaker, exists := cbm.breakers[key]; exists {
		return breaker
	}

	minRequests := policy.BreakerMinRequests
	if minRequests == 0 {
		minRequests = 5
	}
	ratio := policy.BreakerFailureRatio
	if ratio <= 0 {
		ratio = 0.5
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        key,
		MaxRequests: 1,
		Timeout:     policy.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= minRequests &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			cbm.logger.Warn("circuit breaker state changed",
				zap.String("capability", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	cbm.breakers[key] = breaker
	return breaker
}

// Execute executes a function through the circuit breaker
func (cbm *CircuitBreakerManager) Execute(key string, policy Policy, fn func() error) error {
	_, err := cbm.breaker(key, policy).Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if err != nil {
		return fmt.Errorf("circuit breaker execution failed: %w", err)
	}
	return nil
}

// IsOpen checks if the circuit breaker is open for key
func (cbm *CircuitBreakerManager) IsOpen(key string, policy Policy) bool {
	return cbm.breaker(key, policy).State() == gobreaker.StateOpen
}
