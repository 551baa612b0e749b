package limiter

import "time"

// Policy configures protection for one capability (generation, grading, ...).
type Policy struct {
	// RequestsPerMinute of zero disables rate limiting.
	RequestsPerMinute int           `mapstructure:"requests_per_minute" json:"requests_per_minute"`
	Burst             int           `mapstructure:"burst" json:"burst"`
	Timeout           time.Duration `mapstructure:"timeout" json:"timeout"`
	MaxRetries        int           `mapstructure:"max_retries" json:"max_retries"`
	// BreakerMinRequests and BreakerFailureRatio decide when the breaker opens.
	BreakerMinRequests  uint32        `mapstructure:"breaker_min_requests" json:"breaker_min_requests"`
	BreakerFailureRatio float64       `mapstructure:"breaker_failure_ratio" json:"breaker_failure_ratio"`
	BreakerCooldown     time.Duration `mapstructure:"breaker_cooldown" json:"breaker_cooldown"`
}

// DefaultPolicy suits a hosted LLM API.
func DefaultPolicy() Policy {
	return Policy{
		RequestsPerMinute:   120,
		Burst:               10,
		Timeout:             45 * time.Second,
		MaxRetries:          2,
		BreakerMinRequests:  5,
		BreakerFailureRatio: 0.5,
		BreakerCooldown:     30 * time.Second,
	}
}
