package resilience

import "time"

// CircuitBreakerConfig mirrors the *_CIRCUIT_* environment settings.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func (c CircuitBreakerConfig) normalized() CircuitBreakerConfig {
	if c.FailureThreshold < 1 {
		c.FailureThreshold = 5
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 15 * time.Second
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = 2
	}
	return c
}

// Option customises a breaker at construction.
type Option func(*CircuitBreaker)

// WithStateChange registers a callback fired after every transition. It runs
// outside the breaker lock.
func WithStateChange(fn func(from, to CircuitState)) Option {
	return func(b *CircuitBreaker) {
		b.onChange = fn
	}
}

func withClock(now func() time.Time) Option {
	return func(b *CircuitBreaker) {
		b.now = now
	}
}

// NewCircuitBreakerFromConfig returns nil when the breaker is disabled; a nil
// breaker lets every call through.
func NewCircuitBreakerFromConfig(cfg CircuitBreakerConfig, opts ...Option) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	return NewCircuitBreaker(cfg, opts...)
}
