package retry

import (
	"fmt"
	"net/http"
	"time"
)

// Policy is the configurable read retry policy. Failures with no response
// back off from NetworkBaseDelay, retryable HTTP statuses from BaseDelay.
type Policy struct {
	MaxAttempts      int           `mapstructure:"max_attempts"`
	BaseDelay        time.Duration `mapstructure:"base_delay"`
	NetworkBaseDelay time.Duration `mapstructure:"network_base_delay"`
	MaxDelay         time.Duration `mapstructure:"max_delay"`
	Multiplier       float64       `mapstructure:"multiplier"`
	Jitter           float64       `mapstructure:"jitter"`
}

// DefaultPolicy: three attempts, 250ms network base, 1s otherwise, capped at 30s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:      3,
		BaseDelay:        time.Second,
		NetworkBaseDelay: 250 * time.Millisecond,
		MaxDelay:         30 * time.Second,
		Multiplier:       2,
		Jitter:           0.2,
	}
}

// ApplyDefaults fills zero fields. Jitter zero is kept.
func (p *Policy) ApplyDefaults() {
	d := DefaultPolicy()
	if p.MaxAttempts == 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.BaseDelay == 0 {
		p.BaseDelay = d.BaseDelay
	}
	if p.NetworkBaseDelay == 0 {
		p.NetworkBaseDelay = d.NetworkBaseDelay
	}
	if p.MaxDelay == 0 {
		p.MaxDelay = d.MaxDelay
	}
	if p.Multiplier == 0 {
		p.Multiplier = d.Multiplier
	}
}

func (p Policy) Validate() error {
	if p.MaxAttempts < 1 || p.MaxAttempts > 10 {
		return fmt.Errorf("retry max_attempts must be between 1-10, current: %d", p.MaxAttempts)
	}
	if p.NetworkBaseDelay > p.BaseDelay {
		return fmt.Errorf("retry network_base_delay (%s) must not exceed base_delay (%s)", p.NetworkBaseDelay, p.BaseDelay)
	}
	if p.MaxDelay < p.BaseDelay {
		return fmt.Errorf("retry max_delay (%s) must be at least base_delay (%s)", p.MaxDelay, p.BaseDelay)
	}
	if p.Jitter < 0 || p.Jitter > 1 {
		return fmt.Errorf("retry jitter must be between 0-1, current: %v", p.Jitter)
	}
	return nil
}

// RetryableStatuses are response codes worth another read attempt.
var RetryableStatuses = []int{
	http.StatusRequestTimeout,
	http.StatusTooManyRequests,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// Backoff builds the network-aware backoff described by p.
func (p Policy) Backoff() BackoffStrategy {
	opts := []BackoffOption{WithMultiplier(p.Multiplier), WithMaxDelay(p.MaxDelay), WithJitter(p.Jitter)}
	return NetworkAwareBackoff(
		ExponentialBackoff(p.NetworkBaseDelay, opts...),
		ExponentialBackoff(p.BaseDelay, opts...),
		IsTransient,
	)
}

// Options turns p into options for Do. Only transient failures and
// RetryableStatuses are retried; client errors such as 401 never are.
func (p Policy) Options(extra ...Option) []Option {
	opts := []Option{
		MaxAttempts(p.MaxAttempts),
		Backoff(p.Backoff()),
		Condition(Or(RetryOnTransientError(), RetryOnHTTPStatus(RetryableStatuses...))),
	}
	return append(opts, extra...)
}
