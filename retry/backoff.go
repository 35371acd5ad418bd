package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// BackoffStrategy returns the delay before retry number attempt (1-based).
type BackoffStrategy interface {
	Next(attempt int) time.Duration
}

// ErrorAwareBackoff picks the delay from the error that caused the retry.
// Do prefers NextFor over Next when a strategy implements it.
type ErrorAwareBackoff interface {
	BackoffStrategy
	NextFor(err error, attempt int) time.Duration
}

// BackoffOption tunes a strategy.
type BackoffOption func(*backoffConfig)

type backoffConfig struct {
	multiplier float64
	maxDelay   time.Duration
	jitter     float64
}

func defaultBackoffConfig() *backoffConfig {
	return &backoffConfig{
		multiplier: 2.0,
		maxDelay:   30 * time.Second,
		jitter:     0.2,
	}
}

func WithMultiplier(m float64) BackoffOption {
	return func(c *backoffConfig) {
		if m > 0 {
			c.multiplier = m
		}
	}
}

// WithMaxDelay caps every delay, jitter included.
func WithMaxDelay(d time.Duration) BackoffOption {
	return func(c *backoffConfig) {
		if d > 0 {
			c.maxDelay = d
		}
	}
}

// WithJitter spreads delays by ±ratio. Zero disables jitter.
func WithJitter(ratio float64) BackoffOption {
	return func(c *backoffConfig) {
		if ratio >= 0 && ratio <= 1.0 {
			c.jitter = ratio
		}
	}
}

type exponentialBackoff struct {
	base time.Duration
	cfg  *backoffConfig
}

// ExponentialBackoff yields base * multiplier^(attempt-1), capped at the max delay.
//
//	base=1s: 1s, 2s, 4s, 8s ... 30s
func ExponentialBackoff(base time.Duration, opts ...BackoffOption) BackoffStrategy {
	cfg := defaultBackoffConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &exponentialBackoff{base: base, cfg: cfg}
}

func (b *exponentialBackoff) Next(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	delay := float64(b.base) * math.Pow(b.cfg.multiplier, float64(attempt-1))
	return b.cfg.finish(delay)
}

type constantBackoff struct {
	delay time.Duration
	cfg   *backoffConfig
}

// ConstantBackoff waits the same delay before every retry.
func ConstantBackoff(delay time.Duration, opts ...BackoffOption) BackoffStrategy {
	cfg := defaultBackoffConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &constantBackoff{delay: delay, cfg: cfg}
}

func (b *constantBackoff) Next(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return b.cfg.finish(float64(b.delay))
}

type noBackoff struct{}

// NoBackoff retries immediately.
func NoBackoff() BackoffStrategy { return noBackoff{} }

func (noBackoff) Next(int) time.Duration { return 0 }

type splitBackoff struct {
	network  BackoffStrategy
	fallback BackoffStrategy
	classify func(error) bool
}

// NetworkAwareBackoff uses network for errors where classify reports a failure
// with no response, and fallback for everything else. A nil classify means IsTransient.
//
//	NetworkAwareBackoff(
//		ExponentialBackoff(250*time.Millisecond),
//		ExponentialBackoff(time.Second),
//		nil,
//	)
func NetworkAwareBackoff(network, fallback BackoffStrategy, classify func(error) bool) ErrorAwareBackoff {
	if classify == nil {
		classify = IsTransient
	}
	return &splitBackoff{network: network, fallback: fallback, classify: classify}
}

func (b *splitBackoff) Next(attempt int) time.Duration {
	return b.fallback.Next(attempt)
}

func (b *splitBackoff) NextFor(err error, attempt int) time.Duration {
	if err != nil && b.classify(err) {
		return b.network.Next(attempt)
	}
	return b.fallback.Next(attempt)
}

func nextDelay(b BackoffStrategy, err error, attempt int) time.Duration {
	if ea, ok := b.(ErrorAwareBackoff); ok {
		return ea.NextFor(err, attempt)
	}
	return b.Next(attempt)
}

// finish caps, jitters and caps again so jitter never exceeds the max delay.
func (c *backoffConfig) finish(delay float64) time.Duration {
	maxDelay := float64(c.maxDelay)
	if delay > maxDelay {
		delay = maxDelay
	}
	if c.jitter > 0 {
		delay += (rand.Float64()*2 - 1) * delay * c.jitter
		delay = math.Max(0, math.Min(delay, maxDelay))
	}
	return time.Duration(delay)
}
