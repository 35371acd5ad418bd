package retry

import (
	"context"
	"time"
)

type config struct {
	maxAttempts int
	backoff     BackoffStrategy
	condition   RetryCondition
	onRetry     func(attempt int, err error, delay time.Duration)
	timeout     time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

func defaultConfig() *config {
	return &config{
		maxAttempts: 3,
		backoff:     ExponentialBackoff(time.Second),
		condition:   AlwaysRetry(),
		sleep:       sleepCtx,
	}
}

// Option configures Do and DoWithData.
type Option func(*config)

// MaxAttempts bounds the total number of attempts, the first one included.
func MaxAttempts(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

func Backoff(b BackoffStrategy) Option {
	return func(c *config) {
		if b != nil {
			c.backoff = b
		}
	}
}

func Condition(cond RetryCondition) Option {
	return func(c *config) {
		if cond != nil {
			c.condition = cond
		}
	}
}

// OnRetry is called before waiting for the next attempt.
func OnRetry(f func(attempt int, err error, delay time.Duration)) Option {
	return func(c *config) {
		c.onRetry = f
	}
}

// Timeout bounds every single attempt.
func Timeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func withSleep(f func(ctx context.Context, d time.Duration) error) Option {
	return func(c *config) {
		c.sleep = f
	}
}
