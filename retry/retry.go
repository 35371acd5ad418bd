// Package retry runs operations again after failures, with pluggable backoff and retry conditions.
package retry

import (
	"context"
	"errors"
	"time"
)

// Do runs op until it succeeds, the condition refuses, attempts run out or ctx ends.
func Do(ctx context.Context, op func(ctx context.Context) error, opts ...Option) error {
	_, err := DoWithData(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	}, opts...)
	return err
}

// DoWithData is Do for operations that return a value.
// Failures are reported as *MultiError holding every attempt's error.
func DoWithData[T any](ctx context.Context, op func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var zero T
	var errs []error
	for attempt := 1; attempt <= cfg.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := runAttempt(ctx, cfg.timeout, op)
		if err == nil {
			return result, nil
		}
		errs = append(errs, err)

		if attempt == cfg.maxAttempts || !cfg.condition.ShouldRetry(err, attempt) {
			return zero, &MultiError{Errors: errs, Attempts: attempt}
		}

		delay := nextDelay(cfg.backoff, err, attempt)
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < delay {
			return zero, &MultiError{Errors: append(errs, context.DeadlineExceeded), Attempts: attempt}
		}
		if cfg.onRetry != nil {
			cfg.onRetry(attempt, err, delay)
		}
		if err := cfg.sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
	return zero, &MultiError{Errors: errs, Attempts: cfg.maxAttempts}
}

func runAttempt[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return op(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return op(attemptCtx)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Attempts reports how many attempts produced err, 0 when err did not come from Do.
func Attempts(err error) int {
	var me *MultiError
	if errors.As(err, &me) {
		return me.Attempts
	}
	return 0
}
