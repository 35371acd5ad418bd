package retry

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// RetryCondition decides whether a failed attempt (1-based) is retried.
type RetryCondition interface {
	ShouldRetry(err error, attempt int) bool
}

// ConditionFunc adapts a function to RetryCondition.
type ConditionFunc func(err error, attempt int) bool

func (f ConditionFunc) ShouldRetry(err error, attempt int) bool {
	return err != nil && f(err, attempt)
}

// AlwaysRetry retries every error.
func AlwaysRetry() RetryCondition {
	return ConditionFunc(func(error, int) bool { return true })
}

// NeverRetry gives up after the first failure.
func NeverRetry() RetryCondition {
	return ConditionFunc(func(error, int) bool { return false })
}

// RetryOnErrors retries when err matches any target with errors.Is.
func RetryOnErrors(targets ...error) RetryCondition {
	return ConditionFunc(func(err error, _ int) bool {
		for _, t := range targets {
			if errors.Is(err, t) {
				return true
			}
		}
		return false
	})
}

// HTTPError is implemented by transport errors that carry a response status.
type HTTPError interface {
	error
	StatusCode() int
}

// RetryOnHTTPStatus retries responses whose status is listed.
func RetryOnHTTPStatus(statuses ...int) RetryCondition {
	set := make(map[int]struct{}, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return ConditionFunc(func(err error, _ int) bool {
		var he HTTPError
		if !errors.As(err, &he) {
			return false
		}
		_, ok := set[he.StatusCode()]
		return ok
	})
}

// RetryOnTransientError retries failures where no response was received.
func RetryOnTransientError() RetryCondition {
	return ConditionFunc(func(err error, _ int) bool { return IsTransient(err) })
}

type temporary interface {
	Temporary() bool
}

// IsTransient reports failures that happened before any response arrived:
// timeouts, refused or reset connections and errors that say they are temporary.
// Caller cancellation is not transient.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var t temporary
	if errors.As(err, &t) && t.Temporary() {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.EPIPE)
}

// And retries only when every condition agrees.
func And(conds ...RetryCondition) RetryCondition {
	return ConditionFunc(func(err error, attempt int) bool {
		for _, c := range conds {
			if !c.ShouldRetry(err, attempt) {
				return false
			}
		}
		return true
	})
}

// Or retries when any condition agrees.
func Or(conds ...RetryCondition) RetryCondition {
	return ConditionFunc(func(err error, attempt int) bool {
		for _, c := range conds {
			if c.ShouldRetry(err, attempt) {
				return true
			}
		}
		return false
	})
}

// Not inverts a condition.
func Not(cond RetryCondition) RetryCondition {
	return ConditionFunc(func(err error, attempt int) bool {
		return !cond.ShouldRetry(err, attempt)
	})
}
