package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"caller cancel", context.Canceled, false},
		{"temporary", tempErr{}, true},
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, true},
		{"wrapped reset", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"http status", statusErr(http.StatusBadRequest), false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestRetryOnHTTPStatus(t *testing.T) {
	c := RetryOnHTTPStatus(http.StatusServiceUnavailable)

	assert.True(t, c.ShouldRetry(statusErr(http.StatusServiceUnavailable), 1))
	assert.True(t, c.ShouldRetry(fmt.Errorf("wrapped: %w", statusErr(http.StatusServiceUnavailable)), 1))
	assert.False(t, c.ShouldRetry(statusErr(http.StatusUnauthorized), 1))
	assert.False(t, c.ShouldRetry(nil, 1))
}

func TestCombinators(t *testing.T) {
	sentinel := errors.New("sentinel")
	onSentinel := RetryOnErrors(sentinel)

	assert.True(t, AlwaysRetry().ShouldRetry(sentinel, 1))
	assert.False(t, NeverRetry().ShouldRetry(sentinel, 1))
	assert.True(t, Or(NeverRetry(), onSentinel).ShouldRetry(sentinel, 1))
	assert.False(t, And(AlwaysRetry(), onSentinel).ShouldRetry(errors.New("other"), 1))
	assert.True(t, Not(onSentinel).ShouldRetry(errors.New("other"), 1))

	firstOnly := ConditionFunc(func(_ error, attempt int) bool { return attempt < 2 })
	assert.True(t, firstOnly.ShouldRetry(sentinel, 1))
	assert.False(t, firstOnly.ShouldRetry(sentinel, 2))
}
