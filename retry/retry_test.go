package retry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr int

func (e statusErr) Error() string   { return http.StatusText(int(e)) }
func (e statusErr) StatusCode() int { return int(e) }

type tempErr struct{}

func (tempErr) Error() string   { return "no response" }
func (tempErr) Temporary() bool { return true }

func recordSleeps(delays *[]time.Duration) Option {
	return withSleep(func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	})
}

func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	}, MaxAttempts(5), Backoff(NoBackoff()))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoWithData_ExhaustsAttempts(t *testing.T) {
	var retried []int
	_, err := DoWithData(context.Background(), func(context.Context) (string, error) {
		return "", errors.New("down")
	},
		MaxAttempts(3),
		Backoff(NoBackoff()),
		OnRetry(func(attempt int, _ error, _ time.Duration) { retried = append(retried, attempt) }),
	)

	var me *MultiError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, 3, me.Attempts)
	assert.Len(t, me.Errors, 3)
	assert.Equal(t, 3, Attempts(err))
	assert.Equal(t, []int{1, 2}, retried)
	assert.Contains(t, me.AllErrors(), "attempt 3: down")
}

func TestDo_ConditionStopsEarly(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(context.Context) error {
		calls++
		return statusErr(http.StatusUnauthorized)
	}, DefaultPolicy().Options(withSleep(func(context.Context, time.Duration) error { return nil }))...)

	assert.Equal(t, 1, calls)
	var se statusErr
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode())
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, func(context.Context) error { calls++; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestDo_DeadlineShorterThanBackoff(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := Do(ctx, func(context.Context) error { return errors.New("x") },
		MaxAttempts(3), Backoff(ConstantBackoff(time.Hour, WithJitter(0), WithMaxDelay(2*time.Hour))))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, Attempts(err))
}

func TestDo_AttemptTimeout(t *testing.T) {
	err := Do(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, MaxAttempts(1), Timeout(10*time.Millisecond))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPolicy_NetworkFailuresBackOffFaster(t *testing.T) {
	p := DefaultPolicy()
	p.Jitter = 0

	var delays []time.Duration
	errs := []error{tempErr{}, statusErr(http.StatusServiceUnavailable), statusErr(http.StatusServiceUnavailable)}
	calls := 0
	_ = Do(context.Background(), func(context.Context) error {
		err := errs[calls]
		calls++
		return err
	}, p.Options(recordSleeps(&delays))...)

	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{250 * time.Millisecond, 2 * time.Second}, delays)
}

func TestPolicy_Validate(t *testing.T) {
	p := Policy{}
	p.ApplyDefaults()
	require.NoError(t, p.Validate())

	bad := DefaultPolicy()
	bad.NetworkBaseDelay = 5 * time.Second
	assert.Error(t, bad.Validate())

	bad = DefaultPolicy()
	bad.MaxAttempts = 0
	assert.Error(t, bad.Validate())
}
