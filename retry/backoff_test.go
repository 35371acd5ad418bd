package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoff(t *testing.T) {
	b := ExponentialBackoff(100*time.Millisecond, WithJitter(0), WithMaxDelay(time.Second))

	assert.Equal(t, time.Duration(0), b.Next(0))
	assert.Equal(t, 100*time.Millisecond, b.Next(1))
	assert.Equal(t, 200*time.Millisecond, b.Next(2))
	assert.Equal(t, 400*time.Millisecond, b.Next(3))
	assert.Equal(t, time.Second, b.Next(10))
}

func TestExponentialBackoff_JitterStaysWithinCap(t *testing.T) {
	b := ExponentialBackoff(time.Second, WithJitter(0.5), WithMaxDelay(2*time.Second))
	for i := 0; i < 100; i++ {
		d := b.Next(5)
		assert.LessOrEqual(t, d, 2*time.Second)
		assert.GreaterOrEqual(t, d, time.Second)
	}
}

func TestConstantAndNoBackoff(t *testing.T) {
	c := ConstantBackoff(300*time.Millisecond, WithJitter(0))
	assert.Equal(t, 300*time.Millisecond, c.Next(1))
	assert.Equal(t, 300*time.Millisecond, c.Next(7))
	assert.Zero(t, NoBackoff().Next(3))
}

func TestNetworkAwareBackoff(t *testing.T) {
	b := NetworkAwareBackoff(
		ConstantBackoff(10*time.Millisecond, WithJitter(0)),
		ConstantBackoff(time.Second, WithJitter(0)),
		nil,
	)

	assert.Equal(t, 10*time.Millisecond, b.NextFor(context.DeadlineExceeded, 1))
	assert.Equal(t, time.Second, b.NextFor(errors.New("application"), 1))
	assert.Equal(t, time.Second, b.Next(1))
	assert.Equal(t, 10*time.Millisecond, nextDelay(b, tempErr{}, 1))
}
