package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errTransient = errors.New("connection reset")

func isTransient(err error) bool { return errors.Is(err, errTransient) }

func fastRetrier(opts ...Option) *Retrier {
	base := []Option{
		WithInitialDelay(time.Millisecond),
		WithMaxDelay(2 * time.Millisecond),
		WithJitter(0),
		WithRetryIf(isTransient),
	}
	return New(append(base, opts...)...)
}

func TestDo_RetriesTransientUntilSuccess(t *testing.T) {
	calls := 0
	err := fastRetrier(WithMaxAttempts(3)).Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ReturnsLastErrorAfterFinalAttempt(t *testing.T) {
	calls := 0
	err := fastRetrier(WithMaxAttempts(2)).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errTransient
	})

	assert.Equal(t, 2, calls)
	assert.Same(t, errTransient, err)
}

func TestDo_StopsOnPermanentAndUnmatchedErrors(t *testing.T) {
	calls := 0
	err := fastRetrier().Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Permanent(errTransient)
	})
	assert.Equal(t, 1, calls)
	assert.Same(t, errTransient, err)

	calls = 0
	plain := errors.New("plain")
	err = fastRetrier().Do(context.Background(), func(ctx context.Context) error {
		calls++
		return plain
	})
	assert.Equal(t, 1, calls)
	assert.Same(t, plain, err)
}

func TestDo_WithoutPredicateNeverRetries(t *testing.T) {
	calls := 0
	r := New(WithMaxAttempts(4), WithInitialDelay(time.Millisecond))

	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errTransient
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, errTransient)
}

func TestStoreRetrier_AppliesSettings(t *testing.T) {
	r := StoreRetrier(4, 10*time.Millisecond, 30*time.Millisecond, isTransient)

	assert.Equal(t, 4, r.config.MaxAttempts)
	assert.Equal(t, 10*time.Millisecond, r.config.InitialDelay)
	assert.Equal(t, 30*time.Millisecond, r.config.MaxDelay)
	assert.Equal(t, 0.05, r.config.JitterFactor)
	assert.True(t, r.config.RetryIf(errTransient))
	assert.False(t, r.config.RetryIf(errors.New("syntax error")))
}

func TestDo_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := fastRetrier().Do(ctx, func(ctx context.Context) error {
		calls++
		return nil
	})

	assert.Equal(t, 0, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoWithData(t *testing.T) {
	calls := 0
	got, err := DoWithData(context.Background(), fastRetrier(), func(ctx context.Context) ([]int, error) {
		calls++
		if calls == 1 {
			return nil, errTransient
		}
		return []int{1, 2}, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got)
}

func TestCalculateDelay_Capped(t *testing.T) {
	r := New(WithInitialDelay(10*time.Millisecond), WithMaxDelay(25*time.Millisecond), WithJitter(0))

	assert.Equal(t, 10*time.Millisecond, r.calculateDelay(1))
	assert.Equal(t, 20*time.Millisecond, r.calculateDelay(2))
	assert.Equal(t, 25*time.Millisecond, r.calculateDelay(3))
}
