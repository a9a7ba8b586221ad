package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mny-engine/mny/internal/service"
)

func fastRetry() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds first try", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, func() error {
			calls++
			return nil
		}, fastRetry())
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("recovers after transient failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		}, fastRetry())
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, func() error {
			calls++
			return errors.New("persistent")
		}, fastRetry())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMaxRetries)
		assert.Equal(t, 3, calls)
	})

	t.Run("non-retryable error stops immediately", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, func() error {
			calls++
			return &RetryableError{Err: errors.New("bad input"), Retryable: false}
		}, fastRetry())
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled context stops waiting", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := WithRetry(cancelled, func() error {
			return errors.New("transient")
		}, service.RetryOptions{MaxAttempts: 5, InitialDelay: time.Minute})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestUserError(t *testing.T) {
	inner := errors.New("row not found")
	err := NewUserError("could not find that account", inner)

	assert.Equal(t, "could not find that account: row not found", err.Error())
	assert.ErrorIs(t, err, inner)

	t.Run("without cause", func(t *testing.T) {
		bare := NewUserError("amount must be positive", nil)
		assert.Equal(t, "amount must be positive", bare.Error())
	})
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: true}))
	assert.False(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: false}))
	assert.False(t, IsRetryable(errors.New("plain")))
}
