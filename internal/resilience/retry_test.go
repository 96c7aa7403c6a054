package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsImmediately(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 1}

	err := Retry(context.Background(), cfg, func(attempt int) (*time.Duration, error) {
		return nil, nil
	})

	require.NoError(t, err)
}

func TestRetryEventualSuccess(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 1}
	attempts := 0

	err := Retry(context.Background(), cfg, func(attempt int) (*time.Duration, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("transient")
		}
		return nil, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 1}
	sentinel := errors.New("always fails")
	attempts := 0

	err := Retry(context.Background(), cfg, func(attempt int) (*time.Duration, error) {
		attempts++
		return nil, sentinel
	})

	assert.Equal(t, sentinel, err)
	assert.Equal(t, 2, attempts)
}

func TestRetryHonorsRetryAfterOverride(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 2, InitialDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 1}
	override := 5 * time.Millisecond

	start := time.Now()
	err := Retry(context.Background(), cfg, func(attempt int) (*time.Duration, error) {
		if attempt == 1 {
			return &override, errors.New("429")
		}
		return nil, nil
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Less(t, elapsed, time.Second, "Retry-After override should short-circuit the configured hour-long backoff")
}

func TestRetryRespectsCancellation(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, InitialDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 1}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, cfg, func(attempt int) (*time.Duration, error) {
		return nil, errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled)
}
