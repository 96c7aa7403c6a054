// Package resilience implements the fetcher's exponential-backoff retry
// policy (spec §4.1): up to MaxAttempts attempts, backoff bounded to
// [InitialDelay, MaxDelay] with the given Multiplier, honoring a
// caller-supplied Retry-After override and cooperative cancellation.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig configures backoff between attempts.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryConfig matches spec §4.1: 3 attempts, backoff bounded to
// [2s, 10s], multiplier 1 (constant delay absent a Retry-After override).
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 2 * time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   1.0,
	}
}

func (c RetryConfig) newBackOff() backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.InitialDelay
	eb.MaxInterval = c.MaxDelay
	eb.Multiplier = c.Multiplier
	eb.RandomizationFactor = 0
	eb.MaxElapsedTime = 0 // bounded externally by MaxAttempts, not elapsed wall time
	return eb
}

// RetryableFunc returns the attempt's error, and optionally a retryAfter
// override (honored for HTTP 429 responses per spec §4.1); a nil override
// falls back to the configured backoff delay.
type RetryableFunc func(attempt int) (retryAfter *time.Duration, err error)

// Retry runs fn up to cfg.MaxAttempts times, waiting between attempts per
// cfg's bounds (or the attempt's retryAfter override) and returning the
// final attempt's error if every attempt fails. ctx cancellation aborts
// immediately with ctx.Err().
func Retry(ctx context.Context, cfg RetryConfig, fn RetryableFunc) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultRetryConfig().MaxAttempts
	}
	bo := backoff.WithContext(cfg.newBackOff(), ctx)

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		retryAfter, err := fn(attempt)
		if err == nil {
			return nil
		}

		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return permanent.Err
		}
		lastErr = err

		if attempt == cfg.MaxAttempts {
			break
		}

		delay := bo.NextBackOff()
		if retryAfter != nil {
			delay = *retryAfter
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}
