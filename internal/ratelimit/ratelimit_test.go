package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain guards against goroutine leaks from the limiter's internal
// timers across this package's concurrent tests.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// TestBoundedStartsPerSecond exercises testable property 7: across any
// 1-second window, the limiter releases at most RequestsPerSecond tokens.
func TestBoundedStartsPerSecond(t *testing.T) {
	l := New(Config{RequestsPerSecond: 10, Burst: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 1100*time.Millisecond)
	defer cancel()

	starts := 0
	for {
		if err := l.Wait(ctx); err != nil {
			break
		}
		starts++
	}

	require.LessOrEqual(t, starts, 12, "rate limiter released more than the configured ceiling within the window")
}

func TestDefaultConfigMatchesSpec(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, 10.0, cfg.RequestsPerSecond)
	require.Equal(t, 1, cfg.Burst)
}

func TestResetDiscardsAccumulatedBurst(t *testing.T) {
	l := New(Config{RequestsPerSecond: 1, Burst: 1})
	time.Sleep(20 * time.Millisecond)
	l.Reset()
	require.True(t, l.Allow())
	require.False(t, l.Allow())
}
