package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/R3E-Network/fin-training-governance/internal/ratelimit"
	"github.com/R3E-Network/fin-training-governance/internal/resilience"
)

// TestMain guards against goroutine leaks from the fetcher's retry/backoff
// loop; net/http's own connection-pool goroutines linger briefly after
// httptest.Server.Close() so its persistent-connection loops are ignored.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 1}
}

func newTestFetcher() *Fetcher {
	limiter := ratelimit.New(ratelimit.Config{RequestsPerSecond: 1000, Burst: 1000})
	return New(limiter, fastRetry(), time.Second, "governance-test/1.0")
}

func TestFetchReturnsBodyOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "governance-test/1.0", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	f := newTestFetcher()
	result, err := f.Fetch(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(result.Body))
}

func TestFetchRetriesOnServerErrorThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := newTestFetcher()
	result, err := f.Fetch(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Attempts)
}

func TestFetchExhaustsRetriesAsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := newTestFetcher()
	_, err := f.Fetch(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.Equal(t, FailureTransient, Classify(err))
}

func TestFetchDoesNotRetryNonRetryable4xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := newTestFetcher()
	_, err := f.Fetch(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.Equal(t, FailurePermanent, Classify(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchHonorsRetryAfterOn429(t *testing.T) {
	var calls int32
	start := time.Now()
	var secondCallAt time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		secondCallAt = time.Now()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := newTestFetcher()
	_, err := f.Fetch(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.WithinDuration(t, start, secondCallAt, time.Second)
}

func TestFetchRespectsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := newTestFetcher()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Fetch(ctx, srv.URL, nil)
	require.Error(t, err)
	assert.Equal(t, FailureCancelled, Classify(err))
}

func TestFetchRejectsMalformedURL(t *testing.T) {
	f := newTestFetcher()
	_, err := f.Fetch(context.Background(), "not-a-url", nil)
	require.Error(t, err)
	assert.Equal(t, FailurePermanent, Classify(err))
}
