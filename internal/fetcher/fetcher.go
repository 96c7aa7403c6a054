// Package fetcher implements the rate-limited outbound fetcher (C1):
// one global token bucket shared by every request, bounded retry on
// transient failures, and a three-way failure taxonomy the rest of the
// core core can branch on without inspecting HTTP internals (spec §4.1).
package fetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	governanceerrors "github.com/R3E-Network/fin-training-governance/internal/errors"
	"github.com/R3E-Network/fin-training-governance/internal/httputil"
	"github.com/R3E-Network/fin-training-governance/internal/ratelimit"
	"github.com/R3E-Network/fin-training-governance/internal/resilience"
)

// FailureKind classifies why a Fetch ultimately failed.
type FailureKind string

const (
	FailureNone        FailureKind = ""
	FailureTransient   FailureKind = "TRANSIENT"
	FailurePermanent   FailureKind = "PERMANENT_HTTP"
	FailureCancelled   FailureKind = "CANCELLED"
)

// Result is the outcome of a successful Fetch: an HTTP round trip that
// completed with a status below 400.
type Result struct {
	Body       []byte
	StatusCode int
	Attempts   int
}

// Fetcher wraps a rate-limited, retrying HTTP client.
type Fetcher struct {
	client         *http.Client
	limiter        *ratelimit.Limiter
	retry          resilience.RetryConfig
	identification string
}

// New constructs a Fetcher sharing one limiter and retry policy across
// every call; limiter is expected to be process-wide (spec §4.1 "at most
// 10 requests/second... across all concurrent callers").
func New(limiter *ratelimit.Limiter, retry resilience.RetryConfig, perAttemptTimeout time.Duration, identification string) *Fetcher {
	return &Fetcher{
		client:         httputil.NewClient(perAttemptTimeout),
		limiter:        limiter,
		retry:          retry,
		identification: identification,
	}
}

// Fetch performs a rate-limited, retrying GET against url. It returns a
// Result when an attempt completes with a status below 400. Otherwise it
// returns a *governanceerrors.GovernanceError: TRANSIENT once retries are
// exhausted on 5xx, 429 or transport errors; PERMANENT_HTTP, without
// retrying, for any other 4xx or an invalid url; CANCELLED when ctx ends.
func (f *Fetcher) Fetch(ctx context.Context, url string, headers http.Header) (*Result, error) {
	if _, _, err := httputil.NormalizeBaseURL(url); err != nil {
		return nil, governanceerrors.PermanentFetch(url, http.StatusBadRequest)
	}

	var result *Result

	retryErr := resilience.Retry(ctx, f.retry, func(attempt int) (*time.Duration, error) {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, backoff.Permanent(permanentErr{err})
		}
		httputil.ApplyMandatoryHeaders(req, f.identification, headers)

		resp, err := f.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(cancelledErr{ctx.Err()})
			}
			// Connection reset, DNS failure, and timeout all surface here
			// as generic transport errors; spec §4.1 treats them all as
			// TRANSIENT, so no further classification is needed.
			return nil, err
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, readErr
		}

		if resp.StatusCode >= 500 {
			return nil, errors.New("server error " + strconv.Itoa(resp.StatusCode))
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			result = &Result{Body: body, StatusCode: resp.StatusCode, Attempts: attempt}
			return retryAfterDelay(resp.Header.Get("Retry-After")), errors.New("rate limited")
		}
		if resp.StatusCode >= 400 {
			result = &Result{Body: body, StatusCode: resp.StatusCode, Attempts: attempt}
			return nil, backoff.Permanent(permanentErr{errors.New("non-retryable status " + strconv.Itoa(resp.StatusCode))})
		}

		result = &Result{Body: body, StatusCode: resp.StatusCode, Attempts: attempt}
		return nil, nil
	})

	if retryErr == nil {
		return result, nil
	}

	var pe permanentErr
	if errors.As(retryErr, &pe) {
		status := http.StatusBadGateway
		if result != nil {
			status = result.StatusCode
		}
		return nil, governanceerrors.PermanentFetch(url, status)
	}
	var ce cancelledErr
	if errors.As(retryErr, &ce) {
		return nil, governanceerrors.Cancelled("fetch")
	}
	if ctx.Err() != nil {
		return nil, governanceerrors.Cancelled("fetch")
	}
	return nil, governanceerrors.TransientFetch(url, retryErr)
}

// permanentErr marks an attempt error as non-retryable (4xx other than
// 429, malformed request).
type permanentErr struct{ err error }

func (p permanentErr) Error() string { return p.err.Error() }
func (p permanentErr) Unwrap() error { return p.err }

type cancelledErr struct{ err error }

func (c cancelledErr) Error() string { return c.err.Error() }
func (c cancelledErr) Unwrap() error { return c.err }

// Classify maps an error returned by Fetch to its failure taxonomy (spec
// §4.1): TRANSIENT, PERMANENT_HTTP, or CANCELLED. Any other error (e.g. a
// caller bug) classifies as FailureNone.
func Classify(err error) FailureKind {
	ge := governanceerrors.Get(err)
	if ge == nil {
		return FailureNone
	}
	switch ge.Code {
	case governanceerrors.ErrCodeTransientFetch:
		return FailureTransient
	case governanceerrors.ErrCodePermanentFetch:
		return FailurePermanent
	case governanceerrors.ErrCodeCancelled:
		return FailureCancelled
	default:
		return FailureNone
	}
}

// retryAfterDelay parses a Retry-After header value (seconds form) into a
// duration override, returning nil (fall back to the fetcher's own
// backoff) when the header is absent or unparseable.
func retryAfterDelay(header string) *time.Duration {
	if header == "" {
		return nil
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return nil
	}
	d := time.Duration(seconds) * time.Second
	return &d
}
