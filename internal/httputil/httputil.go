// Package httputil hardens outbound HTTP for the fetcher (C1): a
// TLS-1.2-floor transport, base-URL validation, and the mandatory
// identification/Accept-Encoding headers spec §4.1 requires on every
// outbound request.
package httputil

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// NormalizeBaseURL validates and trims a base URL used for outbound fetches:
// scheme must be http/https, host required, no user info. A query string
// or fragment is not rejected and stays in the returned URL.
func NormalizeBaseURL(raw string) (string, *url.URL, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return "", nil, fmt.Errorf("url is required")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", nil, fmt.Errorf("url must be a valid absolute URL")
	}
	if parsed.User != nil {
		return "", nil, fmt.Errorf("url must not include user info")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", nil, fmt.Errorf("url scheme must be http or https")
	}
	return trimmed, parsed, nil
}

// DefaultTransportWithMinTLS12 clones http.DefaultTransport and enforces a
// TLS 1.2 floor for every outbound connection the fetcher makes.
func DefaultTransportWithMinTLS12() http.RoundTripper {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return http.DefaultTransport
	}
	cloned := base.Clone()
	if cloned.TLSClientConfig != nil {
		cloned.TLSClientConfig = cloned.TLSClientConfig.Clone()
		if cloned.TLSClientConfig.MinVersion < tls.VersionTLS12 {
			cloned.TLSClientConfig.MinVersion = tls.VersionTLS12
		}
	} else {
		cloned.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return cloned
}

// NewClient builds the *http.Client the fetcher uses: hardened transport,
// per-attempt timeout (spec §4.1: 30s per attempt).
func NewClient(perAttemptTimeout time.Duration) *http.Client {
	if perAttemptTimeout <= 0 {
		perAttemptTimeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   perAttemptTimeout,
		Transport: DefaultTransportWithMinTLS12(),
	}
}

// ApplyMandatoryHeaders sets the identification header, Accept-Encoding,
// and any caller-supplied headers on req. identification must be non-empty;
// an empty identification header is a startup configuration error per
// spec §6, caught by the config loader rather than here.
func ApplyMandatoryHeaders(req *http.Request, identification string, extra http.Header) {
	req.Header.Set("User-Agent", identification)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	for key, values := range extra {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
}
