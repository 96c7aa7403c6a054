// Package metrics exposes the governance core's Prometheus collectors:
// the admin HTTP surface, the rate-limited fetcher (C1), the anonymizer
// (C4/C5), the audit chain (C7), the lifecycle manager (C8), and the
// sampling engine (C9).
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the application-specific Prometheus collectors.
var Registry = prometheus.NewRegistry()

var (
	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "governance",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight admin HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "governance",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of admin HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "governance",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of admin HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	fetchAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "governance",
			Subsystem: "fetch",
			Name:      "attempts_total",
			Help:      "Total fetch attempts grouped by host and outcome.",
		},
		[]string{"host", "outcome"},
	)

	fetchRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "governance",
			Subsystem: "fetch",
			Name:      "retries_total",
			Help:      "Total retry attempts issued by the fetcher's backoff policy.",
		},
		[]string{"host"},
	)

	fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "governance",
			Subsystem: "fetch",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of a fetch call, including retries.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"host", "outcome"},
	)

	anonymizationFields = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "governance",
			Subsystem: "anonymize",
			Name:      "fields_total",
			Help:      "Total fields processed by the anonymizer, grouped by PII kind and action.",
		},
		[]string{"kind", "action"},
	)

	anonymizationLeaks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "governance",
			Subsystem: "anonymize",
			Name:      "leak_detections_total",
			Help:      "Total PII leaks caught by the post-anonymization validator, grouped by kind.",
		},
		[]string{"kind"},
	)

	auditAppends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "governance",
			Subsystem: "audit",
			Name:      "appends_total",
			Help:      "Total audit events appended to the hash chain, grouped by event type.",
		},
		[]string{"event_type"},
	)

	auditChainLength = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "governance",
			Subsystem: "audit",
			Name:      "chain_length",
			Help:      "Current number of events in the audit chain.",
		},
	)

	auditVerifyFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "governance",
			Subsystem: "audit",
			Name:      "verify_failures_total",
			Help:      "Total chain integrity verification failures, grouped by reason.",
		},
		[]string{"reason"},
	)

	lifecycleTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "governance",
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Total training-record lifecycle transitions, grouped by from and to status.",
		},
		[]string{"from", "to"},
	)

	lifecycleRecordsByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "governance",
			Subsystem: "lifecycle",
			Name:      "records_by_status",
			Help:      "Current number of training records in each status.",
		},
		[]string{"status"},
	)

	samplingEvaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "governance",
			Subsystem: "sampling",
			Name:      "evaluations_total",
			Help:      "Total sampling-plan evaluations, grouped by method and accept/reject decision.",
		},
		[]string{"method", "decision"},
	)

	contradictionChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "governance",
			Subsystem: "contradiction",
			Name:      "checks_total",
			Help:      "Total contradiction-detector comparisons, grouped by analyzer and verdict.",
		},
		[]string{"analyzer", "verdict"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		fetchAttempts,
		fetchRetries,
		fetchDuration,
		anonymizationFields,
		anonymizationLeaks,
		auditAppends,
		auditChainLength,
		auditVerifyFailures,
		lifecycleTransitions,
		lifecycleRecordsByStatus,
		samplingEvaluations,
		contradictionChecks,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the admin HTTP surface with request metrics.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordFetchAttempt records a single fetch attempt's outcome ("success",
// "transient_error", "permanent_error") and, on terminal outcomes, its
// total wall-clock duration.
func RecordFetchAttempt(host, outcome string, duration time.Duration) {
	if host == "" {
		host = "unknown"
	}
	fetchAttempts.WithLabelValues(host, outcome).Inc()
	if duration > 0 {
		fetchDuration.WithLabelValues(host, outcome).Observe(duration.Seconds())
	}
}

// RecordFetchRetry records one retry issued by the fetcher's backoff policy.
func RecordFetchRetry(host string) {
	if host == "" {
		host = "unknown"
	}
	fetchRetries.WithLabelValues(host).Inc()
}

// RecordAnonymizedField records one field the anonymizer acted on: action
// is "tokenized", "redacted", "masked", or "passthrough".
func RecordAnonymizedField(kind, action string) {
	anonymizationFields.WithLabelValues(kind, action).Inc()
}

// RecordAnonymizationLeak records a PII leak caught post-anonymization.
func RecordAnonymizationLeak(kind string) {
	anonymizationLeaks.WithLabelValues(kind).Inc()
}

// RecordAuditAppend records one event appended to the hash chain and
// publishes the chain's new length.
func RecordAuditAppend(eventType string, chainLength int) {
	auditAppends.WithLabelValues(eventType).Inc()
	auditChainLength.Set(float64(chainLength))
}

// RecordAuditVerifyFailure records a chain verification failure, reason
// being "hash_mismatch", "sequence_gap", or "prev_hash_mismatch".
func RecordAuditVerifyFailure(reason string) {
	auditVerifyFailures.WithLabelValues(reason).Inc()
}

// RecordLifecycleTransition records a training-record status transition.
func RecordLifecycleTransition(from, to string) {
	lifecycleTransitions.WithLabelValues(from, to).Inc()
}

// SetLifecycleRecordCounts replaces the per-status gauge snapshot.
func SetLifecycleRecordCounts(counts map[string]int) {
	lifecycleRecordsByStatus.Reset()
	for status, n := range counts {
		lifecycleRecordsByStatus.WithLabelValues(status).Set(float64(n))
	}
}

// RecordSamplingEvaluation records one sampling-plan evaluation outcome.
func RecordSamplingEvaluation(method, decision string) {
	samplingEvaluations.WithLabelValues(method, decision).Inc()
}

// RecordContradictionCheck records one contradiction-detector comparison.
func RecordContradictionCheck(analyzer, verdict string) {
	contradictionChecks.WithLabelValues(analyzer, verdict).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// canonicalPath collapses path parameters so that requests/duration
// metrics don't explode into one series per distinct identifier.
func canonicalPath(raw string) string {
	if raw == "" || raw == "/" {
		return "/"
	}
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	switch parts[0] {
	case "statements", "datasets", "records":
		if len(parts) == 1 {
			return "/" + parts[0]
		}
		return "/" + parts[0] + "/:id"
	default:
		return "/" + parts[0]
	}
}
