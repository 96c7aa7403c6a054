package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInstrumentHandlerRecordsRequest(t *testing.T) {
	httpRequests.Reset()

	handler := InstrumentHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/statements/123", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(httpRequests.WithLabelValues("POST", "/statements/:id", "201")))
}

func TestCanonicalPathCollapsesIdentifiers(t *testing.T) {
	assert.Equal(t, "/", canonicalPath("/"))
	assert.Equal(t, "/datasets", canonicalPath("/datasets"))
	assert.Equal(t, "/datasets/:id", canonicalPath("/datasets/ds-001"))
	assert.Equal(t, "/healthz", canonicalPath("/healthz"))
}

func TestRecordFetchAttemptIncrementsCounter(t *testing.T) {
	fetchAttempts.Reset()
	RecordFetchAttempt("sec.gov", "success", 0)
	assert.Equal(t, float64(1), testutil.ToFloat64(fetchAttempts.WithLabelValues("sec.gov", "success")))
}

func TestSetLifecycleRecordCountsReplacesSnapshot(t *testing.T) {
	SetLifecycleRecordCounts(map[string]int{"INGESTED": 3, "APPROVED": 1})
	assert.Equal(t, float64(3), testutil.ToFloat64(lifecycleRecordsByStatus.WithLabelValues("INGESTED")))
	assert.Equal(t, float64(1), testutil.ToFloat64(lifecycleRecordsByStatus.WithLabelValues("APPROVED")))

	SetLifecycleRecordCounts(map[string]int{"APPROVED": 2})
	assert.Equal(t, float64(0), testutil.ToFloat64(lifecycleRecordsByStatus.WithLabelValues("INGESTED")))
	assert.Equal(t, float64(2), testutil.ToFloat64(lifecycleRecordsByStatus.WithLabelValues("APPROVED")))
}
