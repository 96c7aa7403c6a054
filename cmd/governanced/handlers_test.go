package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/fin-training-governance/internal/anonymize"
	"github.com/R3E-Network/fin-training-governance/internal/auditchain"
	"github.com/R3E-Network/fin-training-governance/internal/contradiction"
	"github.com/R3E-Network/fin-training-governance/internal/lifecycle"
	"github.com/R3E-Network/fin-training-governance/internal/model"
	"github.com/R3E-Network/fin-training-governance/internal/tokenstore"
	"github.com/R3E-Network/fin-training-governance/pkg/config"
	"github.com/R3E-Network/fin-training-governance/pkg/logger"
)

func newTestServer(t *testing.T) (*server, chi.Router) {
	t.Helper()
	chain := auditchain.New(config.DefaultRetentionTable())
	store, err := tokenstore.New(bytes.Repeat([]byte{7}, 32), chain)
	require.NoError(t, err)
	anonymizer := anonymize.New([]byte("test-secret"), store)
	mgr := lifecycle.New(chain, anonymizer, model.LevelFull)

	srv := &server{
		mgr:      mgr,
		chain:    chain,
		detector: contradiction.New(zeroVectorProvider{}),
		log:      logger.NewDefault("test"),
	}

	router := chi.NewRouter()
	router.Get("/healthz", srv.handleHealthz)
	srv.routes(router)
	return srv, router
}

type zeroVectorProvider struct{}

func (zeroVectorProvider) ComputeEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	return make([][]float32, len(texts)), nil
}

func completeIncomeStatementJSON() model.Statement {
	return model.Statement{
		StatementID: "stmt-1",
		FilingID:    "filing-1",
		Type:        model.Income,
		PeriodEnd:   "2023-12-31",
		Currency:    "USD",
		Fields: map[string]decimal.Decimal{
			"revenue":            decimal.NewFromInt(1000),
			"cost_of_goods_sold": decimal.NewFromInt(400),
			"gross_profit":       decimal.NewFromInt(600),
			"operating_expenses": decimal.NewFromInt(200),
			"expenses":           decimal.NewFromInt(400),
			"operating_income":   decimal.NewFromInt(400),
			"net_income":         decimal.NewFromInt(600),
		},
	}
}

func TestHealthzReturnsOK(t *testing.T) {
	_, router := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIngestStatementThenGetRecordRoundTrips(t *testing.T) {
	_, router := newTestServer(t)

	body, _ := json.Marshal(ingestStatementRequest{
		Statement:  completeIncomeStatementJSON(),
		Source:     "EDGAR",
		UploadedBy: "analyst-1",
	})
	req := httptest.NewRequest(http.MethodPost, "/statements/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	recordID := created["record_id"]
	require.NotEmpty(t, recordID)

	getReq := httptest.NewRequest(http.MethodGet, "/records/"+recordID, nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)
	assert.Equal(t, http.StatusOK, getRec.Code)

	var record model.TrainingRecord
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &record))
	assert.Equal(t, model.StatusValidated, record.Status)
}

func TestApproveForTrainingRejectsMissingRecord(t *testing.T) {
	_, router := newTestServer(t)

	body, _ := json.Marshal(approveRequest{Approver: "reviewer-1"})
	req := httptest.NewRequest(http.MethodPost, "/records/does-not-exist/approve", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAnalyzeContradictionsReturnsConsistencyScore(t *testing.T) {
	_, router := newTestServer(t)

	body, _ := json.Marshal(analyzeContradictionsRequest{Text: "Revenue grew steadily across the fiscal year reporting period."})
	req := httptest.NewRequest(http.MethodPost, "/contradictions/analyze", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var report contradiction.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1.0, report.ConsistencyScore)
}
