package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/R3E-Network/fin-training-governance/internal/lifecycle"
	"github.com/R3E-Network/fin-training-governance/internal/model"
)

type ingestStatementRequest struct {
	Statement  model.Statement `json:"statement"`
	Source     string          `json:"source"`
	Metadata   map[string]any  `json:"metadata,omitempty"`
	TenantID   string          `json:"tenant_id,omitempty"`
	UploadedBy string          `json:"uploaded_by"`
}

func (s *server) handleIngestStatement(w http.ResponseWriter, r *http.Request) {
	var req ingestStatementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	recordID, err := s.mgr.IngestStatement(req.Statement, req.Source, req.Metadata, req.TenantID, req.UploadedBy)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.logLatestAuditEvent()
	writeJSON(w, http.StatusCreated, map[string]string{"record_id": recordID})
}

// logLatestAuditEvent correlates the application log with the
// hash-chained audit event the preceding call just appended, so an
// operator can jump from a request log line straight to its entry in
// the chain via audit_seq.
func (s *server) logLatestAuditEvent() {
	seq := int64(s.chain.Len() - 1)
	if seq < 0 {
		return
	}
	events := s.chain.Events(seq, seq)
	if len(events) == 0 {
		return
	}
	s.log.WithAuditEvent(events[0]).Info("audit event appended")
}

type ingestBatchRequest struct {
	Items          []ingestStatementRequest `json:"items"`
	MaxConcurrency int                      `json:"max_concurrency,omitempty"`
}

type ingestBatchResult struct {
	RecordID string `json:"record_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// handleIngestBatch fans a batch of statements out across the lifecycle
// manager's worker pool (C8), one pipeline per item.
func (s *server) handleIngestBatch(w http.ResponseWriter, r *http.Request) {
	var req ingestBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items := make([]lifecycle.BatchItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = lifecycle.BatchItem{
			Statement:  item.Statement,
			Source:     item.Source,
			Metadata:   item.Metadata,
			TenantID:   item.TenantID,
			UploadedBy: item.UploadedBy,
		}
	}

	results, err := s.mgr.IngestBatch(r.Context(), items, req.MaxConcurrency)
	if err != nil {
		writeError(w, http.StatusGatewayTimeout, err.Error())
		return
	}

	out := make([]ingestBatchResult, len(results))
	for i, res := range results {
		out[i] = ingestBatchResult{RecordID: res.RecordID}
		if res.Err != nil {
			out[i].Error = res.Err.Error()
		}
	}
	writeJSON(w, http.StatusCreated, map[string]any{"results": out})
}

func (s *server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	record, ok := s.mgr.Record(id)
	if !ok {
		writeError(w, http.StatusNotFound, "training record not found")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

type approveRequest struct {
	Approver string `json:"approver"`
}

func (s *server) handleApproveForTraining(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req approveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	approved, reason := s.mgr.ApproveForTraining(id, req.Approver)
	status := http.StatusOK
	if !approved {
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]any{"approved": approved, "reason": reason})
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (s *server) handleRejectRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req rejectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.mgr.Reject(id, req.Reason); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(model.StatusRejected)})
}

type createDatasetRequest struct {
	Name      string   `json:"name"`
	Purpose   string   `json:"purpose"`
	RecordIDs []string `json:"record_ids"`
	CreatedBy string   `json:"created_by"`
}

func (s *server) handleCreateDataset(w http.ResponseWriter, r *http.Request) {
	var req createDatasetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	datasetID, err := s.mgr.CreateDataset(req.Name, req.Purpose, req.RecordIDs, req.CreatedBy)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"dataset_id": datasetID})
}

type trackTrainingRequest struct {
	ModelID  string         `json:"model_id"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (s *server) handleTrackTraining(w http.ResponseWriter, r *http.Request) {
	datasetID := chi.URLParam(r, "id")
	var req trackTrainingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.mgr.TrackTraining(datasetID, req.ModelID, req.Metadata); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "trained"})
}

func (s *server) handleLineageOf(w http.ResponseWriter, r *http.Request) {
	modelID := chi.URLParam(r, "id")
	writeJSON(w, http.StatusOK, s.mgr.LineageOf(modelID))
}

func (s *server) handleVerifyAuditChain(w http.ResponseWriter, r *http.Request) {
	from, to := int64(0), int64(s.chain.Len()-1)
	if to < 0 {
		to = 0
	}
	ok, failingSeq := s.chain.Verify(from, to)
	resp := map[string]any{"valid": ok}
	if failingSeq != nil {
		resp["first_failing_seq"] = *failingSeq
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.mgr.Statistics())
}

type analyzeContradictionsRequest struct {
	Text string `json:"text"`
}

func (s *server) handleAnalyzeContradictions(w http.ResponseWriter, r *http.Request) {
	var req analyzeContradictionsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.detector.Analyze(r.Context(), req.Text)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type fetchFilingRequest struct {
	URL string `json:"url"`
}

// handleFetchFiling exercises the rate-limited fetcher (C1) directly,
// returning the raw body so operators can inspect a filing document
// before it is parsed and ingested.
func (s *server) handleFetchFiling(w http.ResponseWriter, r *http.Request) {
	var req fetchFilingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.fetch.Fetch(r.Context(), req.URL, nil)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status_code": result.StatusCode,
		"body":        string(result.Body),
	})
}
