package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/R3E-Network/fin-training-governance/internal/auditchain"
	"github.com/R3E-Network/fin-training-governance/internal/contradiction"
	"github.com/R3E-Network/fin-training-governance/internal/fetcher"
	"github.com/R3E-Network/fin-training-governance/internal/lifecycle"
	"github.com/R3E-Network/fin-training-governance/pkg/logger"
)

// server holds the dependencies every handler closes over.
type server struct {
	mgr      *lifecycle.Manager
	chain    *auditchain.Chain
	fetch    *fetcher.Fetcher
	detector *contradiction.Detector
	log      *logger.Logger
}

func (s *server) routes(r chi.Router) {
	r.Route("/statements", func(r chi.Router) {
		r.Post("/", s.handleIngestStatement)
		r.Post("/batch", s.handleIngestBatch)
	})

	r.Route("/records", func(r chi.Router) {
		r.Get("/{id}", s.handleGetRecord)
		r.Post("/{id}/approve", s.handleApproveForTraining)
		r.Post("/{id}/reject", s.handleRejectRecord)
	})

	r.Route("/datasets", func(r chi.Router) {
		r.Post("/", s.handleCreateDataset)
		r.Post("/{id}/train", s.handleTrackTraining)
	})

	r.Get("/models/{id}/lineage", s.handleLineageOf)
	r.Get("/audit/verify", s.handleVerifyAuditChain)
	r.Get("/stats", s.handleStatistics)
	r.Post("/contradictions/analyze", s.handleAnalyzeContradictions)
	r.Post("/filings/fetch", s.handleFetchFiling)
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
