package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/R3E-Network/fin-training-governance/internal/contradiction"
	"github.com/R3E-Network/fin-training-governance/pkg/config"
)

// httpEmbeddingClient implements contradiction.EmbeddingProvider against
// an OpenAI-compatible embeddings endpoint (spec §4.10's explicit
// boundary: the core never computes embeddings itself). When no
// endpoint is configured, every call returns zero vectors so contradiction
// detection degrades to its numerical and temporal analyzers alone.
type httpEmbeddingClient struct {
	endpoint string
	client   *http.Client
}

func newEmbeddingClient(cfg config.EmbeddingConfig) *httpEmbeddingClient {
	return &httpEmbeddingClient{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type embeddingRequest struct {
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (c *httpEmbeddingClient) ComputeEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if c.endpoint == "" {
		return make([][]float32, len(texts)), nil
	}

	body, err := json.Marshal(embeddingRequest{Input: texts})
	if err != nil {
		return nil, fmt.Errorf("embedding client: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embedding client: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding client: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding client: unexpected status %d", resp.StatusCode)
	}

	var decoded embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("embedding client: decode response: %w", err)
	}

	vectors := make([][]float32, len(decoded.Data))
	for i, d := range decoded.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}
