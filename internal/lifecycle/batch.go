package lifecycle

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/R3E-Network/fin-training-governance/internal/model"
)

// BatchItem is one statement queued for concurrent ingestion.
type BatchItem struct {
	Statement  model.Statement
	Source     string
	Metadata   map[string]any
	TenantID   string
	UploadedBy string
}

// BatchResult pairs a submitted item's position with the record ID its
// pipeline produced, or the error that stopped that pipeline.
type BatchResult struct {
	RecordID string
	Err      error
}

// IngestBatch fans a slice of statements out across a bounded worker
// pool, each running its own IngestStatement pipeline independently
// (spec §4.8's ingestion worker pool). One item's pipeline error (a
// rejected statement, an anonymization leak) never aborts the others;
// IngestBatch itself only returns an error when ctx is cancelled before
// every item has been scheduled. maxConcurrency <= 0 means unbounded.
func (m *Manager) IngestBatch(ctx context.Context, items []BatchItem, maxConcurrency int) ([]BatchResult, error) {
	results := make([]BatchResult, len(items))
	g, ctx := errgroup.WithContext(ctx)
	if maxConcurrency > 0 {
		g.SetLimit(maxConcurrency)
	}

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = BatchResult{Err: err}
				return err
			}
			recordID, err := m.IngestStatement(item.Statement, item.Source, item.Metadata, item.TenantID, item.UploadedBy)
			results[i] = BatchResult{RecordID: recordID, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
