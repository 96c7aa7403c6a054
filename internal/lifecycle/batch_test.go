package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/fin-training-governance/internal/model"
)

func TestIngestBatchProcessesEveryItemConcurrently(t *testing.T) {
	mgr, _ := newTestManager(t, model.LevelFull)

	items := make([]BatchItem, 5)
	for i := range items {
		items[i] = BatchItem{
			Statement:  completeIncomeStatement(),
			Source:     "edgar",
			TenantID:   "tenant-a",
			UploadedBy: "analyst-1",
		}
	}

	results, err := mgr.IngestBatch(context.Background(), items, 2)
	require.NoError(t, err)
	require.Len(t, results, 5)

	seen := make(map[string]bool)
	for _, r := range results {
		require.NoError(t, r.Err)
		require.NotEmpty(t, r.RecordID)
		assert.False(t, seen[r.RecordID], "expected a distinct record per batch item")
		seen[r.RecordID] = true

		record, ok := mgr.Record(r.RecordID)
		require.True(t, ok)
		assert.Equal(t, model.StatusValidated, record.Status)
	}

	stats := mgr.Statistics()
	assert.Equal(t, 5, stats[string(model.StatusValidated)])
}

func TestIngestBatchKeepsOneItemsFailureIsolated(t *testing.T) {
	mgr, _ := newTestManager(t, model.LevelFull)

	items := []BatchItem{
		{Statement: completeIncomeStatement(), Source: "edgar", TenantID: "tenant-a", UploadedBy: "analyst-1"},
		{Statement: model.Statement{Type: model.Income}, Source: "edgar", TenantID: "tenant-a", UploadedBy: "analyst-1"},
	}

	results, err := mgr.IngestBatch(context.Background(), items, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.NoError(t, results[0].Err)
	assert.NotEmpty(t, results[0].RecordID)

	assert.Error(t, results[1].Err, "a statement with no populated fields must fail its own pipeline without affecting the others")
}

func TestIngestBatchStopsOnContextCancellation(t *testing.T) {
	mgr, _ := newTestManager(t, model.LevelFull)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := []BatchItem{
		{Statement: completeIncomeStatement(), Source: "edgar", TenantID: "tenant-a", UploadedBy: "analyst-1"},
	}

	_, err := mgr.IngestBatch(ctx, items, 1)
	assert.Error(t, err)
}
