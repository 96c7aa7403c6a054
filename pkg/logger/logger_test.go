package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/R3E-Network/fin-training-governance/internal/model"
	"github.com/R3E-Network/fin-training-governance/pkg/config"
)

func TestNewSetsLevelAndFormat(t *testing.T) {
	cfg := LoggingConfig{Level: "debug", Format: "json", Output: "stdout"}
	log := New(cfg, config.DefaultRetentionTable())
	if log.GetLevel().String() != "debug" {
		t.Fatalf("expected level debug, got %s", log.GetLevel())
	}
}

func TestNewCreatesLogFileUnderRetentionBucket(t *testing.T) {
	originalWD, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(originalWD) })

	temp := t.TempDir()
	if err := os.Chdir(temp); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	log := New(LoggingConfig{Level: "info", Format: "text", Output: "file", FilePrefix: "test"},
		config.RetentionConfig{Default: "61320h"})
	log.Info("hello")

	path := filepath.Join("logs", "7y", "test.log")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected log file to contain data")
	}
}

func TestRetentionBucketFallsBackWhenUnparsable(t *testing.T) {
	if got := retentionBucket(config.RetentionConfig{Default: ""}); got != "unscoped" {
		t.Fatalf("expected unscoped bucket, got %s", got)
	}
}

func TestWithAuditEventAddsCorrelationFields(t *testing.T) {
	log := New(LoggingConfig{Level: "info", Format: "json", Output: "stdout"}, config.DefaultRetentionTable())
	entry := log.WithAuditEvent(model.AuditEvent{Seq: 4, ID: "evt-4", EventType: "RECORD_CREATED", ActorID: "analyst-1"})
	if entry.Data["audit_seq"] != int64(4) {
		t.Fatalf("expected audit_seq field to carry the chain sequence number")
	}
	if entry.Data["event_type"] != "RECORD_CREATED" {
		t.Fatalf("expected event_type field to carry the audit event type")
	}
}
