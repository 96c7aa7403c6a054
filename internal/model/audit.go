package model

import "time"

// AuditEvent is one entry in the hash chain. Seq, PrevHash and SelfHash
// are populated by internal/auditchain at append time, which also fills
// in Ts and ID when the caller leaves them zero; everything else is
// supplied by the caller.
type AuditEvent struct {
	ID           string         `json:"id"`
	Seq          int64          `json:"seq"`
	Ts           time.Time      `json:"ts"`
	TenantID     string         `json:"tenant_id,omitempty"`
	ActorID      string         `json:"actor_id,omitempty"`
	EventType    string         `json:"event_type"`
	Severity     string         `json:"severity"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	Action       string         `json:"action"`
	Changes      map[string]any `json:"changes,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	PrevHash     string         `json:"prev_hash"`
	SelfHash     string         `json:"self_hash,omitempty"`
}

// Event kinds the core emits, per spec §4.7.
const (
	EventRecordCreated            = "record-created"
	EventRecordStateChanged       = "record-state-changed"
	EventAnonymizationPerformed   = "anonymization-performed"
	EventDatasetCreated           = "dataset-created"
	EventModelTrainedOnDataset    = "model-trained-on-dataset"
	EventIntegrityCheckPerformed  = "integrity-check-performed"
	EventApprovalRefused          = "approval-refused"
	EventTokenReverseLookupRead   = "token-reverse-lookup-read"
)

// Severity levels used on AuditEvent.Severity.
const (
	SeverityInfo     = "INFO"
	SeverityWarning  = "WARNING"
	SeverityCritical = "CRITICAL"
)
