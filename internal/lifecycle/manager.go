// Package lifecycle implements the training-data lifecycle manager
// (C8): the orchestration hub that drives a TrainingRecord through
// validation, anonymization, quality scoring and approval, composes
// datasets, and tracks model-training lineage (spec §4.8).
package lifecycle

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	governanceerrors "github.com/R3E-Network/fin-training-governance/internal/errors"
	"github.com/R3E-Network/fin-training-governance/internal/anonymize"
	"github.com/R3E-Network/fin-training-governance/internal/auditchain"
	"github.com/R3E-Network/fin-training-governance/internal/model"
	"github.com/R3E-Network/fin-training-governance/internal/quality"
)

// Manager owns every TrainingRecord and Dataset. Per-record transitions
// serialize via a striped mutex keyed by record ID (spec §5); the
// records/datasets maps themselves are guarded by a separate coarse
// mutex only while a key is being added or looked up.
type Manager struct {
	mapsMu   sync.RWMutex
	records  map[string]*model.TrainingRecord
	datasets map[string]*model.Dataset

	locks      *stripedLock
	chain      *auditchain.Chain
	anonymizer *anonymize.Anonymizer
	level      model.TokenLevel

	newID func() string
	now   func() time.Time
}

// New constructs a Manager. level is the anonymization strength applied
// to every ingested statement.
func New(chain *auditchain.Chain, anonymizer *anonymize.Anonymizer, level model.TokenLevel) *Manager {
	return &Manager{
		records:    make(map[string]*model.TrainingRecord),
		datasets:   make(map[string]*model.Dataset),
		locks:      newStripedLock(),
		chain:      chain,
		anonymizer: anonymizer,
		level:      level,
		newID:      func() string { return uuid.NewString() },
		now:        time.Now,
	}
}

func (m *Manager) getRecord(id string) (*model.TrainingRecord, bool) {
	m.mapsMu.RLock()
	defer m.mapsMu.RUnlock()
	r, ok := m.records[id]
	return r, ok
}

// IngestStatement creates a TrainingRecord and synchronously drives it
// through PENDING_REVIEW -> ANONYMIZING -> ANONYMIZED -> VALIDATED (or
// REJECTED on the first failure), emitting an AuditEvent per transition.
// metadata carries any non-canonical identifying fields (company name,
// contact email, ...) alongside the statement's canonical financial
// fields for the anonymization walk.
func (m *Manager) IngestStatement(statement model.Statement, source string, metadata map[string]any, tenantID, uploadedBy string) (string, error) {
	if len(statement.Fields) == 0 {
		return "", governanceerrors.Validation("fields", "statement has no populated fields")
	}

	record := &model.TrainingRecord{
		ID:            m.newID(),
		StatementType: statement.Type,
		Source:        source,
		Status:        model.StatusPendingReview,
		Statement:     &statement,
		UploadedBy:    uploadedBy,
		UploadedAt:    m.now().UTC(),
		UsedInModels:  []model.ModelTrainingEntry{},
		TenantID:      tenantID,
	}

	m.mapsMu.Lock()
	m.records[record.ID] = record
	m.mapsMu.Unlock()

	m.emit(model.AuditEvent{
		EventType:    model.EventRecordCreated,
		Severity:     model.SeverityInfo,
		ResourceType: "training_record",
		ResourceID:   record.ID,
		Action:       "ingest",
		TenantID:     tenantID,
		ActorID:      uploadedBy,
	})

	var pipelineErr error
	m.locks.withLock(record.ID, func() {
		pipelineErr = m.runPipeline(record, statement, metadata)
	})
	if pipelineErr != nil {
		return record.ID, pipelineErr
	}
	return record.ID, nil
}

// runPipeline executes the ANONYMIZING -> ANONYMIZED -> VALIDATED edges.
// Caller must already hold record's striped lock.
func (m *Manager) runPipeline(record *model.TrainingRecord, statement model.Statement, metadata map[string]any) error {
	if err := m.transition(record, model.StatusAnonymizing, "validate"); err != nil {
		return err
	}

	input := anonymizeInput(statement, metadata)
	anonymized, anonMeta, err := m.anonymizer.Anonymize(input, m.level)
	if err != nil {
		// AnonymizationError: record parked in ANONYMIZING, retryable.
		m.emit(model.AuditEvent{
			EventType: model.EventRecordStateChanged, Severity: model.SeverityWarning,
			ResourceType: "training_record", ResourceID: record.ID, Action: "anonymize-failed",
			Metadata: map[string]any{"error": err.Error()},
		})
		return governanceerrors.AnonymizationFailed(err)
	}

	record.AnonymizedStatement = anonymized.ToAny().(map[string]any)
	record.AnonymizationMetadata = &anonMeta
	if err := m.transition(record, model.StatusAnonymized, "anonymize"); err != nil {
		return err
	}
	m.emit(model.AuditEvent{
		EventType: model.EventAnonymizationPerformed, Severity: model.SeverityInfo,
		ResourceType: "training_record", ResourceID: record.ID, Action: "anonymize",
		Metadata: map[string]any{"pii_count": anonMeta.PIICount, "pii_kinds_removed": anonMeta.PIIKindsRemoved},
	})

	isValid, issues := anonymize.Validate(anonymized)
	validation := model.ValidationResult{IsValid: isValid, Issues: issues}
	record.AnonymizationValidation = &validation

	assessment := quality.Assess(statement)
	record.Quality = &assessment

	if !isValid {
		m.rejectLocked(record, "anonymization_leak", model.SeverityCritical)
		return governanceerrors.AnonymizationLeak(issues)
	}

	if err := m.transition(record, model.StatusValidated, "validate-anonymization-and-assess-quality"); err != nil {
		return err
	}
	return nil
}

func anonymizeInput(statement model.Statement, metadata map[string]any) anonymize.Value {
	obj := make(map[string]anonymize.Value, len(statement.Fields)+len(metadata))
	for k, v := range statement.Fields {
		obj[k] = anonymize.Dec(v)
	}
	for k, v := range metadata {
		obj[k] = anonymize.FromAny(v)
	}
	return anonymize.Object(obj)
}

// transition moves record from its current status to to, recording the
// before/after state names on the emitted AuditEvent.
func (m *Manager) transition(record *model.TrainingRecord, to model.RecordStatus, action string) error {
	from := record.Status
	if !isAllowed(from, to) {
		return governanceerrors.InvalidTransition(string(from), string(to))
	}
	record.Status = to
	m.emit(model.AuditEvent{
		EventType: model.EventRecordStateChanged, Severity: model.SeverityInfo,
		ResourceType: "training_record", ResourceID: record.ID, Action: action,
		Changes: map[string]any{"from": string(from), "to": string(to)},
	})
	return nil
}

// rejectLocked moves record to REJECTED. Caller must hold record's lock.
func (m *Manager) rejectLocked(record *model.TrainingRecord, reason string, severity string) {
	from := record.Status
	record.Status = model.StatusRejected
	record.RejectionReason = reason
	m.emit(model.AuditEvent{
		EventType: model.EventRecordStateChanged, Severity: severity,
		ResourceType: "training_record", ResourceID: record.ID, Action: "reject",
		Changes:  map[string]any{"from": string(from), "to": string(model.StatusRejected)},
		Metadata: map[string]any{"reason": reason},
	})
}

// Reject cancels record for any reason (e.g. cooperative cancellation,
// spec §5) from any non-terminal state.
func (m *Manager) Reject(recordID, reason string) error {
	record, ok := m.getRecord(recordID)
	if !ok {
		return governanceerrors.NotFound("training record", recordID)
	}
	var err error
	m.locks.withLock(recordID, func() {
		if isTerminal(record.Status) {
			err = governanceerrors.InvalidTransition(string(record.Status), "terminal")
			return
		}
		severity := model.SeverityWarning
		if reason == "CANCELLED" {
			severity = model.SeverityInfo
		}
		m.rejectLocked(record, reason, severity)
	})
	return err
}

// ApproveForTraining implements the approve transition. Preconditions
// (spec §4.8): quality.overall != POOR and anonymization_validation.is_valid.
// A refusal is not an error return to the caller in the Go sense; it is
// a {false, reason} result, matching spec §7 "every lifecycle call
// returns {ok, record_id?, reason?}".
func (m *Manager) ApproveForTraining(recordID, approver string) (bool, string) {
	record, ok := m.getRecord(recordID)
	if !ok {
		return false, "record_not_found"
	}

	var ok2 bool
	var reason string
	m.locks.withLock(recordID, func() {
		if record.Status != model.StatusValidated {
			reason = fmt.Sprintf("record status is %s, not VALIDATED", record.Status)
			return
		}
		var failing []string
		if record.Quality == nil || record.Quality.Overall == model.Poor {
			failing = append(failing, "quality_not_poor")
		}
		if record.AnonymizationValidation == nil || !record.AnonymizationValidation.IsValid {
			failing = append(failing, "anonymization_valid")
		}
		if len(failing) > 0 {
			m.emit(model.AuditEvent{
				EventType: model.EventApprovalRefused, Severity: model.SeverityWarning,
				ResourceType: "training_record", ResourceID: recordID, Action: "approve-refused",
				ActorID:  approver,
				Metadata: map[string]any{"failing_preconditions": failing},
			})
			reason = fmt.Sprintf("failing preconditions: %v", failing)
			return
		}

		now := m.now().UTC()
		record.ApprovedBy = approver
		record.ApprovedAt = &now
		if err := m.transition(record, model.StatusApprovedForTraining, "approve"); err != nil {
			reason = err.Error()
			return
		}
		ok2 = true
	})
	return ok2, reason
}

// CreateDataset composes a named dataset from recordIDs. Dataset purity
// (spec §4.8, testable property 6) requires every cited record to be
// APPROVED_FOR_TRAINING at creation time; a single impure record fails
// the whole call, never a partial dataset. Member records flip to
// IN_TRAINING on success.
func (m *Manager) CreateDataset(name, purpose string, recordIDs []string, createdBy string) (string, error) {
	records := make([]*model.TrainingRecord, 0, len(recordIDs))
	for _, id := range recordIDs {
		record, ok := m.getRecord(id)
		if !ok {
			return "", governanceerrors.NotFound("training record", id)
		}
		records = append(records, record)
	}

	for _, record := range records {
		if record.Status != model.StatusApprovedForTraining {
			return "", governanceerrors.DatasetImpure(record.ID, string(record.Status))
		}
	}

	dataset := &model.Dataset{
		ID:        m.newID(),
		Name:      name,
		Purpose:   purpose,
		RecordIDs: append([]string(nil), recordIDs...),
		CreatedBy: createdBy,
		CreatedAt: m.now().UTC(),
	}

	for _, record := range records {
		m.locks.withLock(record.ID, func() {
			_ = m.transition(record, model.StatusInTraining, "compose-dataset")
		})
	}

	m.mapsMu.Lock()
	m.datasets[dataset.ID] = dataset
	m.mapsMu.Unlock()

	m.emit(model.AuditEvent{
		EventType: model.EventDatasetCreated, Severity: model.SeverityInfo,
		ResourceType: "dataset", ResourceID: dataset.ID, Action: "create",
		ActorID:  createdBy,
		Metadata: map[string]any{"record_ids": dataset.RecordIDs, "name": name},
	})

	return dataset.ID, nil
}

// TrackTraining records that modelID was trained on dataset datasetID,
// appending a ModelTrainingEntry to the dataset and to every record it
// cites, so LineageOf can resolve a model back to its source records.
func (m *Manager) TrackTraining(datasetID, modelID string, metadata map[string]any) error {
	m.mapsMu.Lock()
	dataset, ok := m.datasets[datasetID]
	m.mapsMu.Unlock()
	if !ok {
		return governanceerrors.NotFound("dataset", datasetID)
	}

	entry := model.ModelTrainingEntry{ModelID: modelID, TrainedAt: m.now().UTC(), Metadata: metadata}

	m.mapsMu.Lock()
	dataset.ModelsTrained = append(dataset.ModelsTrained, entry)
	m.mapsMu.Unlock()

	for _, recordID := range dataset.RecordIDs {
		record, ok := m.getRecord(recordID)
		if !ok {
			continue
		}
		m.locks.withLock(recordID, func() {
			record.UsedInModels = append(record.UsedInModels, entry)
		})
	}

	m.emit(model.AuditEvent{
		EventType: model.EventModelTrainedOnDataset, Severity: model.SeverityInfo,
		ResourceType: "dataset", ResourceID: datasetID, Action: "track-training",
		Metadata: map[string]any{"model_id": modelID},
	})
	return nil
}

// LineageOf transitively resolves every dataset that trained modelID and
// every record that composed those datasets.
func (m *Manager) LineageOf(modelID string) model.LineageReport {
	report := model.LineageReport{ModelID: modelID}
	seenRecords := make(map[string]bool)

	m.mapsMu.RLock()
	datasets := make([]*model.Dataset, 0, len(m.datasets))
	for _, d := range m.datasets {
		datasets = append(datasets, d)
	}
	m.mapsMu.RUnlock()

	for _, dataset := range datasets {
		trained := false
		for _, entry := range dataset.ModelsTrained {
			if entry.ModelID == modelID {
				trained = true
				break
			}
		}
		if !trained {
			continue
		}
		report.Datasets = append(report.Datasets, *dataset)
		for _, recordID := range dataset.RecordIDs {
			if seenRecords[recordID] {
				continue
			}
			seenRecords[recordID] = true
			if record, ok := m.Record(recordID); ok {
				report.Records = append(report.Records, record)
			}
		}
	}
	return report
}

// Statistics returns the current count of records per status, for the
// metrics gauge (pkg/metrics.SetLifecycleRecordCounts).
func (m *Manager) Statistics() map[string]int {
	m.mapsMu.RLock()
	defer m.mapsMu.RUnlock()
	counts := make(map[string]int)
	for _, r := range m.records {
		counts[string(r.Status)]++
	}
	return counts
}

// Record returns a copy of the record's current state, or false if it
// does not exist.
func (m *Manager) Record(recordID string) (model.TrainingRecord, bool) {
	record, ok := m.getRecord(recordID)
	if !ok {
		return model.TrainingRecord{}, false
	}
	var snapshot model.TrainingRecord
	m.locks.withLock(recordID, func() {
		snapshot = *record
	})
	return snapshot, true
}

func (m *Manager) emit(event model.AuditEvent) {
	if m.chain == nil {
		return
	}
	_, _ = m.chain.Append(event)
}
