package model

import "time"

// RecordStatus is a TrainingRecord's position in the lifecycle state
// machine (spec §4.8).
type RecordStatus string

const (
	StatusPendingReview       RecordStatus = "PENDING_REVIEW"
	StatusAnonymizing         RecordStatus = "ANONYMIZING"
	StatusAnonymized          RecordStatus = "ANONYMIZED"
	StatusValidated           RecordStatus = "VALIDATED"
	StatusApprovedForTraining RecordStatus = "APPROVED_FOR_TRAINING"
	StatusInTraining          RecordStatus = "IN_TRAINING"
	StatusRejected            RecordStatus = "REJECTED"
	StatusRetired             RecordStatus = "RETIRED"
)

// ModelTrainingEntry is one row appended by TrackTraining.
type ModelTrainingEntry struct {
	ModelID   string         `json:"model_id"`
	TrainedAt time.Time      `json:"trained_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// TrainingRecord is the unit the lifecycle manager owns exclusively;
// every field mutation happens inside a state-machine transition.
type TrainingRecord struct {
	ID                       string                  `json:"id"`
	StatementType            StatementType           `json:"statement_type"`
	Source                   string                  `json:"source"`
	Status                   RecordStatus            `json:"status"`
	Statement                *Statement              `json:"statement,omitempty"`
	AnonymizedStatement      map[string]any          `json:"anonymized_statement,omitempty"`
	AnonymizationMetadata    *AnonymizationMetadata  `json:"anonymization_metadata,omitempty"`
	AnonymizationValidation  *ValidationResult       `json:"anonymization_validation,omitempty"`
	Quality                  *QualityAssessment      `json:"quality,omitempty"`
	UploadedBy               string                  `json:"uploaded_by"`
	UploadedAt               time.Time               `json:"uploaded_at"`
	ApprovedBy               string                  `json:"approved_by,omitempty"`
	ApprovedAt               *time.Time              `json:"approved_at,omitempty"`
	UsedInModels             []ModelTrainingEntry    `json:"used_in_models"`
	RejectionReason          string                  `json:"rejection_reason,omitempty"`
	TenantID                 string                  `json:"tenant_id,omitempty"`
}

// Dataset is a named collection of records that were APPROVED_FOR_TRAINING
// at the moment of dataset creation.
type Dataset struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Purpose       string               `json:"purpose"`
	RecordIDs     []string             `json:"record_ids"`
	CreatedBy     string               `json:"created_by"`
	CreatedAt     time.Time            `json:"created_at"`
	ModelsTrained []ModelTrainingEntry `json:"models_trained"`
}

// LineageReport is the output of LineageOf(model_id): every dataset that
// trained the model, and transitively, every record that composed those
// datasets.
type LineageReport struct {
	ModelID  string           `json:"model_id"`
	Datasets []Dataset        `json:"datasets"`
	Records  []TrainingRecord `json:"records"`
}
