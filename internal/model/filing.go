// Package model holds the shared data entities that flow through the
// governance pipeline: Filing, RawFact, Statement, Token,
// AnonymizedStatement, QualityAssessment, TrainingRecord, Dataset and
// AuditEvent. Keeping them in one package avoids import cycles between
// the pipeline stages that each read and write a subset of this shape.
package model

import "time"

// Filing is immutable after creation.
type Filing struct {
	FilingID      string    `json:"filing_id"`
	IssuerID      string    `json:"issuer_id"`
	FormType      string    `json:"form_type"`
	FiledAt       time.Time `json:"filed_at"`
	PeriodEnd     time.Time `json:"period_end"`
	PrimaryDocURI string    `json:"primary_doc_uri"`
	XBRLUri       string    `json:"xbrl_uri,omitempty"`
	SizeBytes     int64     `json:"size_bytes,omitempty"`
}

// RawFact is a single concept observation extracted from a filing,
// before normalization into a canonical Statement field.
type RawFact struct {
	FilingID   string `json:"filing_id"`
	Concept    string `json:"concept"`
	ContextRef string `json:"context_ref"`
	UnitRef    string `json:"unit_ref"`
	Decimals   string `json:"decimals,omitempty"`
	RawValue   string `json:"raw_value"`
	PeriodEnd  string `json:"period_end,omitempty"`
	Source     string `json:"source"`
}
