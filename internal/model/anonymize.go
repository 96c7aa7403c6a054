package model

import "time"

// TokenLevel is the anonymization strength requested by a caller.
type TokenLevel string

const (
	LevelNone         TokenLevel = "NONE"
	LevelPartial      TokenLevel = "PARTIAL"
	LevelFull         TokenLevel = "FULL"
	LevelIrreversible TokenLevel = "IRREVERSIBLE"
)

// Token is the replacement emitted in place of a detected PII span.
type Token struct {
	TokenText          string `json:"token_text"`
	PIIKind            string `json:"pii_kind"`
	OriginalPlaintextEnc []byte `json:"original_plaintext_enc,omitempty"`
}

// AnonymizationMetadata is attached to the root of every anonymized
// payload, describing what the anonymizer did without revealing any
// plaintext.
type AnonymizationMetadata struct {
	Level           TokenLevel `json:"level"`
	AnonymizedAt    time.Time  `json:"anonymized_at"`
	PIIKindsRemoved []string   `json:"pii_kinds_removed"`
	PIICount        int        `json:"pii_count"`
}

// ValidationResult is the output of the anonymization validator (C5).
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Issues  []string `json:"issues"`
}
