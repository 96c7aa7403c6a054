// Package errors provides the unified error taxonomy for the governance core.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a distinct failure kind from the lifecycle error taxonomy.
type ErrorCode string

const (
	// Validation (1xxx): input failed structural checks.
	ErrCodeValidation ErrorCode = "VAL_1001"

	// Anonymization (2xxx).
	ErrCodeAnonymization     ErrorCode = "ANON_2001" // tokenization step itself failed; retryable
	ErrCodeAnonymizationLeak ErrorCode = "ANON_2002" // validator found residual PII

	// Quality (3xxx).
	ErrCodeQualityFloor ErrorCode = "QUAL_3001" // approval attempted against POOR quality

	// Fetch (4xxx).
	ErrCodeTransientFetch ErrorCode = "FETCH_4001" // retries exhausted
	ErrCodePermanentFetch ErrorCode = "FETCH_4002" // 4xx other than 429

	// Audit chain (5xxx).
	ErrCodeChainIntegrity ErrorCode = "CHAIN_5001" // verify-range found a broken link

	// Cancellation (6xxx).
	ErrCodeCancelled ErrorCode = "CANCEL_6001"

	// Lifecycle (7xxx).
	ErrCodeInvalidTransition ErrorCode = "LIFE_7001"
	ErrCodeNotFound          ErrorCode = "LIFE_7002"
	ErrCodeDatasetImpure     ErrorCode = "LIFE_7003" // cited record not APPROVED_FOR_TRAINING
)

// GovernanceError is a structured error carrying a stable code, an
// HTTP-equivalent status for the admin surface, and optional details.
type GovernanceError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	HTTPStatus int                    `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Err        error                  `json:"-"`
}

func (e *GovernanceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *GovernanceError) Unwrap() error {
	return e.Err
}

// WithDetails attaches a key/value pair describing the failing precondition
// or input. Approval refusals use this to name the failing precondition.
func (e *GovernanceError) WithDetails(key string, value interface{}) *GovernanceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func New(code ErrorCode, message string, httpStatus int) *GovernanceError {
	return &GovernanceError{Code: code, Message: message, HTTPStatus: httpStatus}
}

func Wrap(code ErrorCode, message string, httpStatus int, err error) *GovernanceError {
	return &GovernanceError{Code: code, Message: message, HTTPStatus: httpStatus, Err: err}
}

// Validation

func Validation(field, reason string) *GovernanceError {
	return New(ErrCodeValidation, "validation failed", http.StatusBadRequest).
		WithDetails("field", field).
		WithDetails("reason", reason)
}

// Anonymization

func AnonymizationFailed(err error) *GovernanceError {
	return Wrap(ErrCodeAnonymization, "anonymization step failed", http.StatusInternalServerError, err)
}

func AnonymizationLeak(issues []string) *GovernanceError {
	return New(ErrCodeAnonymizationLeak, "residual PII detected after anonymization", http.StatusUnprocessableEntity).
		WithDetails("issues", issues)
}

// Quality

func QualityFloor(overall string) *GovernanceError {
	return New(ErrCodeQualityFloor, "approval refused: quality below floor", http.StatusPreconditionFailed).
		WithDetails("overall", overall)
}

// Fetch

func TransientFetch(url string, err error) *GovernanceError {
	return Wrap(ErrCodeTransientFetch, "fetch retries exhausted", http.StatusBadGateway, err).
		WithDetails("url", url)
}

func PermanentFetch(url string, status int) *GovernanceError {
	return New(ErrCodePermanentFetch, "non-retryable HTTP status", http.StatusFailedDependency).
		WithDetails("url", url).
		WithDetails("status", status)
}

// Chain

func ChainIntegrity(firstFailingSeq int64) *GovernanceError {
	return New(ErrCodeChainIntegrity, "audit chain integrity check failed", http.StatusInternalServerError).
		WithDetails("first_failing_seq", firstFailingSeq)
}

// Cancellation

func Cancelled(stage string) *GovernanceError {
	return New(ErrCodeCancelled, "operation cancelled", http.StatusRequestTimeout).
		WithDetails("stage", stage)
}

// Lifecycle

func InvalidTransition(from, to string) *GovernanceError {
	return New(ErrCodeInvalidTransition, "invalid lifecycle transition", http.StatusConflict).
		WithDetails("from", from).
		WithDetails("to", to)
}

func NotFound(resource, id string) *GovernanceError {
	return New(ErrCodeNotFound, "resource not found", http.StatusNotFound).
		WithDetails("resource", resource).
		WithDetails("id", id)
}

func DatasetImpure(recordID, status string) *GovernanceError {
	return New(ErrCodeDatasetImpure, "record not approved for training", http.StatusConflict).
		WithDetails("record_id", recordID).
		WithDetails("status", status)
}

// Helpers

func Is(err error) bool {
	var ge *GovernanceError
	return errors.As(err, &ge)
}

func Get(err error) *GovernanceError {
	var ge *GovernanceError
	if errors.As(err, &ge) {
		return ge
	}
	return nil
}

func HTTPStatus(err error) int {
	if ge := Get(err); ge != nil {
		return ge.HTTPStatus
	}
	return http.StatusInternalServerError
}
