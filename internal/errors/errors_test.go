package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGovernanceError_Error(t *testing.T) {
	withoutCause := New(ErrCodeValidation, "test message", http.StatusBadRequest)
	assert.Equal(t, "[VAL_1001] test message", withoutCause.Error())

	withCause := Wrap(ErrCodeChainIntegrity, "test message", http.StatusInternalServerError, errors.New("underlying"))
	assert.Equal(t, "[CHAIN_5001] test message: underlying", withCause.Error())
}

func TestGovernanceError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := Wrap(ErrCodeAnonymization, "test", http.StatusInternalServerError, underlying)
	assert.ErrorIs(t, err, underlying)
}

func TestGovernanceError_WithDetails(t *testing.T) {
	err := Validation("company_name", "too short")
	require.Len(t, err.Details, 2)
	assert.Equal(t, "company_name", err.Details["field"])
	assert.Equal(t, "too short", err.Details["reason"])
}

func TestApprovalRefusalNamesFailingPrecondition(t *testing.T) {
	err := QualityFloor("POOR")
	assert.Equal(t, ErrCodeQualityFloor, err.Code)
	assert.Equal(t, "POOR", err.Details["overall"])
	assert.Equal(t, http.StatusPreconditionFailed, HTTPStatus(err))
}

func TestGetServiceErrorFromChain(t *testing.T) {
	base := NotFound("TrainingRecord", "abc-123")
	wrapped := errors.New("ingest failed: " + base.Error())

	assert.False(t, Is(wrapped))
	assert.True(t, Is(base))
	assert.Equal(t, base, Get(base))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(wrapped))
}
