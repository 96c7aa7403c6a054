package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsRateAboveCeiling(t *testing.T) {
	cfg := New()
	cfg.Fetch.IdentificationHeader = "acme-bot/1.0"
	cfg.Tokenization.Secret = "s"
	cfg.Fetch.RateLimitPerSecond = 11
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsMissingIdentificationHeader(t *testing.T) {
	cfg := New()
	cfg.Tokenization.Secret = "s"
	assert.Error(t, cfg.Validate())
}

func TestValidateAcceptsDefaults(t *testing.T) {
	cfg := New()
	cfg.Fetch.IdentificationHeader = "acme-bot/1.0 (compliance@acme.test)"
	cfg.Tokenization.Secret = "s"
	assert.NoError(t, cfg.Validate())
}

func TestDefaultRetentionTableMatchesSpecFloors(t *testing.T) {
	table := DefaultRetentionTable()

	d, err := table.RetentionFor("LOGIN_SUCCESS")
	require.NoError(t, err)
	assert.Equal(t, "8760h0m0s", d.String())

	d, err = table.RetentionFor("SECURITY_ALERT")
	require.NoError(t, err)
	assert.Equal(t, "17520h0m0s", d.String())

	d, err = table.RetentionFor("UNKNOWN_EVENT_TYPE")
	require.NoError(t, err)
	assert.Equal(t, "61320h0m0s", d.String())
}
