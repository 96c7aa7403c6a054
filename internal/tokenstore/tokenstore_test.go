package tokenstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i + 7)
	}
	return key
}

type recordingAuditor struct {
	reads []string
}

func (r *recordingAuditor) RecordTokenRead(tokenText, piiKind string) {
	r.reads = append(r.reads, tokenText+":"+piiKind)
}

func TestPutThenResolveRoundTrips(t *testing.T) {
	auditor := &recordingAuditor{}
	store, err := New(testKey(), auditor)
	require.NoError(t, err)

	require.NoError(t, store.Put("[COMPANY_NAME_a1b2c3d4]", "company_name", "Acme Inc"))

	plaintext, err := store.Resolve("[COMPANY_NAME_a1b2c3d4]")
	require.NoError(t, err)
	assert.Equal(t, "Acme Inc", plaintext)
	assert.Equal(t, []string{"[COMPANY_NAME_a1b2c3d4]:company_name"}, auditor.reads)
}

func TestPutRejectsOverwrite(t *testing.T) {
	store, err := New(testKey(), nil)
	require.NoError(t, err)
	require.NoError(t, store.Put("[EMAIL_aaaaaaaa]", "email", "cfo@acme.com"))
	assert.Error(t, store.Put("[EMAIL_aaaaaaaa]", "email", "someone-else@acme.com"))
}

func TestResolveUnknownTokenFails(t *testing.T) {
	store, err := New(testKey(), nil)
	require.NoError(t, err)
	_, err = store.Resolve("[EMAIL_ffffffff]")
	assert.Error(t, err)
}

func TestHasDoesNotTriggerAudit(t *testing.T) {
	auditor := &recordingAuditor{}
	store, err := New(testKey(), auditor)
	require.NoError(t, err)
	require.NoError(t, store.Put("[PHONE_00000000]", "phone", "555-123-4567"))

	assert.True(t, store.Has("[PHONE_00000000]"))
	assert.False(t, store.Has("[PHONE_11111111]"))
	assert.Empty(t, auditor.reads)
}
