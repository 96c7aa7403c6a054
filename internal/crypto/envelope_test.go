package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMasterKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestEnvelopeRoundTrip(t *testing.T) {
	key := testMasterKey()
	subject := []byte("[COMPANY_NAME_a1b2c3d4]")

	ciphertext, err := EncryptEnvelope(key, subject, "company_name", []byte("Acme Inc"))
	require.NoError(t, err)
	require.NotEmpty(t, ciphertext)

	plaintext, err := DecryptEnvelope(key, subject, "company_name", ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "Acme Inc", string(plaintext))
}

func TestEnvelopeWrongSubjectFailsToDecrypt(t *testing.T) {
	key := testMasterKey()
	ciphertext, err := EncryptEnvelope(key, []byte("token-a"), "email", []byte("cfo@acme.com"))
	require.NoError(t, err)

	_, err = DecryptEnvelope(key, []byte("token-b"), "email", ciphertext)
	assert.Error(t, err)
}

func TestEnvelopeRejectsShortMasterKey(t *testing.T) {
	_, err := EncryptEnvelope([]byte("too-short"), []byte("subject"), "info", []byte("data"))
	assert.Error(t, err)
}

func TestTokenDigestDeterministic(t *testing.T) {
	secret := []byte("s")
	d1 := TokenDigest(secret, "Acme Inc")
	d2 := TokenDigest(secret, "Acme Inc")
	assert.Equal(t, d1, d2)
	assert.Len(t, d1, 8)
}

func TestTokenDigestDiffersBySecretAndPlaintext(t *testing.T) {
	assert.NotEqual(t, TokenDigest([]byte("s1"), "Acme Inc"), TokenDigest([]byte("s2"), "Acme Inc"))
	assert.NotEqual(t, TokenDigest([]byte("s"), "Acme Inc"), TokenDigest([]byte("s"), "Beta LLC"))
}

func TestHMACSignAndVerify(t *testing.T) {
	key := []byte("chain-signing-key")
	data := []byte(`{"seq":0}`)

	sig := HMACSign(key, data)
	assert.True(t, HMACVerify(key, data, sig))
	assert.False(t, HMACVerify(key, []byte("tampered"), sig))
}
