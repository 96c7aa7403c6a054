// Package crypto provides the two cryptographic primitives the
// anonymization core needs: a deterministic HMAC-derived token body (C4)
// and an AEAD envelope for the restricted reverse-mapping store (§3, §9).
// Per spec's Non-goals, neither is a cryptographic novelty: AES-GCM and
// SHA-256 only.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const envelopeVersionPrefix = "v1:"

// deriveEnvelopeKey derives a per-subject AES-256 key from the process
// master key via HKDF-SHA256, using subject||info as salt, so that no two
// tokens' ciphertexts are encrypted under the same key without needing a
// key-per-token store.
func deriveEnvelopeKey(masterKey, subject []byte, info string) ([]byte, error) {
	if len(masterKey) != 32 {
		return nil, fmt.Errorf("master key must be 32 bytes, got %d", len(masterKey))
	}
	salt := make([]byte, 0, len(subject)+1+len(info))
	salt = append(salt, subject...)
	salt = append(salt, 0)
	salt = append(salt, info...)

	reader := hkdf.New(sha256.New, masterKey, salt, []byte("governance-envelope-v1"))
	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("hkdf expand: %w", err)
	}
	return key, nil
}

func envelopeAAD(subject []byte, info string) []byte {
	aad := make([]byte, 0, len(info)+1+len(subject))
	aad = append(aad, info...)
	aad = append(aad, 0)
	aad = append(aad, subject...)
	return aad
}

// EncryptEnvelope encrypts plaintext under a key derived from masterKey,
// subject (here, the token text) and info (here, the PII kind). Output is
// ASCII-safe: "v1:" + base64url(nonce|ciphertext). Used by tokenstore to
// persist the token -> plaintext reverse mapping at rest.
func EncryptEnvelope(masterKey, subject []byte, info string, plaintext []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, nil
	}
	key, err := deriveEnvelopeKey(masterKey, subject, info)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("read nonce: %w", err)
	}
	aad := envelopeAAD(subject, info)
	ciphertext := aead.Seal(nil, nonce, plaintext, aad)

	buf := make([]byte, 0, len(nonce)+len(ciphertext))
	buf = append(buf, nonce...)
	buf = append(buf, ciphertext...)
	return []byte(envelopeVersionPrefix + base64.RawURLEncoding.EncodeToString(buf)), nil
}

// DecryptEnvelope reverses EncryptEnvelope.
func DecryptEnvelope(masterKey, subject []byte, info string, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 {
		return nil, nil
	}
	encoded := strings.TrimPrefix(strings.TrimSpace(string(ciphertext)), envelopeVersionPrefix)
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}
	key, err := deriveEnvelopeKey(masterKey, subject, info)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	if len(raw) < aead.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, body := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, body, envelopeAAD(subject, info))
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}

// TokenDigest computes the deterministic "hex8" suffix for a reversible
// token: the first 8 hex characters of HMAC-SHA256(secret, plaintext).
// Same (secret, plaintext) always yields the same digest, in-process and
// across processes (testable property 1).
func TokenDigest(secret []byte, plaintext string) string {
	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write([]byte(plaintext))
	sum := mac.Sum(nil)
	return hex.EncodeToString(sum)[:8]
}

// HMACSign/HMACVerify cover the audit chain's optional event-signing path
// (an HMAC over the canonical JSON bytes) used when a writer wants an
// additional authenticity check beyond the hash chain itself.
func HMACSign(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write(data)
	return mac.Sum(nil)
}

func HMACVerify(key, data, sig []byte) bool {
	expected := HMACSign(key, data)
	return hmac.Equal(expected, sig)
}
