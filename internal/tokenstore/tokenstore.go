// Package tokenstore holds the restricted reverse mapping from a
// reversible token back to the plaintext it replaced (spec §9
// "Reverse-token store confidentiality"). Entries are append-only once
// written; every read is mediated and, through the optional Auditor
// hook, produces its own audit event rather than silently returning
// plaintext.
package tokenstore

import (
	"fmt"
	"sync"

	gcrypto "github.com/R3E-Network/fin-training-governance/internal/crypto"
)

// Auditor is implemented by internal/auditchain; tokenstore depends only
// on this narrow interface to avoid an import cycle with the lifecycle
// package that wires both together.
type Auditor interface {
	RecordTokenRead(tokenText, piiKind string)
}

// Store is the access-restricted, AEAD-encrypted reverse mapping. Its
// lifetime equals the longest-lived TrainingRecord that references it
// (spec §3 "Ownership").
type Store struct {
	masterKey []byte
	mu        sync.RWMutex
	entries   map[string][]byte // token text -> envelope ciphertext
	kinds     map[string]string // token text -> pii kind, needed to reconstruct the AEAD AAD
	auditor   Auditor
}

// New constructs a Store. masterKey must be 32 bytes (AES-256).
func New(masterKey []byte, auditor Auditor) (*Store, error) {
	if len(masterKey) != 32 {
		return nil, fmt.Errorf("tokenstore: master key must be 32 bytes, got %d", len(masterKey))
	}
	return &Store{
		masterKey: masterKey,
		entries:   make(map[string][]byte),
		kinds:     make(map[string]string),
		auditor:   auditor,
	}, nil
}

// Put stores the (token -> plaintext) mapping, encrypted under a key
// derived from the token text and PII kind. Overwriting an existing
// token is rejected: the store is append-only for new tokens.
func (s *Store) Put(tokenText, piiKind, plaintext string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[tokenText]; exists {
		return fmt.Errorf("tokenstore: token %q already has a stored mapping", tokenText)
	}
	ciphertext, err := gcrypto.EncryptEnvelope(s.masterKey, []byte(tokenText), piiKind, []byte(plaintext))
	if err != nil {
		return fmt.Errorf("tokenstore: encrypt: %w", err)
	}
	s.entries[tokenText] = ciphertext
	s.kinds[tokenText] = piiKind
	return nil
}

// Resolve reverses a token back to its plaintext. Every successful call
// notifies the configured Auditor, satisfying spec §9's "its own audit
// events for every read".
func (s *Store) Resolve(tokenText string) (string, error) {
	s.mu.RLock()
	ciphertext, ok := s.entries[tokenText]
	kind := s.kinds[tokenText]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("tokenstore: no mapping for token %q", tokenText)
	}
	plaintext, err := gcrypto.DecryptEnvelope(s.masterKey, []byte(tokenText), kind, ciphertext)
	if err != nil {
		return "", fmt.Errorf("tokenstore: decrypt: %w", err)
	}
	if s.auditor != nil {
		s.auditor.RecordTokenRead(tokenText, kind)
	}
	return string(plaintext), nil
}

// Has reports whether a mapping exists for tokenText, without decrypting
// it or triggering an audit event.
func (s *Store) Has(tokenText string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[tokenText]
	return ok
}

// Len returns the number of stored mappings.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
