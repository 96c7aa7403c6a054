// Package canonicaljson implements the single byte-deterministic JSON
// encoding used everywhere the audit chain computes a hash (spec §9
// "Hash canonicalization"): keys sorted lexicographically, RFC 3339 UTC
// timestamps, decimals serialized with no trailing-zero drift, and no
// insignificant whitespace. Any reimplementation that follows the same
// rules computes identical hashes for identical events.
package canonicaljson

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Encode re-serializes v into the canonical form: the value is first
// marshaled with the standard encoder (so struct field tags, decimal.Decimal
// and time.Time apply their usual MarshalJSON), then decoded with
// json.Number preservation and re-marshaled as a generic value. Go's
// encoding/json always emits map keys in sorted order, which is what
// gives the re-marshal step its canonical key ordering regardless of the
// original struct's field declaration order.
func Encode(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return canonicalizeRaw(raw)
}

func canonicalizeRaw(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(generic); err != nil {
		return nil, err
	}
	// json.Encoder.Encode appends a trailing newline; canonical output
	// carries no insignificant whitespace at all.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Hash returns the lowercase hex SHA-256 digest of v's canonical encoding.
func Hash(v any) (string, error) {
	canon, err := Encode(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}
