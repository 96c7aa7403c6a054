package anonymize

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	gcrypto "github.com/R3E-Network/fin-training-governance/internal/crypto"
	"github.com/R3E-Network/fin-training-governance/internal/model"
	"github.com/R3E-Network/fin-training-governance/internal/tokenstore"
)

// Anonymizer is the PII detector/tokenizer (C4). It is safe for
// concurrent use as long as its tokenstore.Store is (tokenstore.Store
// guards its own map with a mutex).
type Anonymizer struct {
	secret []byte
	store  *tokenstore.Store // nil disables reverse-mapping persistence
}

// New constructs an Anonymizer. store may be nil, in which case FULL and
// PARTIAL tokens are still produced but their reverse mapping is not
// persisted; IRREVERSIBLE never touches the store.
func New(secret []byte, store *tokenstore.Store) *Anonymizer {
	return &Anonymizer{secret: secret, store: store}
}

type walkResult struct {
	kindsSeen map[string]struct{}
	count     int
}

func newWalkResult() *walkResult {
	return &walkResult{kindsSeen: make(map[string]struct{})}
}

func (w *walkResult) record(kind string) {
	w.kindsSeen[kind] = struct{}{}
	w.count++
}

func (w *walkResult) kindsSlice() []string {
	out := make([]string, 0, len(w.kindsSeen))
	for k := range w.kindsSeen {
		out = append(out, k)
	}
	return out
}

// Anonymize walks v and returns the anonymized tree plus the metadata
// block callers attach at the root (spec §4.4 "Post-state").
func (a *Anonymizer) Anonymize(v Value, level model.TokenLevel) (Value, model.AnonymizationMetadata, error) {
	if level == model.LevelNone {
		return v, model.AnonymizationMetadata{Level: level, AnonymizedAt: time.Now().UTC()}, nil
	}

	result := newWalkResult()
	out, err := a.walk(v, "", level, result)
	if err != nil {
		return Value{}, model.AnonymizationMetadata{}, err
	}

	return out, model.AnonymizationMetadata{
		Level:           level,
		AnonymizedAt:    time.Now().UTC(),
		PIIKindsRemoved: result.kindsSlice(),
		PIICount:        result.count,
	}, nil
}

// walk recurses over v. fieldName is the enclosing object key, empty at
// the root and for array elements.
func (a *Anonymizer) walk(v Value, fieldName string, level model.TokenLevel, result *walkResult) (Value, error) {
	switch v.Kind {
	case KindObject:
		out := make(map[string]Value, len(v.Object))
		for key, val := range v.Object {
			child, err := a.walkField(key, val, level, result)
			if err != nil {
				return Value{}, err
			}
			out[key] = child
		}
		return Object(out), nil

	case KindArray:
		out := make([]Value, len(v.Array))
		for i, item := range v.Array {
			child, err := a.walk(item, fieldName, level, result)
			if err != nil {
				return Value{}, err
			}
			out[i] = child
		}
		return Array(out), nil

	case KindString:
		return a.walkString(v.Str, fieldName, level, result)

	default:
		return v, nil
	}
}

func (a *Anonymizer) walkField(key string, val Value, level model.TokenLevel, result *walkResult) (Value, error) {
	if isFinancialField(key) {
		return val, nil
	}

	if level == model.LevelFull || level == model.LevelIrreversible {
		if kind, ok := isIdentifyingField(key); ok && val.Kind == KindString {
			token, err := a.tokenize(val.Str, kind, level)
			if err != nil {
				return Value{}, err
			}
			result.record(kind)
			return String(token), nil
		}
	}

	return a.walk(val, key, level, result)
}

// walkString applies the regex detectors and, at FULL/IRREVERSIBLE, the
// entity-name detector, to a single string leaf.
func (a *Anonymizer) walkString(text, fieldName string, level model.TokenLevel, result *walkResult) (Value, error) {
	anonymized := text

	for _, d := range regexDetectors {
		matches := d.re.FindAllString(anonymized, -1)
		seen := make(map[string]struct{})
		for _, match := range matches {
			if _, dup := seen[match]; dup {
				continue
			}
			seen[match] = struct{}{}
			token, err := a.tokenize(match, d.kind, level)
			if err != nil {
				return Value{}, err
			}
			anonymized = strings.ReplaceAll(anonymized, match, token)
			result.record(d.kind)
		}
	}

	if level == model.LevelFull || level == model.LevelIrreversible {
		if span, ok := detectCompanyName(anonymized); ok {
			token, err := a.tokenize(span, KindCompanyName, level)
			if err != nil {
				return Value{}, err
			}
			anonymized = strings.ReplaceAll(anonymized, span, token)
			result.record(KindCompanyName)
		}
	}

	return String(anonymized), nil
}

// tokenize produces the replacement token text for plaintext under kind
// at the given level, persisting the reverse mapping when reversible.
func (a *Anonymizer) tokenize(plaintext, kind string, level model.TokenLevel) (string, error) {
	if level == model.LevelIrreversible {
		suffix := make([]byte, 4)
		if _, err := rand.Read(suffix); err != nil {
			return "", fmt.Errorf("anonymize: read random suffix: %w", err)
		}
		return fmt.Sprintf("[%s_%s]", kind, hex.EncodeToString(suffix)), nil
	}

	digest := gcrypto.TokenDigest(a.secret, plaintext)
	token := fmt.Sprintf("[%s_%s]", kind, digest)

	if a.store != nil && !a.store.Has(token) {
		if err := a.store.Put(token, kind, plaintext); err != nil {
			return "", fmt.Errorf("anonymize: store reverse mapping: %w", err)
		}
	}
	return token, nil
}
