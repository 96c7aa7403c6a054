// Package contradiction implements the contradiction detector (C10):
// three independent analyzers (semantic, numerical, temporal) whose
// findings merge into one severity-scored report (spec §4.10). The
// detector depends only on an EmbeddingProvider; it never computes
// embeddings itself.
package contradiction

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Severity is the contradiction's impact level.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Finding is one detected contradiction.
type Finding struct {
	Analyzer string   `json:"analyzer"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail"`
	SpanA    string   `json:"span_a"`
	SpanB    string   `json:"span_b"`
}

// Report is the detector's full output.
type Report struct {
	Findings       []Finding `json:"findings"`
	ConsistencyScore float64 `json:"overall_consistency_score"`
}

// EmbeddingProvider is the only external capability the detector
// depends on (spec §4.10): the embedding model itself is out of scope.
type EmbeddingProvider interface {
	ComputeEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Detector runs all three analyzers against a body of text.
type Detector struct {
	embeddings EmbeddingProvider
}

// New constructs a Detector backed by provider.
func New(provider EmbeddingProvider) *Detector {
	return &Detector{embeddings: provider}
}

// Analyze splits text into sentences and runs the semantic, numerical,
// and temporal analyzers, merging their findings into one Report.
func (d *Detector) Analyze(ctx context.Context, text string) (Report, error) {
	sentences := splitSentences(text)

	semantic, err := d.semanticFindings(ctx, sentences)
	if err != nil {
		return Report{}, fmt.Errorf("contradiction: semantic analyzer: %w", err)
	}

	findings := make([]Finding, 0, len(semantic))
	findings = append(findings, semantic...)
	findings = append(findings, numericalFindings(text)...)
	findings = append(findings, temporalFindings(text)...)

	return Report{Findings: findings, ConsistencyScore: score(findings)}, nil
}

// score applies spec §4.10's overall-consistency formula, bounded to
// [0, 1] (testable property 10).
func score(findings []Finding) float64 {
	var crit, high, med, low int
	for _, f := range findings {
		switch f.Severity {
		case SeverityCritical:
			crit++
		case SeverityHigh:
			high++
		case SeverityMedium:
			med++
		case SeverityLow:
			low++
		}
	}
	s := 1.0 - 0.20*float64(crit) - 0.10*float64(high) - 0.05*float64(med) - 0.02*float64(low)
	if s < 0 {
		s = 0
	}
	if s > 1 {
		s = 1
	}
	return s
}

var sentenceSplit = regexp.MustCompile(`[.!?]+\s+`)

// splitSentences breaks text into sentences of at least 20 characters
// (spec §4.10's semantic-analyzer input requirement).
func splitSentences(text string) []string {
	raw := sentenceSplit.Split(text, -1)
	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		trimmed := strings.TrimSpace(s)
		if len(trimmed) >= 20 {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

var negationTokens = []string{"not", "never", "cannot", "can't", "without", "no longer", "isn't", "wasn't", "doesn't", "didn't"}

func containsNegation(s string) bool {
	lower := strings.ToLower(s)
	for _, tok := range negationTokens {
		if matchesWord(lower, tok) {
			return true
		}
	}
	return false
}

func matchesWord(haystack, word string) bool {
	if strings.Contains(word, " ") {
		return strings.Contains(haystack, word)
	}
	for _, token := range strings.FieldsFunc(haystack, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '\''
	}) {
		if token == word {
			return true
		}
	}
	return false
}

// opposingTermPairs is the fixed list of antonym pairs spec §4.10 names.
var opposingTermPairs = [][2]string{
	{"increase", "decrease"},
	{"adequate", "inadequate"},
	{"material", "immaterial"},
	{"overstated", "understated"},
	{"compliant", "noncompliant"},
	{"improved", "worsened"},
	{"sufficient", "insufficient"},
	{"effective", "ineffective"},
}

// opposingPair reports whether a contains one term of a fixed antonym
// pair and b contains the other (in either direction).
func opposingPair(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	for _, pair := range opposingTermPairs {
		if strings.Contains(la, pair[0]) && strings.Contains(lb, pair[1]) {
			return true
		}
		if strings.Contains(la, pair[1]) && strings.Contains(lb, pair[0]) {
			return true
		}
	}
	return false
}

// semanticFindings applies the cosine-similarity pairing, negation
// test, and opposing-term test (spec §4.10 analyzer 1).
func (d *Detector) semanticFindings(ctx context.Context, sentences []string) ([]Finding, error) {
	if len(sentences) < 2 {
		return nil, nil
	}
	vectors, err := d.embeddings.ComputeEmbeddings(ctx, sentences)
	if err != nil {
		return nil, err
	}

	var findings []Finding
	for i := 0; i < len(sentences); i++ {
		for j := i + 1; j < len(sentences); j++ {
			if i >= len(vectors) || j >= len(vectors) {
				continue
			}
			similarity := cosineSimilarity(vectors[i], vectors[j])
			if similarity <= 0.8 {
				continue
			}

			negates := containsNegation(sentences[i]) != containsNegation(sentences[j])
			opposes := opposingPair(sentences[i], sentences[j])

			var severity Severity
			switch {
			case negates && opposes:
				severity = SeverityCritical
			case negates:
				severity = SeverityHigh
			case opposes:
				severity = SeverityMedium
			default:
				continue
			}

			findings = append(findings, Finding{
				Analyzer: "semantic",
				Severity: severity,
				Detail:   fmt.Sprintf("similar sentences (cosine=%.3f) disagree", similarity),
				SpanA:    sentences[i],
				SpanB:    sentences[j],
			})
		}
	}
	return findings, nil
}

// cosineSimilarity is a flat loop over float32 slices; no pack library
// offers vector-math meaningfully cheaper than this for pairwise
// sentence-count inputs.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var numericClaim = regexp.MustCompile(`(?i)([a-zA-Z_][a-zA-Z0-9_ ]*?)\s+(?:is|equals|of|totals)\s+\$?([0-9][0-9,]*(?:\.[0-9]+)?)`)

// numericalFindings extracts (metric, value) claims and reports a
// CRITICAL contradiction when the same metric carries two values
// differing by more than one cent (spec §4.10 analyzer 2).
func numericalFindings(text string) []Finding {
	matches := numericClaim.FindAllStringSubmatch(text, -1)
	values := make(map[string][]string)
	for _, m := range matches {
		metric := strings.ToLower(strings.TrimSpace(m[1]))
		values[metric] = append(values[metric], m[2])
	}

	var findings []Finding
	for metric, raw := range values {
		if len(raw) < 2 {
			continue
		}
		first := parseAmount(raw[0])
		for _, v := range raw[1:] {
			amount := parseAmount(v)
			if absFloat(first-amount) > 0.01 {
				findings = append(findings, Finding{
					Analyzer: "numerical",
					Severity: SeverityCritical,
					Detail:   fmt.Sprintf("%s reported as both %s and %s", metric, raw[0], v),
					SpanA:    raw[0],
					SpanB:    v,
				})
			}
		}
	}
	return findings
}

func parseAmount(raw string) float64 {
	cleaned := strings.ReplaceAll(raw, ",", "")
	v, _ := strconv.ParseFloat(cleaned, 64)
	return v
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// temporalPolarity classifies a span as describing a before or after
// state, per a small set of marker phrases.
var beforeMarkers = []string{"previously", "before", "prior to", "last year", "used to"}
var afterMarkers = []string{"now", "currently", "after", "this year", "as of today"}

func temporalPolarity(span string) (polarity string, ok bool) {
	lower := strings.ToLower(span)
	for _, m := range beforeMarkers {
		if strings.Contains(lower, m) {
			return "before", true
		}
	}
	for _, m := range afterMarkers {
		if strings.Contains(lower, m) {
			return "after", true
		}
	}
	return "", false
}

// temporalFindings extracts before/after-dated spans within a ±50-char
// window and reports HIGH when two spans share >=30% word overlap and
// opposite polarity (spec §4.10 analyzer 3).
func temporalFindings(text string) []Finding {
	const window = 50
	runes := []rune(text)
	var spans []string
	for i := 0; i < len(runes); i++ {
		start := maxInt(0, i-window)
		end := minInt(len(runes), i+window)
		span := string(runes[start:end])
		if _, ok := temporalPolarity(span); ok {
			spans = append(spans, span)
		}
	}

	var findings []Finding
	for i := 0; i < len(spans); i++ {
		for j := i + 1; j < len(spans); j++ {
			polA, _ := temporalPolarity(spans[i])
			polB, _ := temporalPolarity(spans[j])
			if polA == polB {
				continue
			}
			if wordOverlap(spans[i], spans[j]) < 0.3 {
				continue
			}
			findings = append(findings, Finding{
				Analyzer: "temporal",
				Severity: SeverityHigh,
				Detail:   "overlapping spans carry opposite temporal polarity",
				SpanA:    spans[i],
				SpanB:    spans[j],
			})
		}
	}
	return dedupeTemporal(findings)
}

func wordOverlap(a, b string) float64 {
	wordsA := strings.Fields(strings.ToLower(a))
	setA := make(map[string]bool, len(wordsA))
	for _, w := range wordsA {
		setA[w] = true
	}
	wordsB := strings.Fields(strings.ToLower(b))
	if len(wordsB) == 0 {
		return 0
	}
	shared := 0
	for _, w := range wordsB {
		if setA[w] {
			shared++
		}
	}
	denom := len(wordsA)
	if len(wordsB) > denom {
		denom = len(wordsB)
	}
	if denom == 0 {
		return 0
	}
	return float64(shared) / float64(denom)
}

// dedupeTemporal collapses the O(n^2) sliding-window scan's duplicate
// pairs down to distinct (SpanA, SpanB) findings.
func dedupeTemporal(findings []Finding) []Finding {
	seen := make(map[string]bool)
	out := make([]Finding, 0, len(findings))
	for _, f := range findings {
		key := f.SpanA + "||" + f.SpanB
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
