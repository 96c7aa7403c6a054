package sampling

import (
	"math/rand"
	"sort"

	"github.com/shopspring/decimal"
)

// MUSItem is one population item subject to monetary unit sampling:
// BookValue is the recorded amount; AuditValue is populated only once
// the item has been inspected.
type MUSItem struct {
	ID         string
	BookValue  decimal.Decimal
	AuditValue decimal.Decimal
	Audited    bool
}

// MUSConclusion is the evaluator's accept/reject verdict.
type MUSConclusion string

const (
	MUSAccept MUSConclusion = "ACCEPT"
	MUSReject MUSConclusion = "REJECT"
)

// MUSResult is the evaluator's full output.
type MUSResult struct {
	ProjectedMisstatement decimal.Decimal
	UpperMisstatementLimit decimal.Decimal
	Conclusion            MUSConclusion
}

type musNamespace struct{}

// MUS is the Monetary Unit Sampling namespace.
var MUS = musNamespace{}

// reliabilityFactor applies the expected-misstatement expansion to the
// base RF table entry for risk.
func (musNamespace) reliabilityFactor(risk RiskLevel, expectedMisstatement decimal.Decimal) decimal.Decimal {
	rf := musReliabilityFactor[risk]
	if expectedMisstatement.GreaterThan(decimal.Zero) {
		rf = rf.Mul(decimal.NewFromFloat(musExpansionFactor))
	}
	return rf
}

// Size computes the MUS sample size, floored at 30 (spec §4.9, S4).
func (m musNamespace) Size(bookValue, tolerableMisstatement, expectedMisstatement decimal.Decimal, risk RiskLevel) int {
	rf := m.reliabilityFactor(risk, expectedMisstatement)
	raw := rf.Mul(bookValue).Div(tolerableMisstatement)
	n := ceilDecimalToInt(raw)
	return maxInt(n, 30)
}

// Interval returns the sampling interval I = BV / n.
func (musNamespace) Interval(bookValue decimal.Decimal, n int) decimal.Decimal {
	return bookValue.Div(decimal.NewFromInt(int64(n)))
}

// Select performs systematic PPS selection: sort population by ID, walk
// the cumulative-amount line, draw one uniform random offset r in
// [0, I), and pick the first item whose cumulative amount reaches
// r + k*I for k = 0..n-1. No item is selected twice even if its book
// value spans more than one sampling point.
func (musNamespace) Select(population []MUSItem, n int, interval decimal.Decimal, rng *rand.Rand) []MUSItem {
	sorted := make([]MUSItem, len(population))
	copy(sorted, population)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	r := interval.Mul(decimal.NewFromFloat(rng.Float64()))

	cumulative := make([]decimal.Decimal, len(sorted))
	running := decimal.Zero
	for i, item := range sorted {
		running = running.Add(item.BookValue)
		cumulative[i] = running
	}

	selected := make([]MUSItem, 0, n)
	seen := make(map[int]bool)
	for k := 0; k < n; k++ {
		target := r.Add(interval.Mul(decimal.NewFromInt(int64(k))))
		for i, cum := range cumulative {
			if seen[i] {
				continue
			}
			if cum.GreaterThanOrEqual(target) {
				seen[i] = true
				selected = append(selected, sorted[i])
				break
			}
		}
	}
	return selected
}

// Evaluate computes tainting for every inspected item, projects total
// misstatement, and returns the accept/reject verdict. When no
// inspected item carries an error, the projected misstatement is taken
// directly as RF*BV/n (spec §4.9's "or RF·BV/n when no errors found"
// branch, which testable property 8 treats as the UML itself rather
// than an input to the further ×1.3 step used in the error-found case).
func (m musNamespace) Evaluate(inspected []MUSItem, bookValue, tolerableMisstatement, expectedMisstatement decimal.Decimal, risk RiskLevel, n int) MUSResult {
	hasError := false
	taintingSum := decimal.Zero
	for _, item := range inspected {
		if !item.Audited || item.BookValue.IsZero() {
			continue
		}
		if item.AuditValue.Equal(item.BookValue) {
			continue
		}
		hasError = true
		tainting := item.BookValue.Sub(item.AuditValue).Div(item.BookValue)
		taintingSum = taintingSum.Add(tainting)
	}

	var projected, uml decimal.Decimal
	if !hasError {
		rf := m.reliabilityFactor(risk, expectedMisstatement)
		projected = rf.Mul(bookValue).Div(decimal.NewFromInt(int64(n)))
		uml = projected
	} else {
		projected = taintingSum.Mul(bookValue)
		uml = projected.Mul(decimal.NewFromFloat(1.3))
	}

	conclusion := MUSReject
	if uml.LessThan(tolerableMisstatement) {
		conclusion = MUSAccept
	}

	return MUSResult{ProjectedMisstatement: projected, UpperMisstatementLimit: uml, Conclusion: conclusion}
}
