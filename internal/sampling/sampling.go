// Package sampling implements the statistical sampling engine (C9):
// Monetary Unit Sampling, classical mean-per-unit, and attribute
// sampling, each pure and deterministic given their inputs plus an
// injected *rand.Rand (spec §4.9 "callers provide the seed").
package sampling

import (
	"math"

	"github.com/shopspring/decimal"
)

// RiskLevel is the auditor's assessed risk for a population, driving
// both the MUS reliability factor and the normal-approximation z-score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
)

// musReliabilityFactor is the MUS RF table (spec §4.9).
var musReliabilityFactor = map[RiskLevel]decimal.Decimal{
	RiskLow:      decimal.NewFromFloat(3.00),
	RiskModerate: decimal.NewFromFloat(2.31),
	RiskHigh:     decimal.NewFromFloat(1.61),
}

// zScore is the normal-approximation z-value table shared by classical
// mean-per-unit and attribute sampling (spec §4.9).
var zScore = map[RiskLevel]float64{
	RiskLow:      1.96,
	RiskModerate: 1.645,
	RiskHigh:     1.28,
}

// musExpansionFactor inflates RF when expected misstatement is positive.
// The source uses this flat constant rather than a table keyed on
// EM/TM; spec §9 flags this as an open question left to the
// implementer. Kept as the constant per spec.md's literal formula —
// see DESIGN.md for the recorded rationale.
const musExpansionFactor = 1.0 + 0.3

func ceilDecimalToInt(d decimal.Decimal) int {
	f, _ := d.Float64()
	return int(math.Ceil(f))
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
