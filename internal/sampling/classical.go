package sampling

import (
	"math"

	"github.com/shopspring/decimal"
)

// ClassicalResult is the mean-per-unit evaluator's output.
type ClassicalResult struct {
	ProjectedValue decimal.Decimal
	Precision      decimal.Decimal
	LowerBound     decimal.Decimal
	UpperBound     decimal.Decimal
}

type classicalNamespace struct{}

// Classical is the classical mean-per-unit sampling namespace.
var Classical = classicalNamespace{}

// Size computes the classical mean-per-unit sample size (spec §4.9):
// an initial normal-approximation estimate n0, corrected for the
// finite population by n = n0 / (1 + n0/N), floored at 30. The
// z·σ precision math is inherently floating point per spec §9's design
// notes; the population count and tolerable misstatement still convert
// through decimal.Decimal at the call boundary.
func (classicalNamespace) Size(populationSize int, stdDev, tolerableMisstatement decimal.Decimal, risk RiskLevel) int {
	n := float64(populationSize)
	sigma, _ := stdDev.Float64()
	tm, _ := tolerableMisstatement.Float64()
	z := zScore[risk]

	n0 := math.Pow(n*sigma*z/tm, 2)
	corrected := n0 / (1 + n0/n)
	return maxInt(int(math.Ceil(corrected)), 30)
}

// Evaluate computes the projected population value, the precision
// (allowance for sampling error), and the resulting confidence
// interval, given the sample mean and standard deviation.
func (classicalNamespace) Evaluate(populationSize, sampleSize int, sampleMean, sampleStdDev decimal.Decimal, risk RiskLevel) ClassicalResult {
	N := float64(populationSize)
	n := float64(sampleSize)
	xbar, _ := sampleMean.Float64()
	s, _ := sampleStdDev.Float64()
	z := zScore[risk]

	projected := N * xbar
	precision := z * s * math.Sqrt(N) * math.Sqrt((N-n)/N) / math.Sqrt(n)

	return ClassicalResult{
		ProjectedValue: decimal.NewFromFloat(projected),
		Precision:      decimal.NewFromFloat(precision),
		LowerBound:     decimal.NewFromFloat(projected - precision),
		UpperBound:     decimal.NewFromFloat(projected + precision),
	}
}
