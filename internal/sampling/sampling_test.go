package sampling

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// Scenario S4: MUS sample size and interval.
func TestScenarioS4MUSSampleSize(t *testing.T) {
	bv, tm, em := d(1_000_000), d(50_000), d(0)
	n := MUS.Size(bv, tm, em, RiskModerate)
	assert.Equal(t, 47, n)

	interval := MUS.Interval(bv, n)
	intervalFloat, _ := interval.Float64()
	assert.InDelta(t, 21276.60, intervalFloat, 0.1)
}

func TestMUSSizeFlooredAtThirty(t *testing.T) {
	n := MUS.Size(d(1000), d(50_000), d(0), RiskLow)
	assert.Equal(t, 30, n)
}

func TestMUSSizeExpandsRFWhenExpectedMisstatementPositive(t *testing.T) {
	without := MUS.Size(d(1_000_000), d(50_000), d(0), RiskModerate)
	with := MUS.Size(d(1_000_000), d(50_000), d(100), RiskModerate)
	assert.Greater(t, with, without)
}

// Testable property 8: when every audited value equals its book value,
// ACCEPT iff RF*BV/n < TM.
func TestMUSAcceptanceCriterionNoErrors(t *testing.T) {
	bv, tm, em := d(1_000_000), d(50_000), d(0)
	n := MUS.Size(bv, tm, em, RiskModerate)

	inspected := []MUSItem{
		{ID: "1", BookValue: d(100), AuditValue: d(100), Audited: true},
		{ID: "2", BookValue: d(200), AuditValue: d(200), Audited: true},
	}
	result := MUS.Evaluate(inspected, bv, tm, em, RiskModerate, n)
	assert.Equal(t, MUSAccept, result.Conclusion)

	rf := musReliabilityFactor[RiskModerate]
	expectedUML := rf.Mul(bv).Div(decimal.NewFromInt(int64(n)))
	assert.True(t, result.UpperMisstatementLimit.Equal(expectedUML))
	assert.True(t, expectedUML.LessThan(tm))
}

func TestMUSEvaluateRejectsOnOverstatement(t *testing.T) {
	bv, tm, em := d(1_000_000), d(1_000), d(0)
	n := MUS.Size(bv, tm, em, RiskHigh)
	inspected := []MUSItem{
		{ID: "1", BookValue: d(1000), AuditValue: d(500), Audited: true},
	}
	result := MUS.Evaluate(inspected, bv, tm, em, RiskHigh, n)
	assert.Equal(t, MUSReject, result.Conclusion)
}

func TestMUSSelectReturnsNoDuplicatesAndCoversPopulation(t *testing.T) {
	population := []MUSItem{
		{ID: "a", BookValue: d(100)},
		{ID: "b", BookValue: d(900)},
		{ID: "c", BookValue: d(5000)},
		{ID: "d", BookValue: d(4000)},
	}
	bv := d(10000)
	n := 5
	interval := MUS.Interval(bv, n)
	rng := rand.New(rand.NewSource(42))

	selected := MUS.Select(population, n, interval, rng)
	assert.LessOrEqual(t, len(selected), n)

	seen := make(map[string]int)
	for _, item := range selected {
		seen[item.ID]++
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "item %s selected more than once", id)
	}
}

func TestClassicalSizeMeetsFloor(t *testing.T) {
	n := Classical.Size(10, d(1), d(100_000), RiskLow)
	assert.GreaterOrEqual(t, n, 30)
}

func TestClassicalEvaluateBuildsSymmetricInterval(t *testing.T) {
	result := Classical.Evaluate(10000, 100, d(500), d(50), RiskModerate)
	lower, _ := result.LowerBound.Float64()
	upper, _ := result.UpperBound.Float64()
	projected, _ := result.ProjectedValue.Float64()
	assert.InDelta(t, projected, (lower+upper)/2, 0.01)
}

// Scenario S5: attribute sampling evaluation.
func TestScenarioS5AttributeEvaluate(t *testing.T) {
	result := Attribute.Evaluate(93, 2, 0.05, RiskLow)
	assert.InDelta(t, 0.0215, result.SampleDeviationRate, 0.0001)
	assert.InDelta(t, 0.0509, result.UpperDeviationLimit, 0.0005)
	assert.Equal(t, AttributeDoNotRely, result.Conclusion)
}

func TestAttributeEvaluateReliesWhenUDLBelowTolerable(t *testing.T) {
	result := Attribute.Evaluate(200, 1, 0.05, RiskLow)
	assert.Equal(t, AttributeRely, result.Conclusion)
}

func TestAttributeSizeClampedToPopulation(t *testing.T) {
	n := Attribute.Size(0.01, 0.02, RiskHigh, 20)
	assert.Equal(t, 20, n)
}

func TestAttributeSizeUsesLookupTableWhenPresent(t *testing.T) {
	n := Attribute.Size(0, 0.05, RiskLow, 1000)
	assert.Equal(t, 93, n)
}
