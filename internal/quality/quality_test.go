package quality

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/R3E-Network/fin-training-governance/internal/model"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestAssessExcellentWhenCompleteAndConsistent(t *testing.T) {
	s := model.Statement{
		Type: model.Income,
		Fields: map[string]decimal.Decimal{
			"revenue": dec(1000), "cost_of_goods_sold": dec(400), "gross_profit": dec(600),
			"net_income": dec(300), "expenses": dec(700), "ebitda": dec(350), "operating_income": dec(320),
		},
	}
	assessment := Assess(s)
	assert.Equal(t, model.Excellent, assessment.Overall)
	assert.Empty(t, assessment.ConsistencyIssues)
}

func TestAssessFlagsInconsistentGrossProfit(t *testing.T) {
	s := model.Statement{
		Type: model.Income,
		Fields: map[string]decimal.Decimal{
			"revenue": dec(1000), "cost_of_goods_sold": dec(400), "gross_profit": dec(100),
		},
	}
	assessment := Assess(s)
	require := assert.New(t)
	require.Len(assessment.ConsistencyIssues, 1)
	require.Equal("gross_profit_equation", assessment.ConsistencyIssues[0].Identity)
}

func TestAssessPoorWhenIncomplete(t *testing.T) {
	s := model.Statement{
		Type:   model.BalanceSheet,
		Fields: map[string]decimal.Decimal{"total_assets": dec(100)},
	}
	assessment := Assess(s)
	assert.Equal(t, model.Poor, assessment.Overall)
}

func TestAssessCompletenessIsBoundedByOne(t *testing.T) {
	s := model.Statement{
		Type: model.Notes,
		Fields: map[string]decimal.Decimal{
			"note_a": dec(1), "note_b": dec(2), "note_c": dec(3),
		},
	}
	assessment := Assess(s)
	assert.LessOrEqual(t, assessment.Completeness, 1.0)
}
