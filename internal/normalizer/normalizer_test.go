package normalizer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/fin-training-governance/internal/model"
)

// Scenario S2: balance-sheet flag.
func TestNormalizeFlagsBalanceSheetMismatchBeyondOnePercent(t *testing.T) {
	facts := []model.RawFact{
		{Concept: "Assets", RawValue: "100", Source: "XBRL"},
		{Concept: "Liabilities", RawValue: "60", Source: "XBRL"},
		{Concept: "StockholdersEquity", RawValue: "30", Source: "XBRL"},
	}

	statement, flags := Normalize(facts, model.BalanceSheet, "stmt-1", "filing-1", "2023-12-31", "USD")

	require.Len(t, flags, 1)
	assert.Equal(t, model.FlagBalanceSheetMismatch, flags[0].Code)
	assert.True(t, statement.Fields["total_assets"].Equal(decimal.NewFromInt(100)))
}

func TestNormalizeAcceptsBalanceSheetWithinTolerance(t *testing.T) {
	facts := []model.RawFact{
		{Concept: "Assets", RawValue: "1000", Source: "XBRL"},
		{Concept: "Liabilities", RawValue: "600", Source: "XBRL"},
		{Concept: "StockholdersEquity", RawValue: "405", Source: "XBRL"},
	}

	_, flags := Normalize(facts, model.BalanceSheet, "stmt-2", "filing-1", "2023-12-31", "USD")
	assert.Empty(t, flags)
}

func TestNormalizeOmitsMissingFieldsRatherThanZero(t *testing.T) {
	facts := []model.RawFact{
		{Concept: "Assets", RawValue: "1000", Source: "XBRL"},
	}
	statement, _ := Normalize(facts, model.BalanceSheet, "stmt-3", "filing-1", "2023-12-31", "USD")
	_, hasLiabilities := statement.Fields["total_liabilities"]
	assert.False(t, hasLiabilities)
}

func TestNormalizePrefersXBRLOverHTMLOverDerived(t *testing.T) {
	facts := []model.RawFact{
		{Concept: "total revenue", RawValue: "900", Source: "HTML"},
		{Concept: "Revenues", RawValue: "1000", Source: "XBRL"},
		{Concept: "net sales", RawValue: "800", Source: "DERIVED"},
	}
	statement, _ := Normalize(facts, model.Income, "stmt-4", "filing-1", "2023-12-31", "USD")
	assert.True(t, statement.Fields["revenue"].Equal(decimal.NewFromInt(1000)))
}

func TestNormalizeMatchesHTMLRowLabelBySynonym(t *testing.T) {
	facts := []model.RawFact{
		{Concept: "Net Sales", RawValue: "500", Source: "HTML"},
	}
	statement, _ := Normalize(facts, model.Income, "stmt-5", "filing-1", "2023-12-31", "USD")
	assert.True(t, statement.Fields["revenue"].Equal(decimal.NewFromInt(500)))
}

func TestNormalizeIgnoresUnparseableFacts(t *testing.T) {
	facts := []model.RawFact{
		{Concept: "Assets", RawValue: "N/A", Source: "XBRL"},
	}
	statement, _ := Normalize(facts, model.BalanceSheet, "stmt-6", "filing-1", "2023-12-31", "USD")
	assert.Empty(t, statement.Fields)
}
