// Package normalizer implements the statement normalizer (C3): it maps
// source concepts from one or more RawFacts onto a fixed canonical
// vocabulary per statement type, resolving precedence and flagging the
// balance-sheet identity (spec §4.3).
package normalizer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/R3E-Network/fin-training-governance/internal/model"
)

// FieldSpec declares how one canonical field is recognized across
// sources: the exact XBRL concept name(s) and a set of lowercase
// synonyms matched by case-insensitive contains against an HTML row
// label.
type FieldSpec struct {
	Canonical     string
	XBRLConcepts  []string
	HTMLSynonyms  []string
}

// sourcePriority ranks where a RawFact came from; lower sorts first.
// XBRL > HTML table > derived, per spec §4.3.
func sourcePriority(source string) int {
	switch strings.ToUpper(source) {
	case "XBRL":
		return 0
	case "HTML":
		return 1
	case "DERIVED":
		return 2
	default:
		return 3
	}
}

// vocabulary is the canonical field table per statement type. Field
// counts here must stay in sync with internal/quality's
// canonicalFieldCount.
var vocabulary = map[model.StatementType][]FieldSpec{
	model.BalanceSheet: {
		{Canonical: "total_assets", XBRLConcepts: []string{"Assets"}, HTMLSynonyms: []string{"total assets"}},
		{Canonical: "total_liabilities", XBRLConcepts: []string{"Liabilities"}, HTMLSynonyms: []string{"total liabilities"}},
		{Canonical: "total_equity", XBRLConcepts: []string{"StockholdersEquity"}, HTMLSynonyms: []string{"total equity", "stockholders equity", "shareholders equity"}},
		{Canonical: "cash_and_equivalents", XBRLConcepts: []string{"CashAndCashEquivalentsAtCarryingValue"}, HTMLSynonyms: []string{"cash and cash equivalents", "cash and equivalents"}},
		{Canonical: "accounts_receivable", XBRLConcepts: []string{"AccountsReceivableNetCurrent"}, HTMLSynonyms: []string{"accounts receivable"}},
		{Canonical: "inventory", XBRLConcepts: []string{"InventoryNet"}, HTMLSynonyms: []string{"inventory", "inventories"}},
		{Canonical: "accounts_payable", XBRLConcepts: []string{"AccountsPayableCurrent"}, HTMLSynonyms: []string{"accounts payable"}},
		{Canonical: "long_term_debt", XBRLConcepts: []string{"LongTermDebtNoncurrent"}, HTMLSynonyms: []string{"long term debt", "long-term debt"}},
		{Canonical: "current_assets", XBRLConcepts: []string{"AssetsCurrent"}, HTMLSynonyms: []string{"total current assets", "current assets"}},
	},
	model.Income: {
		{Canonical: "revenue", XBRLConcepts: []string{"Revenues", "RevenueFromContractWithCustomerExcludingAssessedTax"}, HTMLSynonyms: []string{"revenue", "net revenue", "total revenue", "net sales"}},
		{Canonical: "cost_of_goods_sold", XBRLConcepts: []string{"CostOfGoodsAndServicesSold"}, HTMLSynonyms: []string{"cost of goods sold", "cost of sales", "cost of revenue"}},
		{Canonical: "gross_profit", XBRLConcepts: []string{"GrossProfit"}, HTMLSynonyms: []string{"gross profit"}},
		{Canonical: "operating_expenses", XBRLConcepts: []string{"OperatingExpenses"}, HTMLSynonyms: []string{"operating expenses", "total operating expenses"}},
		{Canonical: "expenses", XBRLConcepts: []string{"CostsAndExpenses"}, HTMLSynonyms: []string{"total expenses", "total costs and expenses"}},
		{Canonical: "operating_income", XBRLConcepts: []string{"OperatingIncomeLoss"}, HTMLSynonyms: []string{"operating income", "income from operations"}},
		{Canonical: "net_income", XBRLConcepts: []string{"NetIncomeLoss"}, HTMLSynonyms: []string{"net income", "net earnings", "net income (loss)"}},
	},
	model.CashFlow: {
		{Canonical: "operating_cash_flow", XBRLConcepts: []string{"NetCashProvidedByUsedInOperatingActivities"}, HTMLSynonyms: []string{"cash from operations", "net cash provided by operating activities"}},
		{Canonical: "investing_cash_flow", XBRLConcepts: []string{"NetCashProvidedByUsedInInvestingActivities"}, HTMLSynonyms: []string{"cash from investing activities", "net cash used in investing activities"}},
		{Canonical: "financing_cash_flow", XBRLConcepts: []string{"NetCashProvidedByUsedInFinancingActivities"}, HTMLSynonyms: []string{"cash from financing activities", "net cash used in financing activities"}},
		{Canonical: "net_change_in_cash", XBRLConcepts: []string{"CashAndCashEquivalentsPeriodIncreaseDecrease"}, HTMLSynonyms: []string{"net change in cash", "net increase decrease in cash"}},
		{Canonical: "beginning_cash_balance", XBRLConcepts: []string{"CashAndCashEquivalentsAtCarryingValueAtBeginningOfPeriod"}, HTMLSynonyms: []string{"cash at beginning of period", "beginning cash balance"}},
	},
	model.Notes: {
		{Canonical: "notes_text", HTMLSynonyms: []string{"notes"}},
	},
	model.Package: {
		{Canonical: "summary", HTMLSynonyms: []string{"summary"}},
	},
}

func lookupFieldSpec(kind model.StatementType, concept string) (FieldSpec, bool) {
	for _, spec := range vocabulary[kind] {
		for _, c := range spec.XBRLConcepts {
			if strings.EqualFold(c, concept) {
				return spec, true
			}
		}
	}
	return FieldSpec{}, false
}

// lookupByHTMLLabel matches an HTML row label against a field's
// synonym set via case-insensitive contains (spec §4.3).
func lookupByHTMLLabel(kind model.StatementType, label string) (FieldSpec, bool) {
	lower := strings.ToLower(label)
	for _, spec := range vocabulary[kind] {
		for _, syn := range spec.HTMLSynonyms {
			if strings.Contains(lower, syn) {
				return spec, true
			}
		}
	}
	return FieldSpec{}, false
}

// candidateAssignment is one canonical-field assignment competing with
// others from a different source before precedence resolution.
type candidateAssignment struct {
	canonical string
	value     decimal.Decimal
	priority  int
}

// Normalize maps facts onto the canonical vocabulary for kind, resolving
// cross-source precedence (XBRL > HTML > derived) and flagging the
// balance-sheet identity if it is violated beyond 1% tolerance
// (spec §4.3).
func Normalize(facts []model.RawFact, kind model.StatementType, statementID, filingID, periodEnd, currency string) (model.Statement, []model.Flag) {
	candidates := make([]candidateAssignment, 0, len(facts))
	for _, fact := range facts {
		spec, ok := lookupFieldSpec(kind, fact.Concept)
		if !ok {
			spec, ok = lookupByHTMLLabel(kind, fact.Concept)
			if !ok {
				continue
			}
		}
		value, parseErr := decimal.NewFromString(fact.RawValue)
		if parseErr != nil {
			continue
		}
		candidates = append(candidates, candidateAssignment{
			canonical: spec.Canonical,
			value:     value,
			priority:  sourcePriority(fact.Source),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].priority < candidates[j].priority
	})

	fields := make(map[string]decimal.Decimal)
	for _, c := range candidates {
		if _, already := fields[c.canonical]; already {
			continue
		}
		fields[c.canonical] = c.value
	}

	statement := model.Statement{
		StatementID: statementID,
		FilingID:    filingID,
		Type:        kind,
		PeriodEnd:   periodEnd,
		Currency:    currency,
		Fields:      fields,
	}

	var flags []model.Flag
	if kind == model.BalanceSheet {
		if flag, violated := checkBalanceSheetIdentity(fields); violated {
			flags = append(flags, flag)
		}
	}

	return statement, flags
}

var onePercent = decimal.NewFromFloat(0.01)

// checkBalanceSheetIdentity flags assets != liabilities + equity beyond
// 1% tolerance, without dropping the statement (spec §4.3).
func checkBalanceSheetIdentity(fields map[string]decimal.Decimal) (model.Flag, bool) {
	assets, hasAssets := fields["total_assets"]
	liabilities, hasLiabilities := fields["total_liabilities"]
	equity, hasEquity := fields["total_equity"]
	if !hasAssets || !hasLiabilities || !hasEquity {
		return model.Flag{}, false
	}

	expected := liabilities.Add(equity)
	diff := assets.Sub(expected).Abs()
	tolerance := assets.Abs().Mul(onePercent)
	if diff.LessThanOrEqual(tolerance) {
		return model.Flag{}, false
	}

	diffFloat, _ := diff.Float64()
	return model.Flag{
		Code:   model.FlagBalanceSheetMismatch,
		Detail: fmt.Sprintf("assets (%s) != liabilities + equity (%s), off by %s", assets, expected, strconv.FormatFloat(diffFloat, 'f', 2, 64)),
	}, true
}
