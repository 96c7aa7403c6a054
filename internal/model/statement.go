package model

import "github.com/shopspring/decimal"

// StatementType discriminates the five statement shapes the normalizer
// produces.
type StatementType string

const (
	BalanceSheet StatementType = "BALANCE_SHEET"
	Income       StatementType = "INCOME"
	CashFlow     StatementType = "CASH_FLOW"
	Notes        StatementType = "NOTES"
	Package      StatementType = "PACKAGE"
)

// Statement is the canonical, normalized shape every C3 output takes.
// Fields absent from the source filing are simply absent from the map,
// never present with a zero value.
type Statement struct {
	StatementID string                     `json:"statement_id"`
	FilingID    string                     `json:"filing_id"`
	Type        StatementType              `json:"type"`
	PeriodStart *string                    `json:"period_start,omitempty"`
	PeriodEnd   string                     `json:"period_end"`
	Currency    string                     `json:"currency"`
	Fields      map[string]decimal.Decimal `json:"fields"`
}

// Flag describes a validation finding attached to a Statement that does
// not block the statement from flowing downstream.
type Flag struct {
	Code    string `json:"code"`
	Detail  string `json:"detail"`
}

const FlagBalanceSheetMismatch = "balance_sheet_equation_mismatch"
