package anonymize

import (
	"regexp"
	"strings"
)

// PII kind labels. Token text is "[" + kind + "_" + hex8 + "]", so these
// stay upper-snake-case.
const (
	KindEmail       = "EMAIL"
	KindPhone       = "PHONE"
	KindTaxID       = "TAX_ID"
	KindURL         = "URL"
	KindIPAddress   = "IP_ADDRESS"
	KindCompanyName = "COMPANY_NAME"
	KindPersonName  = "PERSON_NAME"
	KindAddress     = "ADDRESS"
	KindAccountNum  = "ACCOUNT_NUMBER"
)

// regexDetectors runs, in order, over every string value. Order matters:
// EMAIL is checked before PHONE so a digit run inside an email local-part
// never gets mistaken for a phone number, matching the source's pattern
// ordering.
var regexDetectors = []struct {
	kind string
	re   *regexp.Regexp
}{
	{KindEmail, regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
	{KindPhone, regexp.MustCompile(`\b(?:\+?1[-.]?)?\(?[0-9]{3}\)?[-.]?[0-9]{3}[-.]?[0-9]{4}\b`)},
	{KindTaxID, regexp.MustCompile(`\b(?:\d{2}-\d{7}|\d{3}-\d{2}-\d{4})\b`)},
	{KindURL, regexp.MustCompile(`https?://(?:www\.)?[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b(?:[-a-zA-Z0-9()@:%_+.~#?&/=]*)`)},
	{KindIPAddress, regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)},
}

// businessSuffixes is the lexicon used by the entity-name detector: a
// token matching one of these, lowercased with trailing punctuation
// stripped, marks the end of a company-name span.
var businessSuffixes = map[string]struct{}{
	"inc": {}, "incorporated": {}, "corp": {}, "corporation": {}, "llc": {},
	"ltd": {}, "limited": {}, "co": {}, "company": {}, "lp": {}, "llp": {},
	"pa": {}, "pc": {}, "plc": {}, "group": {}, "holdings": {},
}

// identifyingFields maps field names treated as fully identifying (spec
// §4.4 step 3) to the PII kind their value should be tokenized as.
var identifyingFields = map[string]string{
	"company_name": KindCompanyName, "client_name": KindCompanyName,
	"entity_name": KindCompanyName, "business_name": KindCompanyName,
	"legal_name": KindCompanyName, "dba_name": KindCompanyName,

	"contact_name": KindPersonName, "officer_name": KindPersonName,
	"director_name": KindPersonName, "ceo_name": KindPersonName,
	"cfo_name": KindPersonName, "president_name": KindPersonName,
	"partner_name": KindPersonName, "member_name": KindPersonName,

	"address": KindAddress, "street_address": KindAddress, "city": KindAddress,
	"state": KindAddress, "zip_code": KindAddress, "postal_code": KindAddress,
	"country": KindAddress,

	"email": KindEmail, "contact_email": KindEmail,
	"phone": KindPhone, "contact_phone": KindPhone, "fax": KindPhone,
	"website": KindURL, "url": KindURL,
	"tax_id": KindTaxID, "ein": KindTaxID, "ssn": KindTaxID,
	"account_number": KindAccountNum, "routing_number": KindAccountNum,
	"bank_account": KindAccountNum,
}

// financialFields (spec §4.4 step 4) are explicitly excluded from
// anonymization; their values pass through unchanged.
var financialFields = map[string]struct{}{
	"total_assets": {}, "total_liabilities": {}, "total_equity": {},
	"revenue": {}, "expenses": {}, "net_income": {}, "gross_profit": {},
	"operating_income": {}, "ebitda": {}, "cash": {},
	"accounts_receivable": {}, "inventory": {}, "accounts_payable": {},
	"debt": {}, "retained_earnings": {}, "common_stock": {},
	"cost_of_goods_sold": {}, "operating_expenses": {},
	"interest_expense": {}, "tax_expense": {}, "depreciation": {},
	"amortization": {}, "operating_cash_flow": {},
}

// isIdentifyingField reports whether fieldName is a fully-identifying
// field and, if so, which PII kind its value should be tokenized as.
func isIdentifyingField(fieldName string) (string, bool) {
	kind, ok := identifyingFields[strings.ToLower(fieldName)]
	return kind, ok
}

// isFinancialField reports whether fieldName must pass through untouched.
func isFinancialField(fieldName string) bool {
	_, ok := financialFields[strings.ToLower(fieldName)]
	return ok
}

// detectCompanyName finds the first business-suffix span in text: the
// suffix token plus up to 3 preceding tokens (spec §4.4 step 2). Returns
// the matched span and ok=false if no suffix is present.
func detectCompanyName(text string) (span string, ok bool) {
	words := strings.Fields(text)
	for i, w := range words {
		lower := strings.ToLower(strings.TrimRight(w, ".,;:"))
		if _, isSuffix := businessSuffixes[lower]; !isSuffix {
			continue
		}
		start := i - 3
		if start < 0 {
			start = 0
		}
		return strings.Join(words[start:i+1], " "), true
	}
	return "", false
}
