// Package filingparser implements the filing parser (C2): three
// sub-parsers dispatched by content sniffing, each turning a raw filing
// document into its index entries, its primary-document URL, or the
// RawFacts it contains (spec §4.2).
package filingparser

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/R3E-Network/fin-training-governance/internal/model"
)

// Diagnostics reports parse-time anomalies that do not block the parse.
type Diagnostics struct {
	Skipped int      `json:"skipped"`
	Notes   []string `json:"notes,omitempty"`
}

func (d *Diagnostics) skip(note string) {
	d.Skipped++
	if note != "" {
		d.Notes = append(d.Notes, note)
	}
}

// AtomEntry is one <entry> in an EDGAR-style Atom filing index.
type AtomEntry struct {
	Accession   string
	FilingDate  string
	FilingHref  string
	CompanyName string
}

type atomFeed struct {
	Entries []atomEntryXML `xml:"entry"`
}

type atomEntryXML struct {
	Title   string `xml:"title"`
	Updated string `xml:"updated"`
	Link    struct {
		Href string `xml:"href,attr"`
	} `xml:"link"`
	Content struct {
		AccessionNumber string `xml:"accession-number"`
		FilingDate      string `xml:"filing-date"`
		CompanyName     string `xml:"company-name"`
	} `xml:"content>filing-index"`
	Category struct {
		Term string `xml:"term,attr"`
	} `xml:"category"`
}

// ParseAtomIndex extracts entries from an EDGAR Atom filing-index feed
// (spec §4.2). filing_date is normalized to YYYY-MM-DD.
func ParseAtomIndex(data []byte) ([]AtomEntry, Diagnostics, error) {
	var feed atomFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, Diagnostics{}, fmt.Errorf("filingparser: parse atom index: %w", err)
	}

	var diag Diagnostics
	entries := make([]AtomEntry, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		date := e.Content.FilingDate
		if date == "" && len(e.Updated) >= 10 {
			date = e.Updated[:10]
		}
		if date == "" {
			diag.skip("atom entry missing filing date: " + e.Title)
			continue
		}
		entries = append(entries, AtomEntry{
			Accession:   e.Content.AccessionNumber,
			FilingDate:  date,
			FilingHref:  e.Link.Href,
			CompanyName: e.Content.CompanyName,
		})
	}
	return entries, diag, nil
}

// ParseHTMLIndex locates the document-list table in an EDGAR filing's
// HTML index page and returns the primary document URL for formType.
// When no row declares a matching type, the index URL itself is
// returned as the fallback (spec §4.2).
func ParseHTMLIndex(data []byte, formType, indexURL string) (string, Diagnostics, error) {
	doc, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return "", Diagnostics{}, fmt.Errorf("filingparser: parse html index: %w", err)
	}

	var diag Diagnostics
	var tables [][]*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			tables = append(tables, tableRows(n))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for _, rows := range tables {
		for _, row := range rows {
			cells := rowCells(row)
			if len(cells) < 2 {
				continue
			}
			rowType := strings.TrimSpace(cells[len(cells)-1])
			if !strings.EqualFold(rowType, formType) {
				continue
			}
			if href, ok := firstHref(row); ok {
				return href, diag, nil
			}
		}
	}

	diag.skip("no document-list row matched form type " + formType)
	return indexURL, diag, nil
}

func tableRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			rows = append(rows, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return rows
}

func rowCells(row *html.Node) []string {
	var cells []string
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, textContent(c))
		}
	}
	return cells
}

func firstHref(row *html.Node) (string, bool) {
	var found string
	var ok bool
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if ok {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					found = attr.Val
					ok = true
					return
				}
			}
		}
		for c := n.FirstChild; c != nil && !ok; c = c.NextSibling {
			walk(c)
		}
	}
	walk(row)
	return found, ok
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

// ParseXBRL dispatches to the JSON facts format or inline XML format by
// content sniffing, and returns the extracted RawFacts plus diagnostics
// (spec §4.2). filingID and periodEnd (the filing's own declared period,
// used for tie-breaking) are supplied by the caller.
func ParseXBRL(data []byte, filingID, periodEnd string) ([]model.RawFact, Diagnostics, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		return parseXBRLJSON(data, filingID, periodEnd)
	}
	return parseXBRLXML(data, filingID, periodEnd)
}

type xbrlJSONDoc struct {
	Facts map[string]map[string]struct {
		Units map[string][]xbrlJSONUnit `json:"units"`
	} `json:"facts"`
}

type xbrlJSONUnit struct {
	End   string  `json:"end"`
	Start string  `json:"start,omitempty"`
	Val   float64 `json:"val"`
	FY    int     `json:"fy,omitempty"`
	FP    string  `json:"fp,omitempty"`
	Form  string  `json:"form,omitempty"`
	Accn  string  `json:"accn,omitempty"`
}

func parseXBRLJSON(data []byte, filingID, periodEnd string) ([]model.RawFact, Diagnostics, error) {
	var doc xbrlJSONDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, Diagnostics{}, fmt.Errorf("filingparser: parse xbrl json: %w", err)
	}

	var diag Diagnostics
	byConceptUnit := make(map[string][]model.RawFact)
	for taxonomy, concepts := range doc.Facts {
		if !strings.Contains(strings.ToLower(taxonomy), "us-gaap") {
			diag.skip("unknown taxonomy namespace: " + taxonomy)
			continue
		}
		for concept, unitSet := range concepts {
			for unit, observations := range unitSet.Units {
				for _, obs := range observations {
					fact := model.RawFact{
						FilingID:   filingID,
						Concept:    concept,
						ContextRef: obs.Accn,
						UnitRef:    unit,
						RawValue:   strconv.FormatFloat(obs.Val, 'f', -1, 64),
						PeriodEnd:  obs.End,
						Source:     "XBRL",
					}
					key := concept + "|" + unit
					byConceptUnit[key] = append(byConceptUnit[key], fact)
				}
			}
		}
	}

	facts := make([]model.RawFact, 0, len(byConceptUnit))
	for _, candidates := range byConceptUnit {
		facts = append(facts, selectByPeriod(candidates, periodEnd))
	}
	return facts, diag, nil
}

// selectByPeriod applies spec §4.2's tie-break: prefer the candidate
// whose period_end matches the filing's declared period; otherwise keep
// the first (stable) candidate.
func selectByPeriod(candidates []model.RawFact, periodEnd string) model.RawFact {
	for _, c := range candidates {
		if periodEnd != "" && c.PeriodEnd == periodEnd {
			return c
		}
	}
	return candidates[0]
}

type xbrlXMLDoc struct {
	XMLName  xml.Name
	Elements []xbrlXMLElement `xml:",any"`
}

type xbrlXMLElement struct {
	XMLName    xml.Name
	ContextRef string `xml:"contextRef,attr"`
	UnitRef    string `xml:"unitRef,attr"`
	Decimals   string `xml:"decimals,attr"`
	Value      string `xml:",chardata"`
}

// parseXBRLXML iterates every element whose namespace URI contains
// "us-gaap", parsing numeric values per spec §4.2's rules: thousands
// separators and currency symbols stripped, parenthesized values
// negated, unparseable values retained as strings.
func parseXBRLXML(data []byte, filingID, periodEnd string) ([]model.RawFact, Diagnostics, error) {
	decoder := xml.NewDecoder(strings.NewReader(string(data)))

	var diag Diagnostics
	byConceptUnit := make(map[string][]model.RawFact)
	seenNamespaces := make(map[string]bool)

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		if !strings.Contains(strings.ToLower(start.Name.Space), "us-gaap") {
			if start.Name.Space != "" && !seenNamespaces[start.Name.Space] {
				seenNamespaces[start.Name.Space] = true
				diag.skip("unknown namespace: " + start.Name.Space)
			}
			continue
		}

		var contextRef, unitRef, decimals string
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "contextRef":
				contextRef = attr.Value
			case "unitRef":
				unitRef = attr.Value
			case "decimals":
				decimals = attr.Value
			}
		}

		var chardata strings.Builder
		for {
			inner, err := decoder.Token()
			if err != nil {
				break
			}
			if cd, ok := inner.(xml.CharData); ok {
				chardata.Write(cd)
			}
			if end, ok := inner.(xml.EndElement); ok && end.Name == start.Name {
				break
			}
		}

		raw := normalizeNumericToken(strings.TrimSpace(chardata.String()))
		fact := model.RawFact{
			FilingID:   filingID,
			Concept:    start.Name.Local,
			ContextRef: contextRef,
			UnitRef:    unitRef,
			Decimals:   decimals,
			RawValue:   raw,
			Source:     "XBRL",
		}
		key := start.Name.Local + "|" + unitRef
		byConceptUnit[key] = append(byConceptUnit[key], fact)
	}

	facts := make([]model.RawFact, 0, len(byConceptUnit))
	for _, candidates := range byConceptUnit {
		facts = append(facts, selectByPeriod(candidates, periodEnd))
	}
	return facts, diag, nil
}

// normalizeNumericToken strips thousands separators and currency
// symbols and negates parenthesized values; values that still fail to
// parse as a number are returned unchanged as strings (spec §4.2).
func normalizeNumericToken(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return trimmed
	}

	negative := false
	body := trimmed
	if strings.HasPrefix(body, "(") && strings.HasSuffix(body, ")") {
		negative = true
		body = strings.TrimSuffix(strings.TrimPrefix(body, "("), ")")
	}

	cleaned := strings.NewReplacer(",", "", "$", "", " ", "").Replace(body)
	cleaned = strings.TrimSpace(cleaned)

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return trimmed
	}
	if negative {
		value = -value
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
