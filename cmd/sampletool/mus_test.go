package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestReadMUSPopulationCSVSkipsHeaderRow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "population.csv")
	content := "id,book_value\nA001,1000.00\nA002,2500.50\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write population csv: %v", err)
	}

	items, err := readMUSPopulationCSV(path)
	if err != nil {
		t.Fatalf("readMUSPopulationCSV returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "A001" || !items[0].BookValue.Equal(decimal.NewFromFloat(1000.00)) {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
}

func TestReadMUSPopulationCSVWithoutHeaderRow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "population.csv")
	content := "A001,1000.00\nA002,2500.50\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write population csv: %v", err)
	}

	items, err := readMUSPopulationCSV(path)
	if err != nil {
		t.Fatalf("readMUSPopulationCSV returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items with no header, got %d", len(items))
	}
}

func TestReadMUSInspectedCSVParsesAuditValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inspected.csv")
	content := "id,book_value,audit_value\nA001,1000.00,950.00\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write inspected csv: %v", err)
	}

	items, err := readMUSInspectedCSV(path)
	if err != nil {
		t.Fatalf("readMUSInspectedCSV returned error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if !items[0].Audited {
		t.Fatalf("expected item to be marked audited")
	}
	if !items[0].AuditValue.Equal(decimal.NewFromFloat(950.00)) {
		t.Fatalf("unexpected audit value: %s", items[0].AuditValue)
	}
}

func TestReadMUSPopulationCSVRejectsMalformedRow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "population.csv")
	content := "id,book_value\nA001,not-a-number\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write population csv: %v", err)
	}

	if _, err := readMUSPopulationCSV(path); err == nil {
		t.Fatalf("expected error for malformed book_value")
	}
}
