package main

import (
	"bytes"
	"testing"

	"github.com/R3E-Network/fin-training-governance/internal/sampling"
)

func TestParseRiskAcceptsKnownLevels(t *testing.T) {
	cases := map[string]sampling.RiskLevel{
		"low":      sampling.RiskLow,
		"MODERATE": sampling.RiskModerate,
		"High":     sampling.RiskHigh,
	}
	for input, want := range cases {
		got, err := parseRisk(input)
		if err != nil {
			t.Fatalf("parseRisk(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("parseRisk(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseRiskRejectsUnknownLevel(t *testing.T) {
	if _, err := parseRisk("extreme"); err == nil {
		t.Fatalf("expected error for unknown risk level")
	}
}

func TestMUSSizeCommandExecutesWithoutError(t *testing.T) {
	rootCmd.SetArgs([]string{
		"mus", "size",
		"--book-value", "1000000",
		"--tolerable-misstatement", "50000",
		"--expected-misstatement", "0",
		"--risk", "low",
	})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("mus size command returned error: %v", err)
	}
}
