// Command sampletool is a standalone CLI over the statistical sampling
// engine (C9): an auditor can size a sample, draw a monetary unit
// sample from a population CSV, or evaluate inspection results without
// standing up the governance service.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/R3E-Network/fin-training-governance/internal/sampling"
)

var outputJSON bool

var rootCmd = &cobra.Command{
	Use:   "sampletool",
	Short: "Statistical sampling engine CLI (MUS, classical, attribute)",
	Long: `sampletool exposes the monetary unit sampling, classical
mean-per-unit, and attribute sampling evaluators as standalone
commands, for auditors who want to size or evaluate a sample without
ingesting a statement through the governance service.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "print results as JSON")
	rootCmd.AddCommand(musCmd, classicalCmd, attributeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func parseRisk(s string) (sampling.RiskLevel, error) {
	switch sampling.RiskLevel(strings.ToUpper(s)) {
	case sampling.RiskLow:
		return sampling.RiskLow, nil
	case sampling.RiskModerate:
		return sampling.RiskModerate, nil
	case sampling.RiskHigh:
		return sampling.RiskHigh, nil
	default:
		return "", fmt.Errorf("unknown risk level %q (want low, moderate, or high)", s)
	}
}
