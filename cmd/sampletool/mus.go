package main

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/R3E-Network/fin-training-governance/internal/sampling"
)

var musCmd = &cobra.Command{
	Use:   "mus",
	Short: "Monetary unit sampling (size, select, evaluate)",
}

func init() {
	musCmd.AddCommand(musSizeCmd, musSelectCmd, musEvaluateCmd)
}

var (
	musBookValue decimal.Decimal
	musTM        decimal.Decimal
	musEM        decimal.Decimal
	musRisk      string
)

func addMUSSizingFlags(cmd *cobra.Command) {
	cmd.Flags().Var(&decimalFlag{&musBookValue}, "book-value", "total recorded population value")
	cmd.Flags().Var(&decimalFlag{&musTM}, "tolerable-misstatement", "tolerable misstatement")
	cmd.Flags().Var(&decimalFlag{&musEM}, "expected-misstatement", "expected misstatement")
	cmd.Flags().StringVar(&musRisk, "risk", "moderate", "risk level: low, moderate, high")
}

var musSizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Compute the MUS sample size for a population",
	RunE: func(cmd *cobra.Command, args []string) error {
		risk, err := parseRisk(musRisk)
		if err != nil {
			return err
		}
		n := sampling.MUS.Size(musBookValue, musTM, musEM, risk)
		interval := sampling.MUS.Interval(musBookValue, n)
		return printResult(map[string]any{
			"sample_size":       n,
			"sampling_interval": interval.StringFixed(2),
		})
	},
}

func init() {
	addMUSSizingFlags(musSizeCmd)
}

var (
	musPopulationFile string
	musSampleSize     int
	musSeed           int64
)

var musSelectCmd = &cobra.Command{
	Use:   "select",
	Short: "Draw a systematic PPS sample from a population CSV (id,book_value)",
	RunE: func(cmd *cobra.Command, args []string) error {
		population, err := readMUSPopulationCSV(musPopulationFile)
		if err != nil {
			return err
		}
		total := decimal.Zero
		for _, item := range population {
			total = total.Add(item.BookValue)
		}
		interval := sampling.MUS.Interval(total, musSampleSize)
		rng := rand.New(rand.NewSource(musSeed))
		selected := sampling.MUS.Select(population, musSampleSize, interval, rng)

		ids := make([]string, len(selected))
		for i, item := range selected {
			ids[i] = item.ID
		}
		return printResult(map[string]any{
			"population_total": total.StringFixed(2),
			"sampling_interval": interval.StringFixed(2),
			"selected_ids":      ids,
		})
	},
}

func init() {
	musSelectCmd.Flags().StringVar(&musPopulationFile, "population", "", "path to a CSV file with id,book_value columns (required)")
	musSelectCmd.Flags().IntVar(&musSampleSize, "n", 30, "number of items to select")
	musSelectCmd.Flags().Int64Var(&musSeed, "seed", 1, "random seed for the systematic draw")
	_ = musSelectCmd.MarkFlagRequired("population")
}

var (
	musInspectedFile string
	musEvalN         int
)

var musEvaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate an inspected MUS sample (id,book_value,audit_value) and conclude accept/reject",
	RunE: func(cmd *cobra.Command, args []string) error {
		inspected, err := readMUSInspectedCSV(musInspectedFile)
		if err != nil {
			return err
		}
		risk, err := parseRisk(musRisk)
		if err != nil {
			return err
		}
		result := sampling.MUS.Evaluate(inspected, musBookValue, musTM, musEM, risk, musEvalN)
		return printResult(map[string]any{
			"projected_misstatement":   result.ProjectedMisstatement.StringFixed(2),
			"upper_misstatement_limit": result.UpperMisstatementLimit.StringFixed(2),
			"conclusion":               result.Conclusion,
		})
	},
}

func init() {
	addMUSSizingFlags(musEvaluateCmd)
	musEvaluateCmd.Flags().StringVar(&musInspectedFile, "inspected", "", "path to a CSV file with id,book_value,audit_value columns (required)")
	musEvaluateCmd.Flags().IntVar(&musEvalN, "n", 30, "sample size used when the population had no errors found")
	_ = musEvaluateCmd.MarkFlagRequired("inspected")
}

func readMUSPopulationCSV(path string) ([]sampling.MUSItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open population csv: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(bufio.NewReader(f)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse population csv: %w", err)
	}

	items := make([]sampling.MUSItem, 0, len(records))
	for i, row := range records {
		if i == 0 && looksLikeHeader(row) {
			continue
		}
		if len(row) < 2 {
			return nil, fmt.Errorf("population csv row %d: want id,book_value", i+1)
		}
		bv, err := decimal.NewFromString(row[1])
		if err != nil {
			return nil, fmt.Errorf("population csv row %d: book_value: %w", i+1, err)
		}
		items = append(items, sampling.MUSItem{ID: row[0], BookValue: bv})
	}
	return items, nil
}

func readMUSInspectedCSV(path string) ([]sampling.MUSItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open inspected csv: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(bufio.NewReader(f)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse inspected csv: %w", err)
	}

	items := make([]sampling.MUSItem, 0, len(records))
	for i, row := range records {
		if i == 0 && looksLikeHeader(row) {
			continue
		}
		if len(row) < 3 {
			return nil, fmt.Errorf("inspected csv row %d: want id,book_value,audit_value", i+1)
		}
		bv, err := decimal.NewFromString(row[1])
		if err != nil {
			return nil, fmt.Errorf("inspected csv row %d: book_value: %w", i+1, err)
		}
		av, err := decimal.NewFromString(row[2])
		if err != nil {
			return nil, fmt.Errorf("inspected csv row %d: audit_value: %w", i+1, err)
		}
		items = append(items, sampling.MUSItem{ID: row[0], BookValue: bv, AuditValue: av, Audited: true})
	}
	return items, nil
}

func looksLikeHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	_, err := decimal.NewFromString(row[len(row)-1])
	return err != nil
}

func printResult(v any) error {
	if outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	m, ok := v.(map[string]any)
	if !ok {
		fmt.Println(v)
		return nil
	}
	for _, key := range []string{
		"sample_size", "sampling_interval", "population_total", "selected_ids",
		"projected_misstatement", "upper_misstatement_limit", "conclusion",
		"projected_value", "precision", "lower_bound", "upper_bound",
		"sample_deviation_rate", "upper_deviation_limit",
	} {
		if val, ok := m[key]; ok {
			fmt.Printf("%s: %v\n", key, val)
		}
	}
	return nil
}

// decimalFlag adapts *decimal.Decimal to pflag.Value so it can be bound
// directly as a cobra flag.
type decimalFlag struct {
	dst *decimal.Decimal
}

func (d *decimalFlag) String() string {
	if d.dst == nil {
		return "0"
	}
	return d.dst.String()
}

func (d *decimalFlag) Set(s string) error {
	parsed, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	*d.dst = parsed
	return nil
}

func (d *decimalFlag) Type() string { return "decimal" }
