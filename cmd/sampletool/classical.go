package main

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/R3E-Network/fin-training-governance/internal/sampling"
)

var classicalCmd = &cobra.Command{
	Use:   "classical",
	Short: "Classical mean-per-unit sampling (size, evaluate)",
}

func init() {
	classicalCmd.AddCommand(classicalSizeCmd, classicalEvaluateCmd)
}

var (
	classicalPopulationSize int
	classicalStdDev         decimal.Decimal
	classicalTM             decimal.Decimal
	classicalRisk           string
)

var classicalSizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Compute the classical mean-per-unit sample size",
	RunE: func(cmd *cobra.Command, args []string) error {
		risk, err := parseRisk(classicalRisk)
		if err != nil {
			return err
		}
		n := sampling.Classical.Size(classicalPopulationSize, classicalStdDev, classicalTM, risk)
		return printResult(map[string]any{"sample_size": n})
	},
}

func init() {
	classicalSizeCmd.Flags().IntVar(&classicalPopulationSize, "population-size", 0, "number of items in the population")
	classicalSizeCmd.Flags().Var(&decimalFlag{&classicalStdDev}, "std-dev", "estimated population standard deviation")
	classicalSizeCmd.Flags().Var(&decimalFlag{&classicalTM}, "tolerable-misstatement", "tolerable misstatement")
	classicalSizeCmd.Flags().StringVar(&classicalRisk, "risk", "moderate", "risk level: low, moderate, high")
}

var (
	classicalSampleSize   int
	classicalSampleMean   decimal.Decimal
	classicalSampleStdDev decimal.Decimal
)

var classicalEvaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Project the population value and confidence interval from a sample",
	RunE: func(cmd *cobra.Command, args []string) error {
		risk, err := parseRisk(classicalRisk)
		if err != nil {
			return err
		}
		result := sampling.Classical.Evaluate(classicalPopulationSize, classicalSampleSize, classicalSampleMean, classicalSampleStdDev, risk)
		return printResult(map[string]any{
			"projected_value": result.ProjectedValue.StringFixed(2),
			"precision":       result.Precision.StringFixed(2),
			"lower_bound":     result.LowerBound.StringFixed(2),
			"upper_bound":     result.UpperBound.StringFixed(2),
		})
	},
}

func init() {
	classicalEvaluateCmd.Flags().IntVar(&classicalPopulationSize, "population-size", 0, "number of items in the population")
	classicalEvaluateCmd.Flags().IntVar(&classicalSampleSize, "sample-size", 0, "number of items actually sampled")
	classicalEvaluateCmd.Flags().Var(&decimalFlag{&classicalSampleMean}, "sample-mean", "sample mean value")
	classicalEvaluateCmd.Flags().Var(&decimalFlag{&classicalSampleStdDev}, "sample-std-dev", "sample standard deviation")
	classicalEvaluateCmd.Flags().StringVar(&classicalRisk, "risk", "moderate", "risk level: low, moderate, high")
}
