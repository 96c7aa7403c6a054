package main

import (
	"github.com/spf13/cobra"

	"github.com/R3E-Network/fin-training-governance/internal/sampling"
)

var attributeCmd = &cobra.Command{
	Use:   "attribute",
	Short: "Attribute sampling for controls testing (size, evaluate)",
}

func init() {
	attributeCmd.AddCommand(attributeSizeCmd, attributeEvaluateCmd)
}

var (
	attributeExpectedRate  float64
	attributeTolerableRate float64
	attributeRisk          string
	attributePopulation    int
)

var attributeSizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Compute the attribute sample size for a deviation-rate test",
	RunE: func(cmd *cobra.Command, args []string) error {
		risk, err := parseRisk(attributeRisk)
		if err != nil {
			return err
		}
		n := sampling.Attribute.Size(attributeExpectedRate, attributeTolerableRate, risk, attributePopulation)
		return printResult(map[string]any{"sample_size": n})
	},
}

func init() {
	attributeSizeCmd.Flags().Float64Var(&attributeExpectedRate, "expected-rate", 0, "expected deviation rate")
	attributeSizeCmd.Flags().Float64Var(&attributeTolerableRate, "tolerable-rate", 0.05, "tolerable deviation rate")
	attributeSizeCmd.Flags().StringVar(&attributeRisk, "risk", "moderate", "risk level: low, moderate, high")
	attributeSizeCmd.Flags().IntVar(&attributePopulation, "population-size", 0, "population size, 0 if unbounded")
}

var (
	attributeSampleSize int
	attributeDeviations int
)

var attributeEvaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate observed deviations and conclude rely/do-not-rely",
	RunE: func(cmd *cobra.Command, args []string) error {
		risk, err := parseRisk(attributeRisk)
		if err != nil {
			return err
		}
		result := sampling.Attribute.Evaluate(attributeSampleSize, attributeDeviations, attributeTolerableRate, risk)
		return printResult(map[string]any{
			"sample_deviation_rate": result.SampleDeviationRate,
			"upper_deviation_limit": result.UpperDeviationLimit,
			"conclusion":            result.Conclusion,
		})
	},
}

func init() {
	attributeEvaluateCmd.Flags().IntVar(&attributeSampleSize, "sample-size", 0, "number of items sampled")
	attributeEvaluateCmd.Flags().IntVar(&attributeDeviations, "deviations", 0, "number of deviations observed")
	attributeEvaluateCmd.Flags().Float64Var(&attributeTolerableRate, "tolerable-rate", 0.05, "tolerable deviation rate")
	attributeEvaluateCmd.Flags().StringVar(&attributeRisk, "risk", "moderate", "risk level: low, moderate, high")
}
