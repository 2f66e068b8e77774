package main

import (
	"fmt"

	"mediscan/internal/service"

	"github.com/spf13/cobra"
)

var (
	riskAge     int
	riskGlucose int
)

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Classify a glucose reading offline",
	Long: `Runs the diabetes risk classifier locally.

Example:
  mediscan risk --age 50 --glucose 160`,
	RunE: runRisk,
}

func init() {
	riskCmd.Flags().IntVar(&riskAge, "age", 30, "age in years (1-120)")
	riskCmd.Flags().IntVar(&riskGlucose, "glucose", 100, "fasting glucose in mg/dL")
}

func runRisk(cmd *cobra.Command, args []string) error {
	if err := service.ValidateRiskInput(riskAge, riskGlucose); err != nil {
		return err
	}
	res := service.Classify(riskAge, riskGlucose)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Category: %s\n", res.Category)
	fmt.Fprintf(out, "Advice:   %s\n", res.Advisory)
	return nil
}
