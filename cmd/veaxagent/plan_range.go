package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"veaxAgent/internal/tickmath"
)

func runPlanRange(cmd *cobra.Command, _ []string) error {
	price, _ := cmd.Flags().GetFloat64("price")
	decimalsA, _ := cmd.Flags().GetInt("decimals-a")
	decimalsB, _ := cmd.Flags().GetInt("decimals-b")
	leverage, _ := cmd.Flags().GetFloat64("leverage")

	if price <= 0 {
		return fmt.Errorf("price must be positive")
	}
	if decimalsA < 0 || decimalsB < 0 {
		return fmt.Errorf("decimals must not be negative")
	}

	in := tickmath.RangeInput{
		Price:     price,
		DecimalsA: decimalsA,
		DecimalsB: decimalsB,
		Leverage:  leverage,
	}
	out := struct {
		Input tickmath.RangeInput `json:"input"`
		Range tickmath.Range      `json:"range"`
	}{in, tickmath.PlanEqualRange(in)}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
