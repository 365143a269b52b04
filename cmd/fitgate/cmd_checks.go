package main

import (
	"fmt"
	"os"

	"github.com/AleutianAI/fitgate/services/engine/scenario"
	"github.com/spf13/cobra"
)

// runChecks executes the checks command.
//
// # Exit Codes
//
//   - 0: Catalog printed
//   - 2: JSON encoding failed
func runChecks(cmd *cobra.Command, _ []string) {
	os.Exit(listChecks())
}

// listChecks prints the built-in check catalog and returns the exit
// code.
func listChecks() int {
	catalog := buildCheckCatalog()

	if checksJSONOutput {
		if err := OutputJSON(map[string]interface{}{"checks": catalog}, false); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return CLIExitError
		}
		return CLIExitApproved
	}

	fmt.Println("--- Built-in Check Kinds ---")
	for _, entry := range catalog {
		fmt.Printf("\n%-12s %s\n", entry.Kind, entry.Description)
		fmt.Printf("%-12s reference: %s\n", "", referenceLine(entry.Reference))
	}
	return CLIExitApproved
}

// buildCheckCatalog assembles the catalog from the default release
// gate, so the reference thresholds shown here are the ones a bare
// `fitgate evaluate` runs.
func buildCheckCatalog() []CheckCatalogEntry {
	def := scenario.Default()
	return []CheckCatalogEntry{
		{
			Kind:        scenario.KindUptime,
			Description: "Simulates periodic availability probes and gates on the observed uptime percentage.",
			Reference:   &def.Checks[0],
		},
		{
			Kind:        scenario.KindLatency,
			Description: "Draws response times from a clamped normal distribution and gates on a reduction such as p95.",
			Reference:   &def.Checks[1],
		},
		{
			Kind:        scenario.KindScalability,
			Description: "Estimates concurrent connection capacity from the deployment architecture and gates on the bottleneck.",
			Reference:   &def.Checks[2],
		},
		{
			Kind:        scenario.KindStatic,
			Description: "Compares an externally measured value against its threshold without sampling.",
		},
	}
}

// referenceLine summarizes a reference check in one line, or notes its
// absence.
func referenceLine(ref *scenario.CheckConfig) string {
	if ref == nil {
		return "none (the value comes from the scenario)"
	}

	line := fmt.Sprintf("%s, approve at %s %g", ref.Name,
		comparisonSymbol(ref.Threshold.Comparison), ref.Threshold.Target)
	if s := ref.Sampling; s != nil {
		if s.Trials > 0 {
			line += fmt.Sprintf(", %d trials", s.Trials)
		}
		if s.Samples > 0 {
			line += fmt.Sprintf(", %d samples of %gms around the mean", s.Samples, s.Mean)
		}
	}
	if ref.Reduction != "" {
		line += fmt.Sprintf(", reduction %s", ref.Reduction)
	}
	return line
}

// comparisonSymbol maps the serialized comparison names to operators.
func comparisonSymbol(comparison string) string {
	switch comparison {
	case "at_least":
		return ">="
	case "at_most":
		return "<="
	default:
		return comparison
	}
}
