// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// generate_check_docs generates a markdown reference for a release gate
// scenario: every check with its kind, threshold, and sampling model,
// plus the full capacity breakdown for scalability checks.
//
// Usage:
//
//	go run scripts/generate_check_docs.go > docs/default_gate.md
//	go run scripts/generate_check_docs.go my_gate.yaml > docs/my_gate.md
//
// Without an argument the built-in reference gate is documented.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/AleutianAI/fitgate/services/engine/capacity"
	"github.com/AleutianAI/fitgate/services/engine/scenario"
)

// kindDescriptions explains each check kind in one sentence.
var kindDescriptions = map[string]string{
	scenario.KindUptime:      "Simulates periodic availability probes and gates on the observed uptime percentage.",
	scenario.KindLatency:     "Draws response times from a clamped normal distribution and gates on a reduction such as p95.",
	scenario.KindScalability: "Estimates concurrent connection capacity from the deployment architecture and gates on the bottleneck.",
	scenario.KindStatic:      "Compares an externally measured value against its threshold without sampling.",
}

func main() {
	scn := scenario.Default()
	if len(os.Args) > 1 {
		loaded, err := scenario.LoadFile(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading scenario: %v\n", err)
			os.Exit(1)
		}
		scn = loaded
	}

	generateMarkdown(scn)
}

// generateMarkdown outputs the full markdown reference.
func generateMarkdown(scn *scenario.Scenario) {
	fmt.Printf("# Gate Reference: %s\n", scn.Metadata.ID)
	fmt.Println()
	if scn.Metadata.Description != "" {
		fmt.Println(scn.Metadata.Description)
		fmt.Println()
	}
	fmt.Printf("**Generated:** %s\n", time.Now().UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Println()

	// Statistics
	simulated := 0
	scalability := 0
	for _, c := range scn.Checks {
		if c.Sampling != nil {
			simulated++
		}
		if c.Kind == scenario.KindScalability {
			scalability++
		}
	}

	fmt.Println("## Summary")
	fmt.Println()
	fmt.Println("| Metric | Value |")
	fmt.Println("|--------|-------|")
	fmt.Printf("| Checks | %d |\n", len(scn.Checks))
	fmt.Printf("| Simulated Checks | %d |\n", simulated)
	fmt.Printf("| Scalability Checks | %d |\n", scalability)
	fmt.Printf("| Report Format | %s |\n", scn.Report.Format)
	if scn.Harness.MinVersion != "" {
		fmt.Printf("| Minimum Harness | %s |\n", scn.Harness.MinVersion)
	}
	fmt.Println()

	// Check table
	fmt.Println("## Checks")
	fmt.Println()
	fmt.Println("| Check | Kind | Approve At | Sampling |")
	fmt.Println("|-------|------|------------|----------|")
	for i := range scn.Checks {
		c := &scn.Checks[i]
		fmt.Printf("| `%s` | %s | %s %g | %s |\n",
			c.Name, c.Kind, comparisonSymbol(c.Threshold.Comparison),
			c.Threshold.Target, samplingSummary(c))
	}
	fmt.Println()

	// Per-check sections
	for i := range scn.Checks {
		c := &scn.Checks[i]
		fmt.Printf("### %s\n", c.Name)
		fmt.Println()
		fmt.Println(kindDescriptions[c.Kind])
		fmt.Println()
		if c.Kind == scenario.KindScalability && c.Capacity != nil {
			writeCapacitySection(c.Capacity)
		}
	}
}

// samplingSummary renders a check's measurement model in one cell.
func samplingSummary(c *scenario.CheckConfig) string {
	switch {
	case c.Kind == scenario.KindUptime && c.Sampling != nil:
		return fmt.Sprintf("%d trials, p(fail)=%g", c.Sampling.Trials, c.Sampling.FailureProbability)
	case c.Kind == scenario.KindLatency && c.Sampling != nil:
		return fmt.Sprintf("%d draws from N(%g, %g), %s", c.Sampling.Samples,
			c.Sampling.Mean, c.Sampling.StdDev, c.Reduction)
	case c.Kind == scenario.KindScalability:
		return "capacity model"
	default:
		return "external value"
	}
}

// writeCapacitySection renders the architecture and its ceiling
// breakdown.
func writeCapacitySection(p *capacity.Parameters) {
	fmt.Println("| Parameter | Value |")
	fmt.Println("|-----------|-------|")
	fmt.Printf("| Connections per instance | %g |\n", p.ConnectionsPerInstance)
	fmt.Printf("| Instances | %d |\n", p.InstanceCount)
	fmt.Printf("| Cores per instance | %g |\n", p.CPUCoresPerInstance)
	fmt.Printf("| Memory per instance | %g GB |\n", p.MemoryGBPerInstance)

	names := make([]string, 0, len(p.EfficiencyFactors))
	for name := range p.EfficiencyFactors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("| Efficiency: %s | %g |\n", strings.ReplaceAll(name, "_", " "), p.EfficiencyFactors[name])
	}
	fmt.Println()

	est, err := capacity.Compute(*p)
	if err != nil {
		fmt.Printf("Capacity estimate unavailable: %v\n", err)
		fmt.Println()
		return
	}

	fmt.Println("| Ceiling | Connections |")
	fmt.Println("|---------|-------------|")
	fmt.Printf("| Base | %.0f |\n", est.Base)
	fmt.Printf("| Adjusted | %.0f |\n", est.Adjusted)
	fmt.Printf("| Memory | %.0f |\n", est.MemoryLimit)
	fmt.Printf("| CPU | %.0f |\n", est.CPULimit)
	fmt.Printf("| **Final** | **%.0f** |\n", est.Final)
	fmt.Println()
	fmt.Printf("Bottleneck: %s\n", est.Bottleneck)
	fmt.Println()
}

// comparisonSymbol maps serialized comparison names to operators.
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
