// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/AleutianAI/fitgate/services/engine/capacity"
	"github.com/AleutianAI/fitgate/services/engine/scenario"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	capScenario        string   // Read architectures from a scenario's scalability checks
	capInstances       int      // Override: instance count
	capConnsPerInst    float64  // Override: tuned connections per instance
	capCores           float64  // Override: CPU cores per instance
	capMemoryGB        float64  // Override: memory per instance
	capBytesPerConn    float64  // Override: planning bytes per connection
	capConnsPerCore    float64  // Override: planning connections per core
	capEfficiencyFlags []string // Override or add efficiency factors, name=value
	capJSON            bool     // Output as JSON
)

func init() {
	registerCapacityFlags(capacityCmd)
}

// registerCapacityFlags binds the capacity flag set onto cmd. Binding
// resets the flag variables to their defaults, so tests can carry the
// same flags on a throwaway command.
func registerCapacityFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&capScenario, "scenario", "s", "",
		"Estimate the architectures of a scenario's scalability checks")
	cmd.Flags().IntVar(&capInstances, "instances", 0,
		"Override the instance count")
	cmd.Flags().Float64Var(&capConnsPerInst, "connections-per-instance", 0,
		"Override the tuned per-instance connection limit")
	cmd.Flags().Float64Var(&capCores, "cores", 0,
		"Override the CPU cores per instance")
	cmd.Flags().Float64Var(&capMemoryGB, "memory-gb", 0,
		"Override the memory per instance in GB")
	cmd.Flags().Float64Var(&capBytesPerConn, "bytes-per-connection", 0,
		"Override the planning bytes per connection")
	cmd.Flags().Float64Var(&capConnsPerCore, "connections-per-core", 0,
		"Override the planning connections per core")
	cmd.Flags().StringArrayVar(&capEfficiencyFlags, "efficiency", nil,
		"Override or add an efficiency factor, name=value (repeatable)")
	cmd.Flags().BoolVar(&capJSON, "json", false,
		"Output parameters and estimate as JSON")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runCapacity executes the capacity command.
//
// # Exit Codes
//
//   - 0: Estimate computed
//   - 2: Invalid parameters or unreadable scenario
func runCapacity(cmd *cobra.Command, _ []string) {
	os.Exit(estimateCapacity(cmd))
}

// namedParams is one architecture to estimate, labeled for output.
type namedParams struct {
	name   string
	params capacity.Parameters
}

// estimateCapacity computes the breakdown and returns the exit code.
//
// Without --scenario the reference architecture is estimated; with it,
// every scalability check in the scenario is. Flag overrides apply to
// each architecture before computing. JSON output is a single
// parameters/estimate pair in reference mode and an array in scenario
// mode.
func estimateCapacity(cmd *cobra.Command) int {
	// 1. Assemble the architectures
	var sets []namedParams
	if capScenario != "" {
		scn, err := scenario.LoadFile(capScenario)
		if err != nil {
			OutputError(capJSON, "cannot load scenario", err)
			return CLIExitError
		}
		for i := range scn.Checks {
			c := &scn.Checks[i]
			if c.Kind != scenario.KindScalability || c.Capacity == nil {
				continue
			}
			sets = append(sets, namedParams{name: c.Name, params: *c.Capacity})
		}
		if len(sets) == 0 {
			OutputError(capJSON, "nothing to estimate",
				fmt.Errorf("scenario %s has no scalability checks", scn.Metadata.ID))
			return CLIExitError
		}
	} else {
		sets = append(sets, namedParams{name: "reference architecture", params: capacity.DefaultParameters()})
	}

	// 2. Apply overrides and compute
	results := make([]CapacityResult, 0, len(sets))
	for i := range sets {
		if err := applyCapacityOverrides(cmd, &sets[i].params); err != nil {
			OutputError(capJSON, "invalid override", err)
			return CLIExitError
		}
		est, err := capacity.Compute(sets[i].params)
		if err != nil {
			OutputError(capJSON, "invalid capacity parameters", err)
			return CLIExitError
		}
		results = append(results, CapacityResult{Parameters: sets[i].params, Estimate: est})
	}

	// 3. Output
	if capJSON {
		var err error
		if capScenario != "" {
			err = OutputJSON(results, false)
		} else {
			err = OutputJSON(results[0], false)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return CLIExitError
		}
		return CLIExitApproved
	}

	for i := range results {
		printEstimate(sets[i].name, results[i].Estimate)
	}
	return CLIExitApproved
}

// applyCapacityOverrides folds the changed flags into the parameters.
func applyCapacityOverrides(cmd *cobra.Command, p *capacity.Parameters) error {
	flags := cmd.Flags()
	if flags.Changed("instances") {
		p.InstanceCount = capInstances
	}
	if flags.Changed("connections-per-instance") {
		p.ConnectionsPerInstance = capConnsPerInst
	}
	if flags.Changed("cores") {
		p.CPUCoresPerInstance = capCores
	}
	if flags.Changed("memory-gb") {
		p.MemoryGBPerInstance = capMemoryGB
	}
	if flags.Changed("bytes-per-connection") {
		p.BytesPerConnection = capBytesPerConn
	}
	if flags.Changed("connections-per-core") {
		p.ConnectionsPerCore = capConnsPerCore
	}

	for _, kv := range capEfficiencyFlags {
		name, val, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("efficiency override %q is not name=value", kv)
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("efficiency override %q: %w", kv, err)
		}
		if p.EfficiencyFactors == nil {
			p.EfficiencyFactors = make(map[string]float64)
		}
		p.EfficiencyFactors[strings.TrimSpace(name)] = f
	}
	return nil
}

// printEstimate renders one ceiling breakdown.
func printEstimate(name string, est capacity.Estimate) {
	fmt.Printf("--- Capacity Estimate: %s ---\n", name)
	fmt.Printf("Base capacity:     %.0f connections\n", est.Base)
	fmt.Printf("After efficiency:  %.0f\n", est.Adjusted)
	fmt.Printf("Memory ceiling:    %.0f\n", est.MemoryLimit)
	fmt.Printf("CPU ceiling:       %.0f\n", est.CPULimit)
	fmt.Printf("Supported users:   %.0f\n", est.Final)
	fmt.Printf("Bottleneck:        %s\n", est.Bottleneck)
}
