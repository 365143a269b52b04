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
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/AleutianAI/fitgate/pkg/ux"
	"github.com/AleutianAI/fitgate/pkg/version"
	"github.com/AleutianAI/fitgate/services/engine/gate"
	"github.com/AleutianAI/fitgate/services/engine/report"
	"github.com/AleutianAI/fitgate/services/engine/scenario"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	evalScenario    string        // Scenario file or URL; empty runs the reference gate
	evalFormat      string        // Report format override
	evalOutput      string        // Report destination override
	evalSeed        uint64        // Sampling seed for reproducible runs
	evalParallelism int           // Concurrent check evaluations
	evalQuiet       bool          // Exit code only, no report
	evalTimeout     time.Duration // Wall-clock bound for the whole run
)

func init() {
	registerEvaluateFlags(evaluateCmd)
}

// registerEvaluateFlags binds the evaluate flag set onto cmd. Binding
// resets the flag variables to their defaults, so tests can carry the
// same flags on a throwaway command.
func registerEvaluateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&evalScenario, "scenario", "s", "",
		"Scenario file or URL (default: the built-in reference gate)")
	cmd.Flags().StringVar(&evalFormat, "format", "",
		"Report format: console, markdown, or json (overrides the scenario)")
	cmd.Flags().StringVarP(&evalOutput, "output", "o", "",
		"Report destination file (overrides the scenario; stdout when empty)")
	cmd.Flags().Uint64Var(&evalSeed, "seed", 0,
		"Pin the sampling seed of every simulated check for a reproducible run")
	cmd.Flags().IntVar(&evalParallelism, "parallelism", 0,
		"Concurrent check evaluations (default 4)")
	cmd.Flags().BoolVarP(&evalQuiet, "quiet", "q", false,
		"Suppress the report; the exit code alone carries the decision")
	cmd.Flags().DurationVar(&evalTimeout, "timeout", 5*time.Minute,
		"Abort the run after this long")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runEvaluate executes the evaluate command.
//
// # Exit Codes
//
//   - 0: Every fitness function passed; the release is approved
//   - 1: At least one check failed or errored; the release is blocked
//   - 2: The harness could not run (unreadable scenario, bad configuration)
func runEvaluate(cmd *cobra.Command, _ []string) {
	os.Exit(evaluateRelease(cmd))
}

// evaluateRelease runs the gate and returns the exit code. Split from
// runEvaluate so tests can drive the full flow without os.Exit.
func evaluateRelease(cmd *cobra.Command) int {
	jsonMode := evalFormat == string(report.FormatJSON)

	// 1. Resolve and vet the scenario
	scn, err := loadScenario(evalScenario)
	if err != nil {
		OutputError(jsonMode, "cannot load scenario", err)
		return CLIExitError
	}
	if err := scn.SupportedBy(version.Version); err != nil {
		OutputError(jsonMode, "scenario requires a newer harness", err)
		return CLIExitError
	}

	// 2. Apply CLI overrides
	if cmd.Flags().Changed("seed") {
		pinSeed(scn, evalSeed)
	}
	if evalFormat != "" {
		scn.Report.Format = evalFormat
	}
	if evalOutput != "" {
		scn.Report.Output = evalOutput
	}

	// 3. Build the fitness functions
	checks, err := scn.Build()
	if err != nil {
		OutputError(jsonMode, "cannot build checks", err)
		return CLIExitError
	}

	// 4. Run the gate
	opts := []gate.Option{gate.WithLogger(slog.Default())}
	if evalParallelism > 0 {
		opts = append(opts, gate.WithParallelism(evalParallelism))
	}

	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()

	var spinner *ux.Spinner
	if !evalQuiet && scn.Report.Format == string(report.FormatConsole) && ux.ShouldShowProgress() {
		spinner = ux.NewSpinner("Evaluating " + scn.Metadata.ID)
		spinner.Start()
	}

	decision, err := gate.New(checks, opts...).Run(ctx)
	if spinner != nil {
		// Plain stop; the report speaks for the outcome.
		spinner.Stop()
	}
	if err != nil {
		OutputError(jsonMode, "gate run failed", err)
		return CLIExitError
	}

	// 5. Report and exit with the decision
	if !evalQuiet {
		if err := report.New(scn, decision).Write(scn.Report); err != nil {
			OutputError(jsonMode, "cannot write report", err)
			return CLIExitError
		}
	}

	slog.Info("gate decision",
		"run_id", decision.RunID,
		"scenario", scn.Metadata.ID,
		"approved", decision.Approved,
		"duration_ms", decision.DurationMs)

	if decision.Approved {
		return CLIExitApproved
	}
	return CLIExitBlocked
}

// loadScenario resolves a scenario reference: empty means the built-in
// reference gate, http(s) references are fetched, anything else is a
// file path.
func loadScenario(ref string) (*scenario.Scenario, error) {
	switch {
	case ref == "":
		return scenario.Default(), nil
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return scenario.LoadURL(ctx, ref, nil)
	default:
		return scenario.LoadFile(ref)
	}
}

// pinSeed points every sampled check at the same seed so reruns draw
// identical measurement sequences. Checks without a sampling model
// (static, scalability) are untouched.
func pinSeed(s *scenario.Scenario, seed uint64) {
	for i := range s.Checks {
		if s.Checks[i].Sampling != nil {
			s.Checks[i].Sampling.Seed = &seed
		}
	}
}
