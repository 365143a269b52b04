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
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/AleutianAI/fitgate/pkg/ux"
	"github.com/AleutianAI/fitgate/pkg/validation"
	"github.com/AleutianAI/fitgate/services/engine/scenario"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// runInit executes the init command.
//
// # Description
//
// Writes a starter scenario to --out. On a terminal the identity and
// thresholds are collected through an interactive form; otherwise the
// reference gate is written as-is, ready to edit.
//
// # Exit Codes
//
//   - 0: Scenario written, or the user declined at the confirm step
//   - 2: Output exists without --force, the form was aborted, or the write failed
func runInit(cmd *cobra.Command, _ []string) {
	os.Exit(scaffoldScenario())
}

// scaffoldScenario builds and writes the starter document, returning
// the exit code.
func scaffoldScenario() int {
	// 1. Refuse to clobber silently
	if _, err := os.Stat(initOut); err == nil && !initForce {
		OutputError(false, "scenario already exists",
			fmt.Errorf("%s (use --force to overwrite)", initOut))
		return CLIExitError
	}

	// 2. Start from the reference gate
	scn := scenario.Default()
	scn.Metadata.Created = time.Now().Format("2006-01-02")

	// 3. Tune it interactively when someone is there to answer
	if ux.IsInteractive() {
		confirmed, err := runScaffoldForm(scn)
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				ux.Warning("scaffold aborted, nothing written")
				return CLIExitError
			}
			OutputError(false, "scaffold form failed", err)
			return CLIExitError
		}
		if !confirmed {
			ux.Muted("nothing written")
			return CLIExitApproved
		}
	}

	// 4. Write the document
	data, err := scn.Marshal()
	if err != nil {
		OutputError(false, "cannot render scenario", err)
		return CLIExitError
	}
	if err := os.WriteFile(initOut, data, 0o644); err != nil {
		OutputError(false, "cannot write scenario", err)
		return CLIExitError
	}

	ux.Success("wrote " + initOut)
	ux.Muted("run it with: fitgate evaluate --scenario " + initOut)
	return CLIExitApproved
}

// runScaffoldForm collects scenario identity and thresholds in place.
// The bool reports whether the user confirmed the write.
func runScaffoldForm(scn *scenario.Scenario) (bool, error) {
	var (
		id          = scn.Metadata.ID
		description = scn.Metadata.Description
		author      = scn.Metadata.Author
		uptime      = formatTarget(scn.Checks[0].Threshold.Target)
		p95         = formatTarget(scn.Checks[1].Threshold.Target)
		users       = formatTarget(scn.Checks[2].Threshold.Target)
		format      = scn.Report.Format
		confirmed   = true
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Scenario ID").
				Description("Lowercase letters, digits, underscores, or hyphens").
				Value(&id).
				Validate(validation.ValidateName),
			huh.NewInput().
				Title("Description").
				Value(&description),
			huh.NewInput().
				Title("Author").
				Value(&author),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Minimum uptime (%)").
				Value(&uptime).
				Validate(validatePercent),
			huh.NewInput().
				Title("Maximum p95 latency (ms)").
				Value(&p95).
				Validate(validatePositive),
			huh.NewInput().
				Title("Minimum concurrent users").
				Value(&users).
				Validate(validatePositive),
			huh.NewSelect[string]().
				Title("Report format").
				Options(
					huh.NewOption("Console", "console"),
					huh.NewOption("Markdown", "markdown"),
					huh.NewOption("JSON", "json"),
				).
				Value(&format),
			huh.NewConfirm().
				Title("Write the scenario?").
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		return false, err
	}
	if !confirmed {
		return false, nil
	}

	scn.Metadata.ID = id
	scn.Metadata.Description = description
	scn.Metadata.Author = author

	// The field validators guarantee these parse.
	scn.Checks[0].Threshold.Target, _ = strconv.ParseFloat(uptime, 64)
	scn.Checks[1].Threshold.Target, _ = strconv.ParseFloat(p95, 64)
	scn.Checks[2].Threshold.Target, _ = strconv.ParseFloat(users, 64)
	scn.Report.Format = format
	return true, nil
}

// formatTarget renders a threshold for editing in a form field.
func formatTarget(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// validatePercent accepts a number in (0, 100].
func validatePercent(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errors.New("enter a number")
	}
	if f <= 0 || f > 100 {
		return errors.New("enter a percentage in (0, 100]")
	}
	return nil
}

// validatePositive accepts any positive number.
func validatePositive(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errors.New("enter a number")
	}
	if f <= 0 {
		return errors.New("enter a positive number")
	}
	return nil
}
