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

	"github.com/AleutianAI/fitgate/pkg/ux"
	"github.com/AleutianAI/fitgate/pkg/version"
	"github.com/spf13/cobra"
)

// runValidate executes the validate command.
//
// # Exit Codes
//
//   - 0: The scenario is well formed and this harness can run it
//   - 2: The scenario is invalid, unreadable, or needs a newer harness
func runValidate(cmd *cobra.Command, args []string) {
	os.Exit(validateScenario(args[0]))
}

// validateScenario loads and vets one scenario document, returning the
// exit code. An invalid scenario is a configuration error, not a
// blocked release, so it exits 2 rather than 1.
func validateScenario(ref string) int {
	if ref == "" {
		OutputError(validateJSONOutput, "cannot validate", errors.New("empty scenario reference"))
		return CLIExitError
	}

	scn, err := loadScenario(ref)
	if err == nil {
		err = scn.SupportedBy(version.Version)
	}
	if err != nil {
		if validateJSONOutput {
			_ = OutputJSON(ValidateResult{Valid: false, Error: err.Error()}, false)
		} else {
			ux.Error(fmt.Sprintf("scenario is invalid: %v", err))
		}
		return CLIExitError
	}

	if validateJSONOutput {
		result := ValidateResult{Valid: true, ScenarioID: scn.Metadata.ID, Checks: len(scn.Checks)}
		if err := OutputJSON(result, false); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return CLIExitError
		}
		return CLIExitApproved
	}

	ux.Success(fmt.Sprintf("%s is valid (%d checks)", scn.Metadata.ID, len(scn.Checks)))
	return CLIExitApproved
}
