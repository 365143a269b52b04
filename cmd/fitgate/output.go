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
	"encoding/json"
	"fmt"
	"os"

	"github.com/AleutianAI/fitgate/pkg/version"
	"github.com/AleutianAI/fitgate/services/engine/capacity"
	"github.com/AleutianAI/fitgate/services/engine/scenario"
)

// Exit codes for CLI commands. CI pipelines branch on these, so the
// values are part of the public contract.
const (
	CLIExitApproved = 0 // Release approved, or the command completed cleanly
	CLIExitBlocked  = 1 // Release blocked: at least one check failed or errored
	CLIExitError    = 2 // Harness error: bad configuration or a run that could not finish
)

// CommandResult wraps JSON command output with harness metadata, so
// scripts consuming --json output can tell which harness produced it.
type CommandResult struct {
	Harness string      `json:"harness"`
	Command string      `json:"command,omitempty"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OutputJSON writes structured data as JSON to stdout.
//
// # Inputs
//
//   - data: The data to encode. Must be JSON-serializable.
//   - compact: If true, output without indentation.
//
// # Outputs
//
//   - error: Non-nil if encoding fails.
func OutputJSON(data interface{}, compact bool) error {
	encoder := json.NewEncoder(os.Stdout)
	if !compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// OutputError writes an error in the appropriate format.
//
// JSON mode emits a CommandResult envelope on stdout so scripted
// callers see exactly one JSON document per invocation; otherwise the
// error goes to stderr.
func OutputError(jsonMode bool, msg string, err error) {
	if jsonMode {
		result := CommandResult{
			Harness: version.Version,
			Success: false,
			Error:   fmt.Sprintf("%s: %v", msg, err),
		}
		_ = OutputJSON(result, false)
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
}

// ValidateResult holds scenario validation output.
type ValidateResult struct {
	Valid      bool   `json:"valid"`
	ScenarioID string `json:"scenario_id,omitempty"`
	Checks     int    `json:"checks,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CapacityResult pairs the effective parameters with their estimate,
// mirroring the /v1/capacity/estimate response shape.
type CapacityResult struct {
	Parameters capacity.Parameters `json:"parameters"`
	Estimate   capacity.Estimate   `json:"estimate"`
}

// CheckCatalogEntry describes one built-in check kind. Reference is
// the reference configuration from the default gate, nil for kinds
// that have no reference check (static).
type CheckCatalogEntry struct {
	Kind        string                `json:"kind"`
	Description string                `json:"description"`
	Reference   *scenario.CheckConfig `json:"reference,omitempty"`
}
