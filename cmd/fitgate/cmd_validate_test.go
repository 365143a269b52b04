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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// badComparisonYAML returns a scenario that fails schema validation:
// "above" is not a recognized comparison.
func badComparisonYAML() string {
	return `metadata:
  id: "bad_gate"

checks:
  - name: "error_rate"
    kind: "static"
    threshold:
      target: 1.0
      comparison: "above"
    value: 0.2
`
}

// TestValidateScenario_ValidFile verifies the success path and its
// machine-readable confirmation line.
func TestValidateScenario_ValidFile(t *testing.T) {
	path := writeScenarioFile(t, staticApprovedYAML())

	out := captureStdout(t, func() {
		assert.Equal(t, CLIExitApproved, validateScenario(path))
	})
	assert.Contains(t, out, "static_release_facts is valid (1 checks)")
}

// TestValidateScenario_ValidJSON verifies the JSON result shape.
func TestValidateScenario_ValidJSON(t *testing.T) {
	validateJSONOutput = true
	defer func() { validateJSONOutput = false }()

	path := writeScenarioFile(t, staticApprovedYAML())

	out := captureStdout(t, func() {
		assert.Equal(t, CLIExitApproved, validateScenario(path))
	})

	var result ValidateResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Valid)
	assert.Equal(t, "static_release_facts", result.ScenarioID)
	assert.Equal(t, 1, result.Checks)
	assert.Empty(t, result.Error)
}

// TestValidateScenario_InvalidComparison verifies that a schema
// violation exits 2. An invalid scenario is a configuration error, not
// a blocked release.
func TestValidateScenario_InvalidComparison(t *testing.T) {
	path := writeScenarioFile(t, badComparisonYAML())

	errOut := captureStderr(t, func() {
		assert.Equal(t, CLIExitError, validateScenario(path))
	})
	assert.Contains(t, errOut, "scenario is invalid")
}

// TestValidateScenario_InvalidJSON verifies the JSON failure shape.
func TestValidateScenario_InvalidJSON(t *testing.T) {
	validateJSONOutput = true
	defer func() { validateJSONOutput = false }()

	path := writeScenarioFile(t, badComparisonYAML())

	out := captureStdout(t, func() {
		assert.Equal(t, CLIExitError, validateScenario(path))
	})

	var result ValidateResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Error)
	assert.Empty(t, result.ScenarioID)
}

// TestValidateScenario_MissingFile verifies the unreadable-file path.
func TestValidateScenario_MissingFile(t *testing.T) {
	assert.Equal(t, CLIExitError, validateScenario(filepath.Join(t.TempDir(), "missing.yaml")))
}

// TestValidateScenario_EmptyRef verifies that an empty reference is
// rejected instead of silently validating the built-in gate.
func TestValidateScenario_EmptyRef(t *testing.T) {
	assert.Equal(t, CLIExitError, validateScenario(""))
}

// TestValidateScenario_FutureHarness verifies that a version constraint
// this harness cannot meet fails validation.
func TestValidateScenario_FutureHarness(t *testing.T) {
	path := writeScenarioFile(t, futureHarnessYAML())

	assert.Equal(t, CLIExitError, validateScenario(path))
}
