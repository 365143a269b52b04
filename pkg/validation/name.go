// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for user-provided inputs that are used in
// file paths, log filenames, and metric labels. Using these validators
// prevents injection attacks (path traversal, log injection, label abuse).
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// namePattern matches valid scenario and check identifiers.
// Allows: lowercase letters, digits, underscores, hyphens
// Must start with a letter. Max length: 64 characters
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,63}$`)

// ValidateName validates a scenario or check identifier.
//
// Identifiers end up in file paths, log lines, and Prometheus label
// values, so the accepted alphabet is deliberately narrow:
//   - 1-64 characters
//   - Lowercase letters a-z (first character must be a letter)
//   - Digits 0-9
//   - Underscores (_) and hyphens (-)
//
// Returns an error if the name is invalid.
//
// Example:
//
//	if err := validation.ValidateName(check.Name); err != nil {
//	    return nil, fmt.Errorf("invalid check name: %w", err)
//	}
//	// Safe to use as a metric label
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid name format: %q (must be 1-64 lowercase alphanumeric chars, underscores, or hyphens, starting with a letter)", name)
	}

	return nil
}

// ValidateNames validates multiple identifiers.
// Returns an error listing all invalid names if any fail validation.
func ValidateNames(names []string) error {
	var invalid []string
	for _, n := range names {
		if err := ValidateName(n); err != nil {
			invalid = append(invalid, n)
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid names: %v", invalid)
	}
	return nil
}

// SanitizeName normalizes and validates an identifier.
// Returns the lowercase name if valid, or an error if invalid.
//
// Use this when you need both validation and normalization:
//
//	safeName, err := validation.SanitizeName(userInput)
//	if err != nil {
//	    return err
//	}
//	// safeName is lowercase and validated
func SanitizeName(name string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if err := ValidateName(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}
