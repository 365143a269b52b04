// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package version holds the harness version stamped into the binary.
package version

import "fmt"

// Build metadata. Overridden at release time via
//
//	go build -ldflags "-X github.com/AleutianAI/fitgate/pkg/version.Version=v0.2.0 ..."
//
// Version keeps a "v" prefix so it compares cleanly against scenario
// min_version constraints with golang.org/x/mod/semver.
var (
	Version = "v0.1.0"
	Commit  = "none"
	Date    = "unknown"
)

// String returns a single-line version banner for --version output and
// startup logs.
func String() string {
	return fmt.Sprintf("fitgate %s (commit %s, built %s)", Version, Commit, Date)
}
