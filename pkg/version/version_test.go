// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package version

import (
	"strings"
	"testing"

	"golang.org/x/mod/semver"
)

func TestVersionIsSemver(t *testing.T) {
	if !semver.IsValid(Version) {
		t.Errorf("Version = %q is not valid semver", Version)
	}
}

func TestString(t *testing.T) {
	s := String()

	if !strings.HasPrefix(s, "fitgate ") {
		t.Errorf("String() = %q, want fitgate prefix", s)
	}
	if !strings.Contains(s, Version) {
		t.Errorf("String() = %q, want to contain %q", s, Version)
	}
	if !strings.Contains(s, Commit) {
		t.Errorf("String() = %q, want to contain commit %q", s, Commit)
	}
}
