// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sampler

import "errors"

// Sentinel errors for sample generation.
var (
	// ErrInvalidParameters is returned when a generation request is
	// malformed: non-positive count, a probability outside [0, 1], a
	// negative standard deviation, or an unrecognized distribution.
	// The wrapped message names the offending field and value.
	ErrInvalidParameters = errors.New("invalid sampler parameters")
)
