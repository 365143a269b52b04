// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package stats

import "errors"

// Sentinel errors for statistical reductions.
var (
	// ErrEmptySampleSet is returned when a reduction is requested over
	// zero samples. There is no meaningful mean, max, or percentile of
	// nothing, and gating must never mistake absence for evidence.
	ErrEmptySampleSet = errors.New("empty sample set")

	// ErrInvalidReduction is returned for an unrecognized reduction
	// name, a percentile outside (0, 100], or a failure_rate request
	// against samples that did not come from bernoulli-failure trials.
	ErrInvalidReduction = errors.New("invalid reduction")
)
