// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package fitness

import "errors"

// Sentinel errors for fitness evaluation.
var (
	// ErrEvaluationFailed is returned when the measurement behind a
	// check could not be produced (bad sampling parameters, capacity
	// model rejection). It is distinct from a failing verdict: a
	// failing check measured the metric and found it short of the bar,
	// an errored check could not measure at all.
	ErrEvaluationFailed = errors.New("fitness evaluation failed")

	// ErrInvalidThreshold is returned when a threshold carries an
	// unrecognized comparison direction.
	ErrInvalidThreshold = errors.New("invalid threshold")
)
