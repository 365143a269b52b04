// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package fitness defines architecture fitness functions: named checks
// that measure one quality attribute and compare it against a fixed
// threshold, yielding a pass/fail verdict.
//
// # Design Principles
//
//   - One evaluation is one self-contained trial. A check draws its own
//     samples (or computes its own estimate) on every call and never
//     retries a miss.
//   - A verdict is only produced when the measurement succeeded. If the
//     underlying model rejects its inputs the check returns an error
//     wrapping ErrEvaluationFailed and no verdict at all.
//   - Verdict.Pass is derived from the threshold at construction time
//     and is never set independently of Actual and Threshold.
//
// # Thread Safety
//
// Checks hold only immutable configuration after construction, so a
// single check value may be evaluated from multiple goroutines.
package fitness

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Comparison is the direction a measured value is compared against a
// threshold target.
type Comparison int

const (
	// AtLeast passes when the actual value meets or exceeds the target
	// (throughput, availability, capacity).
	AtLeast Comparison = iota

	// AtMost passes when the actual value is at or below the target
	// (latency, error rate, cost).
	AtMost
)

// String returns the wire name of the comparison.
func (c Comparison) String() string {
	switch c {
	case AtLeast:
		return "at_least"
	case AtMost:
		return "at_most"
	default:
		return "unknown"
	}
}

// Symbol returns the comparison operator used in rendered reports.
func (c Comparison) Symbol() string {
	if c == AtMost {
		return "<="
	}
	return ">="
}

// ParseComparison converts a wire name into a Comparison.
func ParseComparison(s string) (Comparison, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "at_least":
		return AtLeast, nil
	case "at_most":
		return AtMost, nil
	default:
		return AtLeast, fmt.Errorf("%w: unknown comparison %q", ErrInvalidThreshold, s)
	}
}

// MarshalJSON encodes the comparison as its wire name.
func (c Comparison) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a comparison from its wire name.
func (c *Comparison) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseComparison(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Threshold is the bar a measured value must clear.
type Threshold struct {
	// Target is the boundary value. The boundary itself always passes:
	// at_least admits actual == target, and so does at_most.
	Target float64 `json:"target" yaml:"target"`

	// Comparison is the direction of the test.
	Comparison Comparison `json:"comparison" yaml:"comparison"`
}

// Met reports whether actual clears the threshold.
func (t Threshold) Met(actual float64) bool {
	if t.Comparison == AtMost {
		return actual <= t.Target
	}
	return actual >= t.Target
}

// String renders the threshold as an operator and target, e.g. ">= 99.9".
func (t Threshold) String() string {
	return fmt.Sprintf("%s %g", t.Comparison.Symbol(), t.Target)
}

// Verdict is the outcome of one fitness function evaluation.
type Verdict struct {
	// Name identifies the fitness function that produced this verdict.
	Name string `json:"name"`

	// Actual is the measured value.
	Actual float64 `json:"actual"`

	// Unit is the display unit of Actual ("%", "ms", "users"). It is
	// informational only and never participates in the comparison.
	Unit string `json:"unit,omitempty"`

	// Threshold is the bar Actual was compared against.
	Threshold Threshold `json:"threshold"`

	// Pass records whether Actual met Threshold.
	Pass bool `json:"pass"`
}

// NewVerdict builds a verdict, deriving Pass from the threshold.
func NewVerdict(name string, actual float64, unit string, th Threshold) Verdict {
	return Verdict{
		Name:      name,
		Actual:    actual,
		Unit:      unit,
		Threshold: th,
		Pass:      th.Met(actual),
	}
}

// FitnessFunction is a single releasable-quality check.
//
// Evaluate must be called with a non-nil context. Implementations
// return either a verdict or an error wrapping ErrEvaluationFailed,
// never both.
type FitnessFunction interface {
	// Name returns the stable identifier of the check, used in
	// verdicts, reports, and logs.
	Name() string

	// Evaluate runs one trial of the check.
	Evaluate(ctx context.Context) (Verdict, error)
}
