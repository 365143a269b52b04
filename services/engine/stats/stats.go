// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package stats reduces sample series to the summary values fitness
// checks compare against their thresholds.
//
// The percentile convention is pinned here and nowhere else: nearest
// rank, ceil(p/100 * n) - 1, clamped to the valid index range. Different
// conventions disagree about P95 on the same data, so every consumer in
// the harness goes through this package.
package stats

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/AleutianAI/fitgate/services/engine/sampler"
)

// Kind names a reduction family.
type Kind int

const (
	KindMean Kind = iota
	KindPercentile
	KindMax
	KindFailureRate
)

// String returns the configuration spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindMean:
		return "mean"
	case KindPercentile:
		return "percentile"
	case KindMax:
		return "max"
	case KindFailureRate:
		return "failure_rate"
	default:
		return "unknown"
	}
}

// Reduction is a fully specified reduction: a kind plus, for
// percentiles, the rank parameter.
type Reduction struct {
	Kind       Kind
	Percentile float64
}

// String renders the reduction the way scenario files spell it.
func (r Reduction) String() string {
	if r.Kind == KindPercentile {
		return "p" + strconv.FormatFloat(r.Percentile, 'f', -1, 64)
	}
	return r.Kind.String()
}

// ParseReduction converts a scenario string ("mean", "max",
// "failure_rate", or "pNN" such as "p95" or "p99.9") to a Reduction.
func ParseReduction(s string) (Reduction, error) {
	lower := strings.ToLower(strings.TrimSpace(s))
	switch lower {
	case "mean":
		return Reduction{Kind: KindMean}, nil
	case "max":
		return Reduction{Kind: KindMax}, nil
	case "failure_rate":
		return Reduction{Kind: KindFailureRate}, nil
	}

	if strings.HasPrefix(lower, "p") {
		p, err := strconv.ParseFloat(lower[1:], 64)
		if err == nil && p > 0 && p <= 100 {
			return Reduction{Kind: KindPercentile, Percentile: p}, nil
		}
	}
	return Reduction{}, fmt.Errorf("%w: unrecognized reduction %q", ErrInvalidReduction, s)
}

// Mean returns the arithmetic mean of values.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptySampleSet
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

// Max returns the largest value.
func Max(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptySampleSet
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max, nil
}

// Percentile returns the nearest-rank percentile for p in (0, 100].
//
// Convention: sort ascending, take index ceil(p/100 * n) - 1, clamped
// to [0, n-1]. Percentile(values, 100) equals Max(values). The input
// slice is not modified; sorting happens on a copy.
func Percentile(values []float64, p float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptySampleSet
	}
	if p <= 0 || p > 100 {
		return 0, fmt.Errorf("%w: percentile must be in (0, 100], got %g", ErrInvalidReduction, p)
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	// The epsilon keeps mathematically integer positions (p=95 over
	// n=10000 is exactly rank 9500) from drifting up one rank through
	// float rounding.
	pos := p * float64(len(sorted)) / 100.0
	rank := int(math.Ceil(pos - 1e-9))

	idx := rank - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx], nil
}

// FailureRate returns the fraction of values equal to the
// bernoulli-failure sentinel.
func FailureRate(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptySampleSet
	}
	failures := 0
	for _, v := range values {
		if v == sampler.FailureSample {
			failures++
		}
	}
	return float64(failures) / float64(len(values)), nil
}

// StdDev returns the sample standard deviation (n-1 denominator).
// A single observation has zero spread.
func StdDev(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptySampleSet
	}
	if len(values) == 1 {
		return 0, nil
	}
	mean, _ := Mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1)), nil
}

// Reduce applies a reduction to a generated sample set.
//
// failure_rate is only meaningful for bernoulli-failure provenance and
// is rejected for other distributions; the remaining kinds apply to any
// set. Zero-length sets return ErrEmptySampleSet.
func Reduce(set *sampler.SampleSet, r Reduction) (float64, error) {
	if set == nil || set.Len() == 0 {
		return 0, ErrEmptySampleSet
	}

	values := set.Values()
	switch r.Kind {
	case KindMean:
		return Mean(values)
	case KindMax:
		return Max(values)
	case KindPercentile:
		return Percentile(values, r.Percentile)
	case KindFailureRate:
		if set.Distribution() != sampler.BernoulliFailure {
			return 0, fmt.Errorf("%w: failure_rate requires bernoulli-failure samples, got %s",
				ErrInvalidReduction, set.Distribution())
		}
		return FailureRate(values)
	default:
		return 0, fmt.Errorf("%w: unknown kind %d", ErrInvalidReduction, int(r.Kind))
	}
}
