// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sampler synthesizes metric observations for fitness checks.
//
// Each Generate call owns its pseudo-random generator: there is no
// package-level state shared between calls, so checks running in
// parallel cannot perturb each other's draws. Calls are
// non-deterministic by default and reproducible with WithSeed.
package sampler

import (
	"fmt"
	"math/rand/v2"
)

// Sample values produced by the bernoulli-failure distribution. A trial
// either fails (the sentinel) or succeeds; failure_rate reductions count
// the sentinel.
const (
	FailureSample = 1.0
	SuccessSample = 0.0
)

// GaussianFloor is the minimum value a gaussian-clamped draw can take.
// Latency-style metrics cannot be non-positive, so draws below the floor
// are raised to it.
const GaussianFloor = 1.0

// Distribution selects the statistical model behind a Generate call.
type Distribution int

const (
	// BernoulliFailure models independent binary health-check trials.
	// Each trial fails with probability Params.P.
	BernoulliFailure Distribution = iota

	// GaussianClamped models a normal distribution with Params.Mean and
	// Params.StdDev, floored at GaussianFloor.
	GaussianClamped
)

// String returns the configuration-file spelling of the distribution.
func (d Distribution) String() string {
	switch d {
	case BernoulliFailure:
		return "bernoulli-failure"
	case GaussianClamped:
		return "gaussian-clamped"
	default:
		return "unknown"
	}
}

// ParseDistribution converts a configuration string to a Distribution.
func ParseDistribution(s string) (Distribution, error) {
	switch s {
	case "bernoulli-failure":
		return BernoulliFailure, nil
	case "gaussian-clamped":
		return GaussianClamped, nil
	default:
		return 0, fmt.Errorf("%w: unknown distribution %q", ErrInvalidParameters, s)
	}
}

// Params carries the distribution-specific inputs for a Generate call.
// BernoulliFailure reads P; GaussianClamped reads Mean and StdDev.
type Params struct {
	// P is the per-trial failure probability, in [0, 1].
	P float64 `json:"p" yaml:"p"`

	// Mean is the center of the gaussian draw, in the metric's unit.
	Mean float64 `json:"mean" yaml:"mean"`

	// StdDev is the spread of the gaussian draw. Zero produces a
	// constant series at max(Mean, GaussianFloor).
	StdDev float64 `json:"stddev" yaml:"stddev"`
}

// Option adjusts a single Generate call.
type Option func(*genOptions)

type genOptions struct {
	seed   uint64
	seeded bool
}

// WithSeed pins the generator seed so the produced SampleSet is
// reproducible. Two calls with identical distribution, count, params,
// and seed return identical samples.
func WithSeed(seed uint64) Option {
	return func(o *genOptions) {
		o.seed = seed
		o.seeded = true
	}
}

// SampleSet is an ordered, fixed-size series of observations plus the
// provenance that produced it. It is immutable after generation;
// Values returns a copy.
type SampleSet struct {
	values []float64
	dist   Distribution
	params Params
	seed   uint64
	seeded bool
}

// Len returns the number of samples.
func (s *SampleSet) Len() int { return len(s.values) }

// At returns the i-th sample in generation order.
func (s *SampleSet) At(i int) float64 { return s.values[i] }

// Values returns a copy of the samples in generation order.
func (s *SampleSet) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// Distribution reports the model that generated the set.
func (s *SampleSet) Distribution() Distribution { return s.dist }

// Params reports the inputs that generated the set.
func (s *SampleSet) Params() Params { return s.params }

// Seed reports the pinned seed, if the call was seeded.
func (s *SampleSet) Seed() (uint64, bool) { return s.seed, s.seeded }

// Generate produces count samples from the given distribution.
//
// Validation failures return ErrInvalidParameters: count must be
// positive, bernoulli-failure requires P in [0, 1], and
// gaussian-clamped requires a non-negative StdDev. The call seeds its
// own generator; pass WithSeed for reproducible output.
func Generate(dist Distribution, count int, params Params, opts ...Option) (*SampleSet, error) {
	var o genOptions
	for _, opt := range opts {
		opt(&o)
	}

	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive, got %d", ErrInvalidParameters, count)
	}

	rng := newGenerator(o)

	values := make([]float64, count)
	switch dist {
	case BernoulliFailure:
		if params.P < 0 || params.P > 1 {
			return nil, fmt.Errorf("%w: p must be within [0, 1], got %g", ErrInvalidParameters, params.P)
		}
		for i := range values {
			if rng.Float64() < params.P {
				values[i] = FailureSample
			} else {
				values[i] = SuccessSample
			}
		}

	case GaussianClamped:
		if params.StdDev < 0 {
			return nil, fmt.Errorf("%w: stddev must be non-negative, got %g", ErrInvalidParameters, params.StdDev)
		}
		for i := range values {
			v := params.Mean + rng.NormFloat64()*params.StdDev
			if v < GaussianFloor {
				v = GaussianFloor
			}
			values[i] = v
		}

	default:
		return nil, fmt.Errorf("%w: unknown distribution %d", ErrInvalidParameters, int(dist))
	}

	return &SampleSet{
		values: values,
		dist:   dist,
		params: params,
		seed:   o.seed,
		seeded: o.seeded,
	}, nil
}

// newGenerator builds the call-local generator. Unseeded calls derive
// their seed words from the auto-seeded global source, which keeps the
// default path non-deterministic without sharing generator state
// between calls.
func newGenerator(o genOptions) *rand.Rand {
	if o.seeded {
		return rand.New(rand.NewPCG(o.seed, o.seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
