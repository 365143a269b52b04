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

import (
	"context"
	"fmt"

	"github.com/AleutianAI/fitgate/services/engine/capacity"
	"github.com/AleutianAI/fitgate/services/engine/sampler"
	"github.com/AleutianAI/fitgate/services/engine/stats"
)

// Default names for the built-in checks.
const (
	DefaultUptimeName      = "service_uptime"
	DefaultLatencyName     = "p95_latency"
	DefaultScalabilityName = "concurrent_capacity"
)

// ---- Uptime ----

// UptimeConfig configures an availability check backed by bernoulli
// failure trials.
type UptimeConfig struct {
	// Trials is the number of simulated probes. The default models one
	// probe per minute over a day.
	Trials int

	// FailureProbability is the chance any single probe fails. The
	// default of 0 models an architecture with no observed outages;
	// scenarios raise it to exercise degraded conditions.
	FailureProbability float64

	// Seed pins the trial sequence when set. Leave nil for an
	// independent draw per evaluation.
	Seed *uint64

	// Threshold is the uptime bar in percent.
	Threshold Threshold
}

// DefaultUptimeConfig returns the reference availability check:
// 1440 trials against a 99.9% floor.
func DefaultUptimeConfig() UptimeConfig {
	return UptimeConfig{
		Trials:             1440,
		FailureProbability: 0,
		Threshold:          Threshold{Target: 99.9, Comparison: AtLeast},
	}
}

// UptimeCheck measures availability as the complement of the simulated
// failure rate, expressed in percent.
type UptimeCheck struct {
	name string
	cfg  UptimeConfig
}

// NewUptimeCheck builds an uptime check. An empty name falls back to
// DefaultUptimeName.
func NewUptimeCheck(name string, cfg UptimeConfig) *UptimeCheck {
	if name == "" {
		name = DefaultUptimeName
	}
	return &UptimeCheck{name: name, cfg: cfg}
}

// Name returns the check identifier.
func (c *UptimeCheck) Name() string { return c.name }

// Evaluate draws a fresh set of failure trials and compares the
// implied uptime percentage against the threshold.
func (c *UptimeCheck) Evaluate(ctx context.Context) (Verdict, error) {
	if ctx == nil {
		return Verdict{}, fmt.Errorf("%w: nil context", ErrEvaluationFailed)
	}
	if err := ctx.Err(); err != nil {
		return Verdict{}, err
	}

	set, err := sampler.Generate(
		sampler.BernoulliFailure,
		c.cfg.Trials,
		sampler.Params{P: c.cfg.FailureProbability},
		seedOptions(c.cfg.Seed)...,
	)
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %s: %w", ErrEvaluationFailed, c.name, err)
	}

	rate, err := stats.Reduce(set, stats.Reduction{Kind: stats.KindFailureRate})
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %s: %w", ErrEvaluationFailed, c.name, err)
	}

	uptime := (1 - rate) * 100
	return NewVerdict(c.name, uptime, "%", c.cfg.Threshold), nil
}

// ---- Latency ----

// LatencyConfig configures a latency check backed by clamped gaussian
// samples, reduced to a single representative value.
type LatencyConfig struct {
	// Samples is the number of simulated request latencies per trial.
	Samples int

	// Mean and StdDev describe the latency distribution in
	// milliseconds. Draws below 1ms clamp to the sampler floor.
	Mean   float64
	StdDev float64

	// Reduction collapses the sample set, p95 by default.
	Reduction stats.Reduction

	// Seed pins the sample sequence when set.
	Seed *uint64

	// Threshold is the latency ceiling in milliseconds.
	Threshold Threshold
}

// DefaultLatencyConfig returns the reference latency check: 5000
// samples of a 35ms +/- 6ms distribution, p95 under 50ms.
func DefaultLatencyConfig() LatencyConfig {
	return LatencyConfig{
		Samples:   5000,
		Mean:      35,
		StdDev:    6,
		Reduction: stats.Reduction{Kind: stats.KindPercentile, Percentile: 95},
		Threshold: Threshold{Target: 50, Comparison: AtMost},
	}
}

// LatencyCheck measures a latency distribution reduced to one value,
// in milliseconds.
type LatencyCheck struct {
	name string
	cfg  LatencyConfig
}

// NewLatencyCheck builds a latency check. An empty name falls back to
// DefaultLatencyName.
func NewLatencyCheck(name string, cfg LatencyConfig) *LatencyCheck {
	if name == "" {
		name = DefaultLatencyName
	}
	return &LatencyCheck{name: name, cfg: cfg}
}

// Name returns the check identifier.
func (c *LatencyCheck) Name() string { return c.name }

// Evaluate draws a fresh latency sample set, applies the configured
// reduction, and compares the result against the threshold.
func (c *LatencyCheck) Evaluate(ctx context.Context) (Verdict, error) {
	if ctx == nil {
		return Verdict{}, fmt.Errorf("%w: nil context", ErrEvaluationFailed)
	}
	if err := ctx.Err(); err != nil {
		return Verdict{}, err
	}

	set, err := sampler.Generate(
		sampler.GaussianClamped,
		c.cfg.Samples,
		sampler.Params{Mean: c.cfg.Mean, StdDev: c.cfg.StdDev},
		seedOptions(c.cfg.Seed)...,
	)
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %s: %w", ErrEvaluationFailed, c.name, err)
	}

	actual, err := stats.Reduce(set, c.cfg.Reduction)
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %s: %w", ErrEvaluationFailed, c.name, err)
	}

	return NewVerdict(c.name, actual, "ms", c.cfg.Threshold), nil
}

// ---- Scalability ----

// ScalabilityConfig configures a capacity check backed by the
// deterministic connection capacity model.
type ScalabilityConfig struct {
	// Capacity holds the architecture parameters fed to the model.
	Capacity capacity.Parameters

	// Threshold is the concurrent user floor.
	Threshold Threshold
}

// DefaultScalabilityConfig returns the reference scalability check:
// the default architecture against a 200k concurrent user floor.
func DefaultScalabilityConfig() ScalabilityConfig {
	return ScalabilityConfig{
		Capacity:  capacity.DefaultParameters(),
		Threshold: Threshold{Target: 200000, Comparison: AtLeast},
	}
}

// ScalabilityCheck measures supportable concurrent users from the
// capacity model. Evaluations are deterministic for fixed parameters.
type ScalabilityCheck struct {
	name string
	cfg  ScalabilityConfig
}

// NewScalabilityCheck builds a scalability check. An empty name falls
// back to DefaultScalabilityName.
func NewScalabilityCheck(name string, cfg ScalabilityConfig) *ScalabilityCheck {
	if name == "" {
		name = DefaultScalabilityName
	}
	return &ScalabilityCheck{name: name, cfg: cfg}
}

// Name returns the check identifier.
func (c *ScalabilityCheck) Name() string { return c.name }

// Evaluate runs the capacity model and compares the binding limit
// against the threshold.
func (c *ScalabilityCheck) Evaluate(ctx context.Context) (Verdict, error) {
	if ctx == nil {
		return Verdict{}, fmt.Errorf("%w: nil context", ErrEvaluationFailed)
	}
	if err := ctx.Err(); err != nil {
		return Verdict{}, err
	}

	est, err := capacity.Compute(c.cfg.Capacity)
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %s: %w", ErrEvaluationFailed, c.name, err)
	}

	return NewVerdict(c.name, est.Final, "users", c.cfg.Threshold), nil
}

// ---- Static ----

// StaticCheck reports a fixed, externally supplied measurement. It
// exists for wiring real numbers (a load test result, a billing
// figure) into a gate next to the simulated checks.
type StaticCheck struct {
	name      string
	actual    float64
	unit      string
	threshold Threshold
}

// NewStaticCheck builds a static check around a known value.
func NewStaticCheck(name string, actual float64, unit string, th Threshold) *StaticCheck {
	return &StaticCheck{name: name, actual: actual, unit: unit, threshold: th}
}

// Name returns the check identifier.
func (c *StaticCheck) Name() string { return c.name }

// Evaluate compares the fixed value against the threshold.
func (c *StaticCheck) Evaluate(ctx context.Context) (Verdict, error) {
	if ctx == nil {
		return Verdict{}, fmt.Errorf("%w: nil context", ErrEvaluationFailed)
	}
	return NewVerdict(c.name, c.actual, c.unit, c.threshold), nil
}

// seedOptions converts an optional pinned seed into sampler options.
func seedOptions(seed *uint64) []sampler.Option {
	if seed == nil {
		return nil
	}
	return []sampler.Option{sampler.WithSeed(*seed)}
}
