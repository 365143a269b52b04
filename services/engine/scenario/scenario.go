// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scenario defines the declarative gate configuration format.
//
// A scenario file names the fitness functions of a release gate, their
// thresholds, and how each measurement is produced. The same document
// shape is accepted as YAML from disk and as JSON over the HTTP API.
package scenario

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"golang.org/x/mod/semver"

	"github.com/AleutianAI/fitgate/pkg/validation"
	"github.com/AleutianAI/fitgate/services/engine/capacity"
)

// =============================================================================
// Limits
// =============================================================================

const (
	// MaxChecks is the maximum number of checks in one scenario.
	// Bounds report size and per-run goroutine count.
	MaxChecks = 64

	// MaxScenarioBytes is the maximum size of a scenario document read
	// from disk or over HTTP.
	MaxScenarioBytes = 1 * 1024 * 1024 // 1MB
)

// Check kinds accepted by the "kind" field.
const (
	KindUptime      = "uptime"
	KindLatency     = "latency"
	KindScalability = "scalability"
	KindStatic      = "static"
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// scenarioValidate is the validator instance for scenario documents.
// Initialized in init() with custom validators.
var scenarioValidate *validator.Validate

func init() {
	scenarioValidate = validator.New()

	_ = scenarioValidate.RegisterValidation("slug", validateSlug)
	_ = scenarioValidate.RegisterValidation("semver", validateSemver)
}

// validateSlug validates that a field is a safe identifier. Scenario IDs
// and check names end up in file paths, log lines, and metric labels, so
// the shared naming rules apply.
func validateSlug(fl validator.FieldLevel) bool {
	return validation.ValidateName(fl.Field().String()) == nil
}

// validateSemver validates that a field is a semantic version with the
// leading "v" (v1, v1.2, v1.2.3).
func validateSemver(fl validator.FieldLevel) bool {
	return semver.IsValid(fl.Field().String())
}

// =============================================================================
// Document Types
// =============================================================================

// Metadata identifies a scenario document.
type Metadata struct {
	ID          string `yaml:"id" json:"id" validate:"required,slug"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
	Author      string `yaml:"author" json:"author"`
	Created     string `yaml:"created" json:"created"`
}

// ThresholdConfig is the serialized form of a verdict threshold.
type ThresholdConfig struct {
	Target     float64 `yaml:"target" json:"target"`
	Comparison string  `yaml:"comparison" json:"comparison" validate:"required,oneof=at_least at_most"`
}

// SamplingConfig tunes how a simulated check draws its measurements.
// Zero-valued fields fall back to the reference defaults when
// EnsureDefaults runs.
type SamplingConfig struct {
	// Trials is the probe count for uptime checks.
	Trials int `yaml:"trials,omitempty" json:"trials,omitempty" validate:"gte=0"`

	// FailureProbability is the per-probe failure chance for uptime
	// checks.
	FailureProbability float64 `yaml:"failure_probability" json:"failure_probability" validate:"gte=0,lte=1"`

	// Samples is the draw count for latency checks.
	Samples int `yaml:"samples,omitempty" json:"samples,omitempty" validate:"gte=0"`

	// Mean and StdDev shape the latency distribution in milliseconds.
	Mean   float64 `yaml:"mean,omitempty" json:"mean,omitempty" validate:"gte=0"`
	StdDev float64 `yaml:"stddev,omitempty" json:"stddev,omitempty" validate:"gte=0"`

	// Seed pins the draw sequence for reproducible runs.
	Seed *uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// CheckConfig declares one fitness function.
//
// # Validation
//
// Beyond the field tags, kind-specific rules apply: static checks
// require "value", latency checks may set "reduction" to mean, max, or
// pNN, and capacity parameters are only honored on scalability checks.
type CheckConfig struct {
	Name      string               `yaml:"name" json:"name" validate:"required,slug"`
	Kind      string               `yaml:"kind" json:"kind" validate:"required,oneof=uptime latency scalability static"`
	Threshold ThresholdConfig      `yaml:"threshold" json:"threshold" validate:"required"`
	Reduction string               `yaml:"reduction,omitempty" json:"reduction,omitempty"`
	Sampling  *SamplingConfig      `yaml:"sampling,omitempty" json:"sampling,omitempty"`
	Capacity  *capacity.Parameters `yaml:"capacity,omitempty" json:"capacity,omitempty"`
	Value     *float64             `yaml:"value,omitempty" json:"value,omitempty"`
	Unit      string               `yaml:"unit,omitempty" json:"unit,omitempty"`
}

// ReportConfig selects how a gate decision is rendered.
type ReportConfig struct {
	// Format is console, markdown, or json. Default: console.
	Format string `yaml:"format" json:"format" validate:"omitempty,oneof=console markdown json"`

	// Output is a file path, or empty for stdout.
	Output string `yaml:"output,omitempty" json:"output,omitempty"`
}

// Scenario is a full gate configuration document.
//
// # Description
//
// A scenario binds an identity, a minimum harness version, an ordered
// list of checks, and report preferences. Check order is preserved all
// the way into the rendered report.
type Scenario struct {
	Metadata Metadata `yaml:"metadata" json:"metadata"`

	Harness struct {
		// MinVersion is the lowest harness version that understands
		// this document, e.g. v0.3.0.
		MinVersion string `yaml:"min_version,omitempty" json:"min_version,omitempty" validate:"omitempty,semver"`
	} `yaml:"harness" json:"harness"`

	Checks []CheckConfig `yaml:"checks" json:"checks" validate:"required,min=1,max=64,dive"`

	Report ReportConfig `yaml:"report" json:"report"`
}

// =============================================================================
// Defaults
// =============================================================================

// Default returns the reference release gate: uptime at or above 99.9%,
// p95 latency at or below 50ms, and capacity for at least 200k
// concurrent users.
func Default() *Scenario {
	var s Scenario
	s.Metadata = Metadata{
		ID:          "default_release_gate",
		Version:     "1",
		Description: "Reference fitness functions for release gating",
		Author:      "fitgate",
	}
	s.Harness.MinVersion = "v0.1.0"
	s.Checks = []CheckConfig{
		{
			Name:      "service_uptime",
			Kind:      KindUptime,
			Threshold: ThresholdConfig{Target: 99.9, Comparison: "at_least"},
			Sampling:  &SamplingConfig{Trials: 1440},
		},
		{
			Name:      "p95_latency",
			Kind:      KindLatency,
			Threshold: ThresholdConfig{Target: 50, Comparison: "at_most"},
			Reduction: "p95",
			Sampling:  &SamplingConfig{Samples: 5000, Mean: 35, StdDev: 6},
		},
		{
			Name:      "concurrent_capacity",
			Kind:      KindScalability,
			Threshold: ThresholdConfig{Target: 200000, Comparison: "at_least"},
		},
	}
	s.EnsureDefaults()
	return &s
}

// EnsureDefaults populates optional fields with the reference defaults.
//
// Zero-valued sampling fields become the reference distribution for the
// check kind, a missing capacity section becomes the reference
// architecture, and the report format falls back to console.
func (s *Scenario) EnsureDefaults() {
	if s.Metadata.Version == "" {
		s.Metadata.Version = "1"
	}
	if s.Report.Format == "" {
		s.Report.Format = "console"
	}
	for i := range s.Checks {
		s.Checks[i].ensureDefaults()
	}
}

func (c *CheckConfig) ensureDefaults() {
	switch c.Kind {
	case KindUptime:
		if c.Sampling == nil {
			c.Sampling = &SamplingConfig{}
		}
		if c.Sampling.Trials == 0 {
			c.Sampling.Trials = 1440
		}
	case KindLatency:
		if c.Sampling == nil {
			c.Sampling = &SamplingConfig{}
		}
		if c.Sampling.Samples == 0 {
			c.Sampling.Samples = 5000
		}
		if c.Sampling.Mean == 0 {
			c.Sampling.Mean = 35
		}
		if c.Sampling.StdDev == 0 {
			c.Sampling.StdDev = 6
		}
		if c.Reduction == "" {
			c.Reduction = "p95"
		}
	case KindScalability:
		if c.Capacity == nil {
			params := capacity.DefaultParameters()
			c.Capacity = &params
			return
		}
		// The architecture fields are the scenario author's claim and
		// stay required; only the planning constants default.
		if c.Capacity.BytesPerConnection == 0 {
			c.Capacity.BytesPerConnection = capacity.DefaultBytesPerConnection
		}
		if c.Capacity.ConnectionsPerCore == 0 {
			c.Capacity.ConnectionsPerCore = capacity.DefaultConnectionsPerCore
		}
	}
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks the document against the schema and the kind-specific
// rules. All violations wrap ErrInvalidScenario.
func (s *Scenario) Validate() error {
	if err := scenarioValidate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}

	seen := make(map[string]bool, len(s.Checks))
	for i := range s.Checks {
		c := &s.Checks[i]
		if seen[c.Name] {
			return fmt.Errorf("%w: duplicate check name %q", ErrInvalidScenario, c.Name)
		}
		seen[c.Name] = true

		if err := c.validateKind(); err != nil {
			return fmt.Errorf("%w: check %q: %w", ErrInvalidScenario, c.Name, err)
		}
	}
	return nil
}

// validateKind enforces the rules the field tags cannot express.
func (c *CheckConfig) validateKind() error {
	switch c.Kind {
	case KindStatic:
		if c.Value == nil {
			return fmt.Errorf("static checks require a value")
		}
	case KindLatency:
		if c.Reduction == "failure_rate" {
			return fmt.Errorf("failure_rate is not a latency reduction")
		}
	case KindScalability:
		if c.Capacity != nil {
			if err := c.Capacity.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// SupportedBy reports whether a harness at the given version can run
// this scenario.
func (s *Scenario) SupportedBy(version string) error {
	if s.Harness.MinVersion == "" {
		return nil
	}
	if !semver.IsValid(version) {
		return fmt.Errorf("%w: harness version %q is not semantic", ErrUnsupportedHarness, version)
	}
	if semver.Compare(version, s.Harness.MinVersion) < 0 {
		return fmt.Errorf("%w: need %s, running %s", ErrUnsupportedHarness, s.Harness.MinVersion, version)
	}
	return nil
}
