// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package capacity estimates maximum supported concurrent users from
// architectural parameters. Estimate is a pure function: no randomness,
// no I/O, identical inputs give identical outputs.
package capacity

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// BytesPerGB converts the memory parameters to bytes.
const BytesPerGB = 1 << 30

// Default planning constants. These are tuned capacity-planning figures,
// not measured values; scenarios may override them.
const (
	DefaultBytesPerConnection = 45 * 1024
	DefaultConnectionsPerCore = 3000
)

// ErrInvalidParameters is returned when the architectural inputs are
// malformed: non-positive counts or limits, or an efficiency factor
// outside (0, 1].
var ErrInvalidParameters = errors.New("invalid capacity parameters")

// Parameters describes the architecture whose capacity is being
// estimated. All fields are required; the planning constants have
// package defaults via DefaultParameters.
type Parameters struct {
	// ConnectionsPerInstance is the tuned per-instance connection limit.
	ConnectionsPerInstance float64 `yaml:"connections_per_instance" json:"connections_per_instance" validate:"gt=0"`

	// InstanceCount is the number of identical instances deployed.
	InstanceCount int `yaml:"instance_count" json:"instance_count" validate:"gt=0"`

	// CPUCoresPerInstance is the core count available to one instance.
	CPUCoresPerInstance float64 `yaml:"cpu_cores_per_instance" json:"cpu_cores_per_instance" validate:"gt=0"`

	// MemoryGBPerInstance is the memory available to one instance.
	MemoryGBPerInstance float64 `yaml:"memory_gb_per_instance" json:"memory_gb_per_instance" validate:"gt=0"`

	// EfficiencyFactors are named multipliers in (0, 1] that discount
	// the raw connection capacity (connection pooling overhead,
	// sharding coordination, and so on). Every factor applies exactly
	// once.
	EfficiencyFactors map[string]float64 `yaml:"efficiency_factors" json:"efficiency_factors" validate:"dive,gt=0,lte=1"`

	// BytesPerConnection is the planning constant for per-connection
	// memory footprint.
	BytesPerConnection float64 `yaml:"bytes_per_connection" json:"bytes_per_connection" validate:"gt=0"`

	// ConnectionsPerCore is the planning constant for per-core
	// connection handling.
	ConnectionsPerCore float64 `yaml:"connections_per_core" json:"connections_per_core" validate:"gt=0"`
}

// DefaultParameters returns the reference architecture used by the
// default scalability check.
func DefaultParameters() Parameters {
	return Parameters{
		ConnectionsPerInstance: 12000,
		InstanceCount:          25,
		CPUCoresPerInstance:    6,
		MemoryGBPerInstance:    12,
		EfficiencyFactors: map[string]float64{
			"connection_pooling": 0.90,
			"database_sharding":  0.97,
		},
		BytesPerConnection: DefaultBytesPerConnection,
		ConnectionsPerCore: DefaultConnectionsPerCore,
	}
}

// Estimate is the capacity breakdown. Final is the supported
// concurrent-user count; the other fields expose the intermediate
// ceilings for reporting.
type Estimate struct {
	// Base is connections_per_instance × instance_count.
	Base float64 `json:"base" yaml:"base"`

	// Adjusted is Base discounted by every efficiency factor.
	Adjusted float64 `json:"adjusted" yaml:"adjusted"`

	// MemoryLimit is the connection count the memory budget supports.
	MemoryLimit float64 `json:"memory_limit" yaml:"memory_limit"`

	// CPULimit is the connection count the core budget supports.
	CPULimit float64 `json:"cpu_limit" yaml:"cpu_limit"`

	// Final is min(Adjusted, MemoryLimit, CPULimit): the scarcest
	// resource bounds the system.
	Final float64 `json:"final" yaml:"final"`

	// Bottleneck names the binding ceiling: "efficiency", "memory",
	// or "cpu".
	Bottleneck string `json:"bottleneck" yaml:"bottleneck"`
}

// Compute derives the capacity estimate from the parameters.
//
// The shape of the calculation is fixed:
//
//  1. base = connections_per_instance × instance_count
//  2. adjusted = base × Π(efficiency factors)
//  3. memory_limit = floor(memory_gb × instances × BytesPerGB / bytes_per_connection)
//  4. cpu_limit = cpu_cores × instances × connections_per_core
//  5. final = min(adjusted, memory_limit, cpu_limit)
func Compute(p Parameters) (Estimate, error) {
	if err := p.Validate(); err != nil {
		return Estimate{}, err
	}

	instances := float64(p.InstanceCount)
	base := p.ConnectionsPerInstance * instances

	// Factors multiply in sorted-name order so repeated estimates are
	// bit-identical regardless of map iteration order.
	names := make([]string, 0, len(p.EfficiencyFactors))
	for name := range p.EfficiencyFactors {
		names = append(names, name)
	}
	sort.Strings(names)

	adjusted := base
	for _, name := range names {
		adjusted *= p.EfficiencyFactors[name]
	}

	memoryLimit := math.Floor(p.MemoryGBPerInstance * instances * BytesPerGB / p.BytesPerConnection)
	cpuLimit := p.CPUCoresPerInstance * instances * p.ConnectionsPerCore

	final := adjusted
	bottleneck := "efficiency"
	if memoryLimit < final {
		final = memoryLimit
		bottleneck = "memory"
	}
	if cpuLimit < final {
		final = cpuLimit
		bottleneck = "cpu"
	}

	return Estimate{
		Base:        base,
		Adjusted:    adjusted,
		MemoryLimit: memoryLimit,
		CPULimit:    cpuLimit,
		Final:       final,
		Bottleneck:  bottleneck,
	}, nil
}

// Validate rejects parameters the model cannot estimate from. All
// violations wrap ErrInvalidParameters.
func (p Parameters) Validate() error {
	if p.ConnectionsPerInstance <= 0 {
		return fmt.Errorf("%w: connections_per_instance must be positive, got %g",
			ErrInvalidParameters, p.ConnectionsPerInstance)
	}
	if p.InstanceCount <= 0 {
		return fmt.Errorf("%w: instance_count must be positive, got %d",
			ErrInvalidParameters, p.InstanceCount)
	}
	if p.CPUCoresPerInstance <= 0 {
		return fmt.Errorf("%w: cpu_cores_per_instance must be positive, got %g",
			ErrInvalidParameters, p.CPUCoresPerInstance)
	}
	if p.MemoryGBPerInstance <= 0 {
		return fmt.Errorf("%w: memory_gb_per_instance must be positive, got %g",
			ErrInvalidParameters, p.MemoryGBPerInstance)
	}
	if p.BytesPerConnection <= 0 {
		return fmt.Errorf("%w: bytes_per_connection must be positive, got %g",
			ErrInvalidParameters, p.BytesPerConnection)
	}
	if p.ConnectionsPerCore <= 0 {
		return fmt.Errorf("%w: connections_per_core must be positive, got %g",
			ErrInvalidParameters, p.ConnectionsPerCore)
	}
	for name, f := range p.EfficiencyFactors {
		if f <= 0 || f > 1 {
			return fmt.Errorf("%w: efficiency factor %q must be in (0, 1], got %g",
				ErrInvalidParameters, name, f)
		}
	}
	return nil
}
