// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scenario

import (
	"fmt"

	"github.com/AleutianAI/fitgate/services/engine/fitness"
	"github.com/AleutianAI/fitgate/services/engine/stats"
)

// Build instantiates the configured checks in declaration order.
//
// Build assumes EnsureDefaults has run, which Load guarantees. The
// returned slice feeds gate.New directly.
func (s *Scenario) Build() ([]fitness.FitnessFunction, error) {
	checks := make([]fitness.FitnessFunction, 0, len(s.Checks))
	for i := range s.Checks {
		check, err := s.Checks[i].build()
		if err != nil {
			return nil, fmt.Errorf("%w: check %q: %w", ErrInvalidScenario, s.Checks[i].Name, err)
		}
		checks = append(checks, check)
	}
	return checks, nil
}

func (c *CheckConfig) build() (fitness.FitnessFunction, error) {
	th, err := c.Threshold.toThreshold()
	if err != nil {
		return nil, err
	}

	switch c.Kind {
	case KindUptime:
		cfg := fitness.DefaultUptimeConfig()
		cfg.Threshold = th
		if c.Sampling != nil {
			if c.Sampling.Trials > 0 {
				cfg.Trials = c.Sampling.Trials
			}
			cfg.FailureProbability = c.Sampling.FailureProbability
			cfg.Seed = c.Sampling.Seed
		}
		return fitness.NewUptimeCheck(c.Name, cfg), nil

	case KindLatency:
		cfg := fitness.DefaultLatencyConfig()
		cfg.Threshold = th
		if c.Sampling != nil {
			if c.Sampling.Samples > 0 {
				cfg.Samples = c.Sampling.Samples
			}
			if c.Sampling.Mean > 0 {
				cfg.Mean = c.Sampling.Mean
			}
			if c.Sampling.StdDev > 0 {
				cfg.StdDev = c.Sampling.StdDev
			}
			cfg.Seed = c.Sampling.Seed
		}
		if c.Reduction != "" {
			red, err := stats.ParseReduction(c.Reduction)
			if err != nil {
				return nil, err
			}
			cfg.Reduction = red
		}
		return fitness.NewLatencyCheck(c.Name, cfg), nil

	case KindScalability:
		cfg := fitness.DefaultScalabilityConfig()
		cfg.Threshold = th
		if c.Capacity != nil {
			cfg.Capacity = *c.Capacity
		}
		return fitness.NewScalabilityCheck(c.Name, cfg), nil

	case KindStatic:
		if c.Value == nil {
			return nil, fmt.Errorf("static checks require a value")
		}
		return fitness.NewStaticCheck(c.Name, *c.Value, c.Unit, th), nil

	default:
		return nil, fmt.Errorf("unknown check kind %q", c.Kind)
	}
}

func (t ThresholdConfig) toThreshold() (fitness.Threshold, error) {
	cmp, err := fitness.ParseComparison(t.Comparison)
	if err != nil {
		return fitness.Threshold{}, err
	}
	return fitness.Threshold{Target: t.Target, Comparison: cmp}, nil
}
