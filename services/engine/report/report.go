// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package report renders gate decisions for people and machines.
//
// A report is assembled once from a scenario and its decision, then
// rendered in one of three formats: console (personality aware, for
// interactive runs), markdown (for PR comments and change tickets),
// or json (for downstream tooling). Rendering never re-evaluates
// checks; the capacity appendix is recomputed from the scenario's
// parameters, which is safe because the capacity model is pure.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AleutianAI/fitgate/services/engine/capacity"
	"github.com/AleutianAI/fitgate/services/engine/fitness"
	"github.com/AleutianAI/fitgate/services/engine/gate"
	"github.com/AleutianAI/fitgate/services/engine/scenario"
)

// ErrUnknownFormat is returned when a report format is not one of
// console, markdown, or json.
var ErrUnknownFormat = errors.New("unknown report format")

// Format selects a rendering.
type Format string

const (
	FormatConsole  Format = "console"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat converts a configuration string into a Format. The empty
// string defaults to console.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "console":
		return FormatConsole, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatConsole, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// CapacityBreakdown pairs a scalability check with the full ceiling
// breakdown behind its verdict.
type CapacityBreakdown struct {
	CheckName  string              `json:"check_name"`
	Parameters capacity.Parameters `json:"parameters"`
	Estimate   capacity.Estimate   `json:"estimate"`
}

// Report is a renderable summary of one gate run.
type Report struct {
	// ScenarioID identifies the scenario that was run.
	ScenarioID string `json:"scenario_id"`

	// Description is the scenario's own description, if any.
	Description string `json:"description,omitempty"`

	// GeneratedAt is when the report was assembled.
	GeneratedAt time.Time `json:"generated_at"`

	// Decision is the gate outcome being reported.
	Decision *gate.Decision `json:"decision"`

	// Capacity holds the ceiling breakdowns for the scenario's
	// scalability checks, in check order.
	Capacity []CapacityBreakdown `json:"capacity,omitempty"`
}

// New assembles a report from a scenario and its gate decision.
//
// Description:
//
//	New captures the scenario identity and recomputes the capacity
//	breakdown for every scalability check so reports can show why the
//	capacity number is what it is. Checks whose parameters do not
//	compute are skipped here; their failure already appears in the
//	decision's errored checks.
//
// Inputs:
//   - s: The scenario that was run. Must not be nil.
//   - d: The decision produced by the gate. Must not be nil.
//
// Outputs:
//   - *Report: The assembled report. Never nil.
func New(s *scenario.Scenario, d *gate.Decision) *Report {
	r := &Report{
		ScenarioID:  s.Metadata.ID,
		Description: s.Metadata.Description,
		GeneratedAt: time.Now().UTC(),
		Decision:    d,
	}

	for i := range s.Checks {
		c := &s.Checks[i]
		if c.Kind != scenario.KindScalability || c.Capacity == nil {
			continue
		}
		est, err := capacity.Compute(*c.Capacity)
		if err != nil {
			continue
		}
		r.Capacity = append(r.Capacity, CapacityBreakdown{
			CheckName:  c.Name,
			Parameters: *c.Capacity,
			Estimate:   est,
		})
	}

	return r
}

// Write renders the report in the configured format.
//
// Console output always goes to stdout. Markdown and json go to the
// configured output path, or stdout when the path is empty.
func (r *Report) Write(cfg scenario.ReportConfig) error {
	format, err := ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	var content string
	switch format {
	case FormatConsole:
		r.RenderConsole()
		return nil
	case FormatMarkdown:
		content = r.RenderMarkdown()
	case FormatJSON:
		data, err := r.RenderJSON()
		if err != nil {
			return err
		}
		content = string(data) + "\n"
	}

	if cfg.Output == "" {
		fmt.Print(content)
		return nil
	}
	return os.WriteFile(cfg.Output, []byte(content), 0o644)
}

// RenderJSON encodes the full report as indented JSON.
func (r *Report) RenderJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// formatValue renders a measurement rounded to two decimals with
// trailing zeros trimmed, always in fixed notation. Capacity figures
// must never render in scientific notation.
func formatValue(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// target renders a threshold as operator and value, e.g. ">= 99.9".
func target(t fitness.Threshold) string {
	return fmt.Sprintf("%s %s", t.Comparison.Symbol(), formatValue(t.Target))
}

// measure renders an actual value with its display unit. Percent and
// millisecond units attach directly; anything else gets a space.
func measure(v fitness.Verdict) string {
	val := formatValue(v.Actual)
	switch v.Unit {
	case "":
		return val
	case "%", "ms":
		return val + v.Unit
	default:
		return val + " " + v.Unit
	}
}
