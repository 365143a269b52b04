// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package report

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown creates the markdown rendering of the report, suitable
// for PR comments and change tickets.
func (r *Report) RenderMarkdown() string {
	var sb strings.Builder

	sb.WriteString("# Release Gate Report\n\n")

	if r.Decision.Approved {
		sb.WriteString("**Decision: APPROVED**\n\n")
	} else {
		sb.WriteString("**Decision: BLOCKED**\n\n")
	}

	sb.WriteString(fmt.Sprintf("Scenario: %s\n", r.ScenarioID))
	if r.Description != "" {
		sb.WriteString(fmt.Sprintf("Description: %s\n", r.Description))
	}
	sb.WriteString(fmt.Sprintf("Run: %s\n", r.Decision.RunID))
	sb.WriteString(fmt.Sprintf("Generated: %s\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Duration: %dms\n\n", r.Decision.DurationMs))

	// Verdict table
	sb.WriteString("## Fitness Functions\n\n")
	sb.WriteString("| Fitness Function | Target | Actual | Status |\n")
	sb.WriteString("|------------------|--------|--------|--------|\n")

	for _, v := range r.Decision.Verdicts {
		status := "PASS"
		if !v.Pass {
			status = "FAIL"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			v.Name, target(v.Threshold), measure(v), status))
	}

	// Errored checks
	if len(r.Decision.Errors) > 0 {
		sb.WriteString("\n## Errored Checks\n\n")
		sb.WriteString("These checks produced no verdict. An errored check blocks the release.\n\n")
		for _, e := range r.Decision.Errors {
			sb.WriteString(fmt.Sprintf("- **%s**: %s\n", e.Name, e.Message))
		}
	}

	// Capacity appendix
	if len(r.Capacity) > 0 {
		sb.WriteString("\n## Capacity Model\n\n")
		for _, cb := range r.Capacity {
			est := cb.Estimate
			sb.WriteString(fmt.Sprintf("### %s\n\n", cb.CheckName))
			sb.WriteString("| Ceiling | Connections |\n")
			sb.WriteString("|---------|-------------|\n")
			sb.WriteString(fmt.Sprintf("| Base | %s |\n", formatValue(est.Base)))
			sb.WriteString(fmt.Sprintf("| Adjusted | %s |\n", formatValue(est.Adjusted)))
			sb.WriteString(fmt.Sprintf("| Memory limit | %s |\n", formatValue(est.MemoryLimit)))
			sb.WriteString(fmt.Sprintf("| CPU limit | %s |\n", formatValue(est.CPULimit)))
			sb.WriteString(fmt.Sprintf("| Final | %s |\n", formatValue(est.Final)))
			sb.WriteString(fmt.Sprintf("\nBottleneck: %s\n", est.Bottleneck))
		}
	}

	return sb.String()
}
