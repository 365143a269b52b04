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

	"github.com/AleutianAI/fitgate/pkg/ux"
)

// RenderConsole prints the report to stdout through the personality
// aware output helpers.
//
// Machine personality yields stable tab-separated check lines, a
// SUMMARY line, and a Decision line, in that order, suitable for
// scripts. Richer personalities add the title, styling, and the
// capacity breakdown.
func (r *Report) RenderConsole() {
	ux.Title("Release Gate Report")
	ux.Muted(fmt.Sprintf("scenario %s  run %s", r.ScenarioID, r.Decision.RunID))

	for _, v := range r.Decision.Verdicts {
		icon := ux.IconSuccess
		if !v.Pass {
			icon = ux.IconError
		}
		ux.CheckStatus(v.Name, icon, fmt.Sprintf("%s (threshold %s)", measure(v), target(v.Threshold)))
	}
	for _, e := range r.Decision.Errors {
		ux.CheckStatus(e.Name, ux.IconWarning, "errored: "+e.Message)
	}

	for _, cb := range r.Capacity {
		est := cb.Estimate
		ux.Muted(fmt.Sprintf("%s ceilings: base %s, adjusted %s, memory %s, cpu %s (bottleneck: %s)",
			cb.CheckName,
			formatValue(est.Base),
			formatValue(est.Adjusted),
			formatValue(est.MemoryLimit),
			formatValue(est.CPULimit),
			est.Bottleneck,
		))
	}

	ux.Summary(len(r.Decision.Passed()), len(r.Decision.Failed()), len(r.Decision.Errors))

	if r.Decision.Approved {
		ux.Box("Decision", "APPROVED")
	} else {
		ux.Box("Decision", "BLOCKED")
	}
}
