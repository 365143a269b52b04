// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/fitgate/services/engine/scenario"
)

// checkInfo describes one supported check kind in the catalog.
type checkInfo struct {
	Kind        string                `json:"kind"`
	Description string                `json:"description"`
	Reference   *scenario.CheckConfig `json:"reference,omitempty"`
}

// HandleListChecks returns the catalog of check kinds the server can
// run, each with the reference configuration from the default release
// gate where one exists.
func HandleListChecks() gin.HandlerFunc {
	return func(c *gin.Context) {
		def := scenario.Default()
		catalog := []checkInfo{
			{
				Kind:        scenario.KindUptime,
				Description: "Simulates periodic availability probes and gates on the observed uptime percentage.",
				Reference:   &def.Checks[0],
			},
			{
				Kind:        scenario.KindLatency,
				Description: "Draws response times from a clamped normal distribution and gates on a reduction such as p95.",
				Reference:   &def.Checks[1],
			},
			{
				Kind:        scenario.KindScalability,
				Description: "Estimates concurrent connection capacity from the deployment architecture and gates on the bottleneck.",
				Reference:   &def.Checks[2],
			},
			{
				Kind:        scenario.KindStatic,
				Description: "Compares an externally measured value against its threshold without sampling.",
			},
		}
		c.JSON(http.StatusOK, gin.H{"checks": catalog})
	}
}
