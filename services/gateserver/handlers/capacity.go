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
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/AleutianAI/fitgate/services/engine/capacity"
	"github.com/AleutianAI/fitgate/services/telemetry"
)

// HandleCapacityEstimate computes a concurrent connection estimate for
// the architecture described in the request body.
//
// An empty body (or one with no architecture fields) is estimated with
// the reference deployment parameters. Partially specified requests
// keep their architecture as given and only have the planning constants
// (bytes per connection, connections per core) defaulted. The response
// echoes the parameters actually used alongside the estimate so callers
// can see which defaults were applied.
func HandleCapacityEstimate(metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params capacity.Parameters
		if err := c.ShouldBindJSON(&params); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid capacity parameters", "details": err.Error()})
			return
		}

		if params.ConnectionsPerInstance == 0 && params.InstanceCount == 0 &&
			params.CPUCoresPerInstance == 0 && params.MemoryGBPerInstance == 0 {
			params = capacity.DefaultParameters()
		} else {
			defaults := capacity.DefaultParameters()
			if params.BytesPerConnection == 0 {
				params.BytesPerConnection = defaults.BytesPerConnection
			}
			if params.ConnectionsPerCore == 0 {
				params.ConnectionsPerCore = defaults.ConnectionsPerCore
			}
		}

		est, err := capacity.Compute(params)
		if err != nil {
			countCapacityEstimate(c, metrics, "invalid")
			if errors.Is(err, capacity.ErrInvalidParameters) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid capacity parameters", "details": err.Error()})
				return
			}
			slog.Error("Capacity estimate failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "capacity estimate failed", "details": err.Error()})
			return
		}
		countCapacityEstimate(c, metrics, "success")

		c.JSON(http.StatusOK, gin.H{
			"parameters": params,
			"estimate":   est,
		})
	}
}

func countCapacityEstimate(c *gin.Context, m *telemetry.Metrics, status string) {
	if m == nil {
		return
	}
	m.CapacityEstimatesTotal.Add(c.Request.Context(), 1,
		metric.WithAttributes(attribute.String("status", status)))
}
