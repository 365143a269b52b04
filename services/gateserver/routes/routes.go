// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/fitgate/pkg/extensions"
	"github.com/AleutianAI/fitgate/services/gateserver/handlers"
	"github.com/AleutianAI/fitgate/services/gateserver/middleware"
	"github.com/AleutianAI/fitgate/services/telemetry"
)

// SetupRoutes registers every gate server endpoint on the router.
//
// Health and metrics stay outside the /v1 group so probes and scrapers
// are never blocked by authentication or the rate limiter.
func SetupRoutes(router *gin.Engine, opts extensions.ServiceOptions,
	metrics *telemetry.Metrics, limiter *rate.Limiter) {

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", func(c *gin.Context) {
		h := telemetry.MetricsHandler()
		if h == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "metrics not initialized"})
			return
		}
		h.ServeHTTP(c.Writer, c.Request)
	})

	// API version 1 group
	v1 := router.Group("/v1")
	v1.Use(
		middleware.AuthMiddleware(opts.AuthProvider),
		middleware.RateLimitMiddleware(limiter),
	)
	{
		v1.POST("/evaluate", handlers.HandleEvaluate(opts.AuditLogger, metrics))
		v1.GET("/evaluate/ws", handlers.HandleEvaluateStream(opts.AuditLogger, metrics))
		v1.POST("/capacity/estimate", handlers.HandleCapacityEstimate(metrics))
		v1.POST("/scenarios/validate", handlers.HandleScenarioValidate(opts.AuditLogger, metrics))
		v1.GET("/checks", handlers.HandleListChecks())
	}
}
