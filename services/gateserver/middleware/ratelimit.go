// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware creates a Gin middleware that throttles requests
// with a token-bucket limiter.
//
// Evaluation runs are CPU-bound (a default scenario draws thousands of
// samples per check), so the server shares one process-wide bucket
// across all clients rather than tracking per-client state. Requests
// that find the bucket empty are rejected immediately with 429 and a
// Retry-After hint instead of queuing.
//
// A nil limiter disables throttling entirely; the middleware becomes a
// passthrough.
//
// # Examples
//
//	limiter := rate.NewLimiter(rate.Limit(50), 100)
//	v1.Use(middleware.RateLimitMiddleware(limiter))
//
// # Thread Safety
//
// Thread-safe. rate.Limiter is safe for concurrent use.
func RateLimitMiddleware(limiter *rate.Limiter) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
