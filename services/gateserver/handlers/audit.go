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
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/AleutianAI/fitgate/pkg/extensions"
	"github.com/AleutianAI/fitgate/services/gateserver/middleware"
	"github.com/AleutianAI/fitgate/services/telemetry"
)

// recordAudit fills in the ambient fields of an audit event and hands it
// to the configured sink. An audit sink outage must not change a gate
// decision, so failures are logged and swallowed.
func recordAudit(c *gin.Context, auditor extensions.AuditLogger, metrics *telemetry.Metrics, event extensions.AuditEvent) {
	if auditor == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.UserID == "" {
		if info := middleware.GetAuthInfo(c); info != nil {
			event.UserID = info.UserID
		} else {
			event.UserID = "anonymous"
		}
	}

	if err := auditor.Log(c.Request.Context(), event); err != nil {
		slog.Warn("Failed to record audit event",
			"event_type", event.EventType,
			"resource_id", event.ResourceID,
			"error", err)
		return
	}
	if metrics != nil {
		metrics.AuditEventsTotal.Add(c.Request.Context(), 1,
			metric.WithAttributes(attribute.String("event_type", event.EventType)))
	}
}
