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
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/AleutianAI/fitgate/pkg/extensions"
	"github.com/AleutianAI/fitgate/pkg/version"
	"github.com/AleutianAI/fitgate/services/engine/scenario"
	"github.com/AleutianAI/fitgate/services/telemetry"
)

// HandleScenarioValidate checks a scenario document without running it.
//
// The body goes through the full load pipeline: size cap, defaults,
// schema validation, and harness compatibility. A valid scenario
// returns 200 with its resolved identity; an invalid one returns 422
// with the first validation failure. This is the endpoint CI pipelines
// call to lint scenario files before merging them.
func HandleScenarioValidate(auditor extensions.AuditLogger, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, scenario.MaxScenarioBytes+1))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body", "details": err.Error()})
			return
		}

		scn, err := scenario.Load(body)
		if err == nil {
			err = scn.SupportedBy(version.Version)
		}
		if err != nil {
			countScenarioValidation(c, metrics, "invalid")
			recordAudit(c, auditor, metrics, extensions.AuditEvent{
				EventType:    "scenario.validate",
				Action:       "validate",
				ResourceType: "scenario",
				Outcome:      "failure",
				Metadata:     map[string]any{"error": err.Error()},
			})
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"valid": false,
				"error": err.Error(),
			})
			return
		}

		countScenarioValidation(c, metrics, "valid")
		recordAudit(c, auditor, metrics, extensions.AuditEvent{
			EventType:    "scenario.validate",
			Action:       "validate",
			ResourceType: "scenario",
			ResourceID:   scn.Metadata.ID,
			Outcome:      "success",
		})
		c.JSON(http.StatusOK, gin.H{
			"valid":  true,
			"id":     scn.Metadata.ID,
			"checks": len(scn.Checks),
		})
	}
}

func countScenarioValidation(c *gin.Context, m *telemetry.Metrics, status string) {
	if m == nil {
		return
	}
	m.ScenarioValidationsTotal.Add(c.Request.Context(), 1,
		metric.WithAttributes(attribute.String("status", status)))
}
