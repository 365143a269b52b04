// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the HTTP surface of the fitgate
// evaluation service.
//
// Handlers are thin: they parse and validate the request, delegate to
// the engine packages (scenario, gate, capacity), and translate the
// outcome into a status code. The evaluate contract is binding:
//
//	200 - every check passed, the release is approved
//	422 - the gate ran and blocked the release
//	400 - the scenario itself was rejected
//	500 - the run could not be performed at all
//
// A blocked release is an answer, not an error: the 422 body carries
// the full decision so callers can enumerate every failed check.
//
// All handlers are safe for concurrent use.
package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/AleutianAI/fitgate/pkg/extensions"
	"github.com/AleutianAI/fitgate/pkg/version"
	"github.com/AleutianAI/fitgate/services/engine/gate"
	"github.com/AleutianAI/fitgate/services/engine/scenario"
	"github.com/AleutianAI/fitgate/services/telemetry"
)

// HandleEvaluate runs a release gate over the scenario in the request
// body and returns the decision.
//
// The body may be YAML or JSON and goes through the same pipeline as a
// scenario file loaded by the CLI: size cap, defaults, schema
// validation, harness compatibility. Rejections are 400 with the
// validation detail; an approved decision is 200 and a blocked one 422,
// both carrying the decision JSON.
func HandleEvaluate(auditor extensions.AuditLogger, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, scenario.MaxScenarioBytes+1))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body", "details": err.Error()})
			return
		}

		scn, err := scenario.Load(body)
		if err != nil {
			slog.Warn("Rejected evaluation scenario", "error", err)
			countEvaluation(c, metrics, "invalid")
			countScenarioLoad(c, metrics, "invalid")
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scenario", "details": err.Error()})
			return
		}
		countScenarioLoad(c, metrics, "success")

		if err := scn.SupportedBy(version.Version); err != nil {
			countEvaluation(c, metrics, "invalid")
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported scenario", "details": err.Error()})
			return
		}

		checks, err := scn.Build()
		if err != nil {
			countEvaluation(c, metrics, "invalid")
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scenario", "details": err.Error()})
			return
		}

		g := gate.New(checks, gate.WithLogger(telemetry.LoggerWithTrace(ctx, slog.Default())))
		decision, err := g.Run(ctx)
		if err != nil {
			slog.Error("Gate run failed", "scenario", scn.Metadata.ID, "error", err)
			countEvaluation(c, metrics, "error")
			recordAudit(c, auditor, metrics, extensions.AuditEvent{
				EventType:    "gate.run",
				Action:       "execute",
				ResourceType: "evaluation",
				Outcome:      "error",
				Metadata: map[string]any{
					"scenario": scn.Metadata.ID,
					"error":    err.Error(),
				},
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "gate run failed", "details": err.Error()})
			return
		}

		outcome, status := "blocked", http.StatusUnprocessableEntity
		if decision.Approved {
			outcome, status = "approved", http.StatusOK
		}
		countEvaluation(c, metrics, outcome)
		recordAudit(c, auditor, metrics, auditForDecision(scn.Metadata.ID, decision))

		slog.Info("Evaluation request completed",
			"run_id", decision.RunID,
			"scenario", scn.Metadata.ID,
			"approved", decision.Approved,
			"failed", len(decision.Failed()),
			"errored", len(decision.Errors))
		c.JSON(status, decision)
	}
}

// auditForDecision builds the gate.run audit event for a completed run.
func auditForDecision(scenarioID string, d *gate.Decision) extensions.AuditEvent {
	outcome := "blocked"
	if d.Approved {
		outcome = "success"
	}
	return extensions.AuditEvent{
		EventType:    "gate.run",
		Action:       "execute",
		ResourceType: "evaluation",
		ResourceID:   d.RunID,
		Outcome:      outcome,
		Metadata: map[string]any{
			"scenario":    scenarioID,
			"approved":    d.Approved,
			"passed":      len(d.Passed()),
			"failed":      len(d.Failed()),
			"errored":     len(d.Errors),
			"duration_ms": d.DurationMs,
		},
	}
}

func countEvaluation(c *gin.Context, m *telemetry.Metrics, outcome string) {
	if m == nil {
		return
	}
	m.EvaluationsTotal.Add(c.Request.Context(), 1,
		metric.WithAttributes(attribute.String("outcome", outcome)))
}

func countScenarioLoad(c *gin.Context, m *telemetry.Metrics, status string) {
	if m == nil {
		return
	}
	m.ScenarioLoadsTotal.Add(c.Request.Context(), 1,
		metric.WithAttributes(
			attribute.String("source", "http"),
			attribute.String("status", status)))
}
