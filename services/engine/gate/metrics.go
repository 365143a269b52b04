// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package gate

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/fitgate/services/engine/fitness"
)

// Package-level tracer and meter for gate operations.
var (
	tracer = otel.Tracer("fitgate.gate")
	meter  = otel.Meter("fitgate.gate")
)

// Metrics for gate operations.
var (
	runLatency   metric.Float64Histogram
	runsTotal    metric.Int64Counter
	checkLatency metric.Float64Histogram
	checksTotal  metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		runLatency, err = meter.Float64Histogram(
			"gate_run_duration_seconds",
			metric.WithDescription("Duration of full gate runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		runsTotal, err = meter.Int64Counter(
			"gate_runs_total",
			metric.WithDescription("Total gate runs by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		checkLatency, err = meter.Float64Histogram(
			"gate_check_duration_seconds",
			metric.WithDescription("Duration of individual check evaluations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		checksTotal, err = meter.Int64Counter(
			"gate_checks_total",
			metric.WithDescription("Total check evaluations by result"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startRunSpan creates a span for a full gate run.
func startRunSpan(ctx context.Context, runID string, checkCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "gate.Run",
		trace.WithAttributes(
			attribute.String("gate.run_id", runID),
			attribute.Int("gate.checks", checkCount),
		),
	)
}

// setRunSpanResult sets the decision attributes on a run span.
func setRunSpanResult(span trace.Span, decision *Decision) {
	span.SetAttributes(
		attribute.Bool("gate.approved", decision.Approved),
		attribute.Int("gate.passed", len(decision.Passed())),
		attribute.Int("gate.failed", len(decision.Failed())),
		attribute.Int("gate.errored", len(decision.Errors)),
	)
	if !decision.Approved {
		span.SetStatus(codes.Error, "release blocked")
	}
}

// startCheckSpan creates a span for one check evaluation.
func startCheckSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "gate.Check",
		trace.WithAttributes(
			attribute.String("check.name", name),
		),
	)
}

// setCheckSpanResult sets the verdict attributes on a check span.
func setCheckSpanResult(span trace.Span, verdict fitness.Verdict) {
	span.SetAttributes(
		attribute.Float64("check.actual", verdict.Actual),
		attribute.Float64("check.target", verdict.Threshold.Target),
		attribute.Bool("check.pass", verdict.Pass),
	)
	if !verdict.Pass {
		span.SetStatus(codes.Error, "threshold not met")
	}
}

// setCheckSpanError records an errored evaluation on a check span.
func setCheckSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// recordRunMetrics records metrics for a completed gate run.
func recordRunMetrics(ctx context.Context, decision *Decision) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.Bool("approved", decision.Approved),
	)

	runLatency.Record(ctx, decision.Duration.Seconds(), attrs)
	runsTotal.Add(ctx, 1, attrs)
}

// recordCheckMetrics records metrics for one check evaluation.
func recordCheckMetrics(ctx context.Context, name string, duration time.Duration, verdict fitness.Verdict, err error) {
	if initErr := initMetrics(); initErr != nil {
		return
	}

	result := "pass"
	switch {
	case err != nil:
		result = "error"
	case !verdict.Pass:
		result = "fail"
	}

	attrs := metric.WithAttributes(
		attribute.String("check", name),
		attribute.String("result", result),
	)

	checkLatency.Record(ctx, duration.Seconds(), attrs)
	checksTotal.Add(ctx, 1, attrs)
}
