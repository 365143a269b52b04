// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// LoggerWithTrace returns a logger that includes trace correlation fields.
//
// Description:
//
//	Derives a logger carrying trace_id and span_id attributes from the
//	active span, so log entries can be joined with traces in Grafana or
//	Loki. When the context has no valid span the original logger is
//	returned unchanged.
//
// Inputs:
//
//	ctx - Context potentially containing a span. May be nil.
//	logger - Base logger. Nil falls back to slog.Default().
//
// Outputs:
//
//	*slog.Logger - Logger with trace fields attached, or the base logger.
//
// Example:
//
//	log := telemetry.LoggerWithTrace(ctx, logger)
//	log.Info("verdict recorded", "check", v.Name, "pass", v.Pass)
//
// Thread Safety: Safe for concurrent use.
func LoggerWithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if ctx == nil {
		return logger
	}

	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return logger
	}

	return logger.With(
		slog.String("trace_id", spanCtx.TraceID().String()),
		slog.String("span_id", spanCtx.SpanID().String()),
	)
}

// LoggerWithRun returns a logger tagged with a gate run ID.
//
// Description:
//
//	Composes LoggerWithTrace and adds a run_id attribute, so every entry
//	written during a gate run can be grouped by run. Use at the start of
//	Gate.Run or a request handler and pass the derived logger down.
//
// Inputs:
//
//	ctx - Context potentially containing a span. May be nil.
//	logger - Base logger. Nil falls back to slog.Default().
//	runID - The gate run identifier (for example "run_20250115_090000_a1b2c3d4").
//
// Thread Safety: Safe for concurrent use.
func LoggerWithRun(ctx context.Context, logger *slog.Logger, runID string) *slog.Logger {
	return LoggerWithTrace(ctx, logger).With(slog.String("run_id", runID))
}

// LoggerWithCheck returns a logger tagged with a fitness check name.
//
// Description:
//
//	Composes LoggerWithTrace and adds a check attribute. Use inside a
//	single check evaluation so its log entries are distinguishable when
//	checks run in parallel.
//
// Inputs:
//
//	ctx - Context potentially containing a span. May be nil.
//	logger - Base logger. Nil falls back to slog.Default().
//	check - The fitness check name (for example "p95_latency").
//
// Thread Safety: Safe for concurrent use.
func LoggerWithCheck(ctx context.Context, logger *slog.Logger, check string) *slog.Logger {
	return LoggerWithTrace(ctx, logger).With(slog.String("check", check))
}
