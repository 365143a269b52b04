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
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// Metrics contains pre-defined metrics for the fitgate server surface.
//
// Description:
//
//	Provides standard counters, histograms, and gauges for HTTP requests,
//	scenario handling, capacity estimates, streaming sessions, and audit
//	events. All metrics use the "fitgate_" prefix for consistent naming.
//	Per-run and per-check gate metrics are owned by the gate package.
//
// Thread Safety: Safe for concurrent use after creation.
type Metrics struct {
	// --- HTTP Metrics ---

	// HTTPRequestsTotal counts total HTTP requests by method, path, and status.
	HTTPRequestsTotal metric.Int64Counter

	// HTTPRequestDuration records HTTP request duration in seconds.
	HTTPRequestDuration metric.Float64Histogram

	// HTTPActiveRequests tracks currently active HTTP requests.
	HTTPActiveRequests metric.Int64UpDownCounter

	// --- Evaluation Metrics ---

	// EvaluationsTotal counts evaluation requests by outcome
	// (approved, blocked, invalid, error).
	EvaluationsTotal metric.Int64Counter

	// ScenarioLoadsTotal counts scenario loads by source and status.
	ScenarioLoadsTotal metric.Int64Counter

	// ScenarioValidationsTotal counts scenario validations by status.
	ScenarioValidationsTotal metric.Int64Counter

	// CapacityEstimatesTotal counts capacity model computations by status.
	CapacityEstimatesTotal metric.Int64Counter

	// --- Stream Metrics ---

	// StreamSessionsActive tracks open websocket evaluation sessions.
	StreamSessionsActive metric.Int64UpDownCounter

	// StreamMessagesTotal counts websocket messages sent by type.
	StreamMessagesTotal metric.Int64Counter

	// --- Audit Metrics ---

	// AuditEventsTotal counts audit events recorded by event type.
	AuditEventsTotal metric.Int64Counter

	// AuditBacklog tracks audit events currently held in the store.
	// Registered via RegisterAuditBacklog.
	AuditBacklog metric.Int64ObservableGauge

	// --- Error Metrics ---

	// ErrorsTotal counts total errors by type and component.
	ErrorsTotal metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
//
// Description:
//
//	Registers all pre-defined metrics with the provided meter.
//	Returns an error if any metric registration fails.
//
// Inputs:
//
//	meter - The OTel meter to use for metric registration.
//
// Outputs:
//
//	*Metrics - The metrics instance with all counters and histograms initialized.
//	error - Non-nil if metric registration fails.
//
// Example:
//
//	meter := otel.Meter("fitgate")
//	metrics, err := telemetry.NewMetrics(meter)
//	if err != nil {
//	    return fmt.Errorf("create metrics: %w", err)
//	}
//	metrics.HTTPRequestsTotal.Add(ctx, 1, ...)
//
// Thread Safety: Safe for concurrent use after creation.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	// --- HTTP Metrics ---
	m.HTTPRequestsTotal, err = meter.Int64Counter(
		"fitgate_http_requests_total",
		metric.WithDescription("Total HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_requests_total: %w", err)
	}

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"fitgate_http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_request_duration: %w", err)
	}

	m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"fitgate_http_active_requests",
		metric.WithDescription("Currently active HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_active_requests: %w", err)
	}

	// --- Evaluation Metrics ---
	m.EvaluationsTotal, err = meter.Int64Counter(
		"fitgate_evaluations_total",
		metric.WithDescription("Total evaluation requests by outcome"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create evaluations_total: %w", err)
	}

	m.ScenarioLoadsTotal, err = meter.Int64Counter(
		"fitgate_scenario_loads_total",
		metric.WithDescription("Total scenario loads by source and status"),
		metric.WithUnit("{scenario}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create scenario_loads_total: %w", err)
	}

	m.ScenarioValidationsTotal, err = meter.Int64Counter(
		"fitgate_scenario_validations_total",
		metric.WithDescription("Total scenario validations by status"),
		metric.WithUnit("{scenario}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create scenario_validations_total: %w", err)
	}

	m.CapacityEstimatesTotal, err = meter.Int64Counter(
		"fitgate_capacity_estimates_total",
		metric.WithDescription("Total capacity model computations"),
		metric.WithUnit("{estimate}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create capacity_estimates_total: %w", err)
	}

	// --- Stream Metrics ---
	m.StreamSessionsActive, err = meter.Int64UpDownCounter(
		"fitgate_stream_sessions_active",
		metric.WithDescription("Open websocket evaluation sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create stream_sessions_active: %w", err)
	}

	m.StreamMessagesTotal, err = meter.Int64Counter(
		"fitgate_stream_messages_total",
		metric.WithDescription("Total websocket messages sent by type"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create stream_messages_total: %w", err)
	}

	// --- Audit Metrics ---
	m.AuditEventsTotal, err = meter.Int64Counter(
		"fitgate_audit_events_total",
		metric.WithDescription("Total audit events recorded by event type"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create audit_events_total: %w", err)
	}

	// Note: AuditBacklog requires a callback registration, handled separately

	// --- Error Metrics ---
	m.ErrorsTotal, err = meter.Int64Counter(
		"fitgate_errors_total",
		metric.WithDescription("Total errors by type and component"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create errors_total: %w", err)
	}

	return m, nil
}

// RegisterAuditBacklog registers a callback for the audit backlog gauge.
//
// Description:
//
//	Sets up an observable gauge that reports how many audit events the
//	store currently holds. The callback is invoked each time metrics
//	are scraped. Wire it to the audit logger's Len method.
//
// Inputs:
//
//	meter - The OTel meter to use for registration.
//	sizeFunc - A function that returns the current number of stored events.
//
// Outputs:
//
//	metric.Registration - Registration handle for cleanup.
//	error - Non-nil if registration fails.
func (m *Metrics) RegisterAuditBacklog(meter metric.Meter, sizeFunc func() int64) (metric.Registration, error) {
	var err error
	m.AuditBacklog, err = meter.Int64ObservableGauge(
		"fitgate_audit_events_stored",
		metric.WithDescription("Audit events currently held in the store"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create audit_events_stored: %w", err)
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(m.AuditBacklog, sizeFunc())
		return nil
	}, m.AuditBacklog)
}
