// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package gate runs a set of fitness functions and folds their verdicts
// into a single release decision.
//
// # Design Principles
//
//   - Every check always runs. An errored or failing check never stops
//     the remaining checks, so a blocked report can enumerate everything
//     that is wrong at once.
//   - Approval is conservative: a gate with no verdicts, any failing
//     verdict, or any errored check blocks the release.
//   - Aggregation is pure. Aggregate inspects only the verdicts it is
//     given; all I/O lives in Run.
//
// # Thread Safety
//
// A Gate holds only immutable configuration after construction and is
// safe for concurrent use.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/fitgate/services/engine/fitness"
)

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

// Config configures a release gate.
type Config struct {
	// RunID labels the run in logs, spans, and reports.
	// Default: generated via NewRunID.
	RunID string

	// Parallelism caps concurrent check evaluations.
	// Default: 4
	Parallelism int

	// Logger for output.
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Parallelism: 4,
		Logger:      slog.Default(),
	}
}

// -----------------------------------------------------------------------------
// Options
// -----------------------------------------------------------------------------

// Option configures the gate.
type Option func(*Config)

// WithRunID pins the run identifier.
func WithRunID(id string) Option {
	return func(c *Config) {
		if id != "" {
			c.RunID = id
		}
	}
}

// WithParallelism sets the concurrent evaluation cap.
func WithParallelism(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.Parallelism = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// -----------------------------------------------------------------------------
// Decision
// -----------------------------------------------------------------------------

// CheckError records a check whose measurement could not be produced.
type CheckError struct {
	// Name is the check whose evaluation errored.
	Name string `json:"name"`

	// Err is the underlying evaluation error.
	Err error `json:"-"`

	// Message mirrors Err for serialized reports.
	Message string `json:"error"`
}

// Decision is the outcome of one gate run.
type Decision struct {
	// RunID labels the run.
	RunID string `json:"run_id"`

	// Approved is true only when every check produced a passing
	// verdict and none errored.
	Approved bool `json:"approved"`

	// Verdicts holds the produced verdicts in check order.
	Verdicts []fitness.Verdict `json:"verdicts"`

	// Errors holds the errored checks in check order.
	Errors []CheckError `json:"errors,omitempty"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall-clock run time.
	Duration time.Duration `json:"-"`

	// DurationMs mirrors Duration for serialized reports.
	DurationMs int64 `json:"duration_ms"`
}

// Failed returns the verdicts that measured short of their thresholds.
func (d *Decision) Failed() []fitness.Verdict {
	var failed []fitness.Verdict
	for _, v := range d.Verdicts {
		if !v.Pass {
			failed = append(failed, v)
		}
	}
	return failed
}

// Passed returns the verdicts that cleared their thresholds.
func (d *Decision) Passed() []fitness.Verdict {
	var passed []fitness.Verdict
	for _, v := range d.Verdicts {
		if v.Pass {
			passed = append(passed, v)
		}
	}
	return passed
}

// NewRunID returns a unique, sortable identifier for a gate run.
func NewRunID() string {
	return fmt.Sprintf("run_%s_%s", time.Now().UTC().Format("20060102_150405"), uuid.NewString()[:8])
}

// -----------------------------------------------------------------------------
// Aggregation
// -----------------------------------------------------------------------------

// Aggregate folds verdicts into a single approval.
//
// The release is approved only when the slice is non-empty and every
// verdict passed. An empty slice means nothing was verified, which is
// never grounds for approval.
func Aggregate(verdicts []fitness.Verdict) bool {
	if len(verdicts) == 0 {
		return false
	}
	for _, v := range verdicts {
		if !v.Pass {
			return false
		}
	}
	return true
}

// -----------------------------------------------------------------------------
// Gate
// -----------------------------------------------------------------------------

// Gate evaluates fitness functions and decides whether a release may
// proceed.
//
// Thread Safety: Safe for concurrent use.
type Gate struct {
	checks []fitness.FitnessFunction
	config *Config
	logger *slog.Logger
}

// New creates a release gate over the given checks.
//
// Inputs:
//   - checks: Fitness functions to evaluate, in report order.
//   - opts: Configuration options.
//
// Outputs:
//   - *Gate: The new gate. Never nil.
func New(checks []fitness.FitnessFunction, opts ...Option) *Gate {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	return &Gate{
		checks: checks,
		config: config,
		logger: config.Logger,
	}
}

// outcome is the result of one check evaluation, exactly one of
// verdict or err.
type outcome struct {
	verdict fitness.Verdict
	err     error
}

// Run evaluates every check and aggregates the verdicts.
//
// Description:
//
//	Run evaluates all checks concurrently, bounded by Parallelism,
//	then assembles a Decision preserving check order: verdicts in
//	check order, errored checks in check order. Approval requires
//	every check to verdict and every verdict to pass.
//
// Inputs:
//   - ctx: Context for cancellation. Must not be nil.
//
// Outputs:
//   - *Decision: The gate decision. Never nil on success.
//   - error: Non-nil only if the run could not be performed at all.
//
// Thread Safety: Safe for concurrent use.
func (g *Gate) Run(ctx context.Context) (*Decision, error) {
	if ctx == nil {
		return nil, errors.New("context must not be nil")
	}

	runID := g.config.RunID
	if runID == "" {
		runID = NewRunID()
	}

	ctx, span := startRunSpan(ctx, runID, len(g.checks))
	defer span.End()

	start := time.Now()
	outcomes := make([]outcome, len(g.checks))

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.config.Parallelism)

	for i, check := range g.checks {
		i, check := i, check // Capture loop variables

		eg.Go(func() error {
			outcomes[i] = g.evaluate(gCtx, check)
			return nil
		})
	}

	// Workers never return errors; outcomes carry them per check.
	_ = eg.Wait()

	decision := &Decision{
		RunID:     runID,
		StartedAt: start,
	}

	for i, out := range outcomes {
		name := g.checks[i].Name()
		if out.err != nil {
			g.logger.Warn("fitness check errored",
				slog.String("run_id", runID),
				slog.String("check", name),
				slog.String("error", out.err.Error()),
			)
			decision.Errors = append(decision.Errors, CheckError{
				Name:    name,
				Err:     out.err,
				Message: out.err.Error(),
			})
			continue
		}
		decision.Verdicts = append(decision.Verdicts, out.verdict)
	}

	decision.Approved = len(decision.Errors) == 0 && Aggregate(decision.Verdicts)
	decision.Duration = time.Since(start)
	decision.DurationMs = decision.Duration.Milliseconds()

	setRunSpanResult(span, decision)
	recordRunMetrics(ctx, decision)

	g.logger.Info("fitness gate run completed",
		slog.String("run_id", runID),
		slog.Bool("approved", decision.Approved),
		slog.Int("passed", len(decision.Passed())),
		slog.Int("failed", len(decision.Failed())),
		slog.Int("errored", len(decision.Errors)),
		slog.Duration("duration", decision.Duration),
	)

	return decision, nil
}

// evaluate runs a single check inside its own span.
func (g *Gate) evaluate(ctx context.Context, check fitness.FitnessFunction) outcome {
	ctx, span := startCheckSpan(ctx, check.Name())
	defer span.End()

	start := time.Now()
	verdict, err := check.Evaluate(ctx)
	recordCheckMetrics(ctx, check.Name(), time.Since(start), verdict, err)

	if err != nil {
		setCheckSpanError(span, err)
		return outcome{err: err}
	}

	setCheckSpanResult(span, verdict)
	return outcome{verdict: verdict}
}
