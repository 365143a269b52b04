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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/AleutianAI/fitgate/services/engine/fitness"
)

// stubCheck is a fitness function with a scripted outcome.
type stubCheck struct {
	name   string
	actual float64
	th     fitness.Threshold
	err    error
	delay  time.Duration
}

func (s *stubCheck) Name() string { return s.name }

func (s *stubCheck) Evaluate(ctx context.Context) (fitness.Verdict, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return fitness.Verdict{}, ctx.Err()
		}
	}
	if s.err != nil {
		return fitness.Verdict{}, s.err
	}
	return fitness.NewVerdict(s.name, s.actual, "", s.th), nil
}

func passing(name string) *stubCheck {
	return &stubCheck{name: name, actual: 10, th: fitness.Threshold{Target: 5, Comparison: fitness.AtLeast}}
}

func failing(name string) *stubCheck {
	return &stubCheck{name: name, actual: 1, th: fitness.Threshold{Target: 5, Comparison: fitness.AtLeast}}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---- Aggregation ----

func TestAggregate(t *testing.T) {
	pass := fitness.NewVerdict("a", 10, "", fitness.Threshold{Target: 5, Comparison: fitness.AtLeast})
	fail := fitness.NewVerdict("b", 1, "", fitness.Threshold{Target: 5, Comparison: fitness.AtLeast})

	tests := []struct {
		name     string
		verdicts []fitness.Verdict
		want     bool
	}{
		{"empty blocks", nil, false},
		{"single pass approves", []fitness.Verdict{pass}, true},
		{"all pass approves", []fitness.Verdict{pass, pass, pass}, true},
		{"single fail blocks", []fitness.Verdict{pass, fail, pass}, false},
		{"all fail blocks", []fitness.Verdict{fail, fail}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Aggregate(tt.verdicts); got != tt.want {
				t.Errorf("Aggregate(%d verdicts) = %v, want %v", len(tt.verdicts), got, tt.want)
			}
		})
	}
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	verdicts := []fitness.Verdict{
		fitness.NewVerdict("a", 10, "", fitness.Threshold{Target: 5, Comparison: fitness.AtLeast}),
		fitness.NewVerdict("b", 1, "", fitness.Threshold{Target: 5, Comparison: fitness.AtLeast}),
	}
	before := make([]fitness.Verdict, len(verdicts))
	copy(before, verdicts)

	Aggregate(verdicts)

	for i := range verdicts {
		if verdicts[i] != before[i] {
			t.Fatalf("verdict %d mutated by aggregation: %+v -> %+v", i, before[i], verdicts[i])
		}
	}
}

// ---- Runs ----

func TestRunApprovesWhenAllPass(t *testing.T) {
	g := New(
		[]fitness.FitnessFunction{passing("uptime"), passing("latency"), passing("capacity")},
		WithLogger(quietLogger()),
	)

	decision, err := g.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if !decision.Approved {
		t.Errorf("all-pass gate must approve, got %+v", decision)
	}
	if len(decision.Verdicts) != 3 {
		t.Fatalf("expected 3 verdicts, got %d", len(decision.Verdicts))
	}
	if len(decision.Errors) != 0 {
		t.Errorf("expected no errored checks, got %v", decision.Errors)
	}
	if decision.RunID == "" {
		t.Error("decision must carry a run identifier")
	}
	if decision.Duration < 0 {
		t.Errorf("negative duration %v", decision.Duration)
	}
}

func TestRunBlocksOnSingleFailure(t *testing.T) {
	g := New(
		[]fitness.FitnessFunction{passing("uptime"), failing("latency"), passing("capacity")},
		WithLogger(quietLogger()),
	)

	decision, err := g.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if decision.Approved {
		t.Errorf("gate with a failing check must block, got %+v", decision)
	}
	failed := decision.Failed()
	if len(failed) != 1 || failed[0].Name != "latency" {
		t.Errorf("Failed() = %+v, want only the latency verdict", failed)
	}
	if len(decision.Passed()) != 2 {
		t.Errorf("Passed() = %+v, want uptime and capacity", decision.Passed())
	}
}

func TestRunEmptyGateBlocks(t *testing.T) {
	decision, err := New(nil, WithLogger(quietLogger())).Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if decision.Approved {
		t.Error("a gate that verified nothing must not approve")
	}
	if len(decision.Verdicts) != 0 || len(decision.Errors) != 0 {
		t.Errorf("empty gate produced outcomes: %+v", decision)
	}
}

func TestRunPreservesCheckOrder(t *testing.T) {
	// Slowest check first: order must come from registration, not
	// completion.
	checks := make([]fitness.FitnessFunction, 6)
	for i := range checks {
		c := passing(fmt.Sprintf("check_%d", i))
		c.delay = time.Duration(len(checks)-i) * 5 * time.Millisecond
		checks[i] = c
	}

	decision, err := New(checks, WithLogger(quietLogger()), WithParallelism(6)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	for i, v := range decision.Verdicts {
		want := fmt.Sprintf("check_%d", i)
		if v.Name != want {
			t.Errorf("verdict %d is %q, want %q", i, v.Name, want)
		}
	}
}

func TestRunCollectsErroredChecks(t *testing.T) {
	boom := fmt.Errorf("%w: synthetic", fitness.ErrEvaluationFailed)
	g := New(
		[]fitness.FitnessFunction{
			passing("uptime"),
			&stubCheck{name: "latency", err: boom},
			passing("capacity"),
		},
		WithLogger(quietLogger()),
	)

	decision, err := g.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if decision.Approved {
		t.Error("gate with an errored check must block")
	}
	if len(decision.Errors) != 1 {
		t.Fatalf("expected 1 errored check, got %d", len(decision.Errors))
	}
	ce := decision.Errors[0]
	if ce.Name != "latency" {
		t.Errorf("errored check name = %q, want latency", ce.Name)
	}
	if !errors.Is(ce.Err, fitness.ErrEvaluationFailed) {
		t.Errorf("errored check should preserve the cause, got %v", ce.Err)
	}
	if ce.Message == "" {
		t.Error("errored check must carry a serializable message")
	}

	// Errored is not failed: the remaining verdicts all passed.
	if len(decision.Failed()) != 0 {
		t.Errorf("errored check leaked into Failed(): %+v", decision.Failed())
	}
	if len(decision.Verdicts) != 2 {
		t.Errorf("expected 2 verdicts from the surviving checks, got %d", len(decision.Verdicts))
	}
	for _, v := range decision.Verdicts {
		if v.Name == "latency" {
			t.Errorf("errored check must not produce a verdict, got %+v", v)
		}
	}
}

func TestRunParallelismDoesNotChangeOutcome(t *testing.T) {
	build := func() []fitness.FitnessFunction {
		return []fitness.FitnessFunction{
			passing("a"), failing("b"), passing("c"),
			&stubCheck{name: "d", err: errors.New("broken")},
			passing("e"),
		}
	}

	serial, err := New(build(), WithLogger(quietLogger()), WithParallelism(1)).Run(context.Background())
	if err != nil {
		t.Fatalf("serial Run returned error: %v", err)
	}
	wide, err := New(build(), WithLogger(quietLogger()), WithParallelism(8)).Run(context.Background())
	if err != nil {
		t.Fatalf("wide Run returned error: %v", err)
	}

	if serial.Approved != wide.Approved {
		t.Errorf("approval diverged across parallelism: %v vs %v", serial.Approved, wide.Approved)
	}
	if len(serial.Verdicts) != len(wide.Verdicts) {
		t.Fatalf("verdict counts diverged: %d vs %d", len(serial.Verdicts), len(wide.Verdicts))
	}
	for i := range serial.Verdicts {
		if serial.Verdicts[i] != wide.Verdicts[i] {
			t.Errorf("verdict %d diverged: %+v vs %+v", i, serial.Verdicts[i], wide.Verdicts[i])
		}
	}
	if len(serial.Errors) != 1 || len(wide.Errors) != 1 || serial.Errors[0].Name != wide.Errors[0].Name {
		t.Errorf("errored checks diverged: %+v vs %+v", serial.Errors, wide.Errors)
	}
}

func TestRunPinsRunID(t *testing.T) {
	decision, err := New(
		[]fitness.FitnessFunction{passing("uptime")},
		WithLogger(quietLogger()),
		WithRunID("release_v2_rc1"),
	).Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if decision.RunID != "release_v2_rc1" {
		t.Errorf("RunID = %q, want release_v2_rc1", decision.RunID)
	}
}

func TestRunNilContext(t *testing.T) {
	//nolint:staticcheck // nil context is the case under test
	if _, err := New(nil).Run(nil); err == nil {
		t.Error("expected error for nil context")
	}
}

func TestNewRunIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for range 32 {
		id := NewRunID()
		if seen[id] {
			t.Fatalf("duplicate run id %q", id)
		}
		seen[id] = true
	}
}
