// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extensions

import (
	"context"
	"sync"
	"testing"
	"time"
)

// ============================================================================
// ServiceOptions Tests
// ============================================================================

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	// Verify all fields are set to non-nil nop implementations
	if opts.AuthProvider == nil {
		t.Error("DefaultOptions().AuthProvider should not be nil")
	}
	if opts.AuthzProvider == nil {
		t.Error("DefaultOptions().AuthzProvider should not be nil")
	}
	if opts.AuditLogger == nil {
		t.Error("DefaultOptions().AuditLogger should not be nil")
	}

	// Verify they are the correct nop types
	if _, ok := opts.AuthProvider.(*NopAuthProvider); !ok {
		t.Error("DefaultOptions().AuthProvider should be *NopAuthProvider")
	}
	if _, ok := opts.AuthzProvider.(*NopAuthzProvider); !ok {
		t.Error("DefaultOptions().AuthzProvider should be *NopAuthzProvider")
	}
	if _, ok := opts.AuditLogger.(*NopAuditLogger); !ok {
		t.Error("DefaultOptions().AuditLogger should be *NopAuditLogger")
	}
}

func TestServiceOptions_WithAuth(t *testing.T) {
	original := DefaultOptions()
	customAuth := &mockAuthProvider{userID: "custom-user"}

	// WithAuth should return a new options with the custom auth provider
	newOpts := original.WithAuth(customAuth)

	// New options should have the custom provider
	if newOpts.AuthProvider != customAuth {
		t.Error("WithAuth should set the custom AuthProvider")
	}

	// Original should be unchanged (immutable copy)
	if _, ok := original.AuthProvider.(*NopAuthProvider); !ok {
		t.Error("Original options should be unchanged after WithAuth")
	}

	// Other fields should be preserved
	if newOpts.AuthzProvider == nil {
		t.Error("WithAuth should preserve AuthzProvider")
	}
	if newOpts.AuditLogger == nil {
		t.Error("WithAuth should preserve AuditLogger")
	}
}

func TestServiceOptions_WithAuthz(t *testing.T) {
	original := DefaultOptions()
	customAuthz := &mockAuthzProvider{}

	newOpts := original.WithAuthz(customAuthz)

	if newOpts.AuthzProvider != customAuthz {
		t.Error("WithAuthz should set the custom AuthzProvider")
	}

	// Original should be unchanged
	if _, ok := original.AuthzProvider.(*NopAuthzProvider); !ok {
		t.Error("Original options should be unchanged after WithAuthz")
	}
}

func TestServiceOptions_WithAudit(t *testing.T) {
	original := DefaultOptions()
	customAudit := &mockAuditLogger{}

	newOpts := original.WithAudit(customAudit)

	if newOpts.AuditLogger != customAudit {
		t.Error("WithAudit should set the custom AuditLogger")
	}

	// Original should be unchanged
	if _, ok := original.AuditLogger.(*NopAuditLogger); !ok {
		t.Error("Original options should be unchanged after WithAudit")
	}
}

func TestServiceOptions_Chaining(t *testing.T) {
	customAuth := &mockAuthProvider{userID: "chained-user"}
	customAudit := &mockAuditLogger{}

	opts := DefaultOptions().
		WithAuth(customAuth).
		WithAudit(customAudit)

	if opts.AuthProvider != customAuth {
		t.Error("Chained WithAuth should set the custom AuthProvider")
	}
	if opts.AuditLogger != customAudit {
		t.Error("Chained WithAudit should set the custom AuditLogger")
	}
	if _, ok := opts.AuthzProvider.(*NopAuthzProvider); !ok {
		t.Error("Chaining should preserve untouched fields as nops")
	}
}

// ============================================================================
// AuthProvider Tests
// ============================================================================

func TestNopAuthProvider_Validate(t *testing.T) {
	provider := &NopAuthProvider{}
	ctx := context.Background()

	info, err := provider.Validate(ctx, "any-token")
	if err != nil {
		t.Fatalf("NopAuthProvider.Validate should not error: %v", err)
	}
	if info == nil {
		t.Fatal("NopAuthProvider.Validate should return AuthInfo")
	}
	if info.UserID != "local-user" {
		t.Errorf("UserID = %q, want %q", info.UserID, "local-user")
	}
	if !info.HasRole("admin") {
		t.Error("Nop auth user should have the admin role")
	}
}

func TestNopAuthProvider_Validate_EmptyToken(t *testing.T) {
	provider := &NopAuthProvider{}

	// Empty tokens are accepted: local use has no auth infrastructure
	info, err := provider.Validate(context.Background(), "")
	if err != nil {
		t.Fatalf("NopAuthProvider should accept empty tokens: %v", err)
	}
	if info.UserID != "local-user" {
		t.Errorf("UserID = %q, want %q", info.UserID, "local-user")
	}
}

func TestNopAuthzProvider_Authorize(t *testing.T) {
	provider := &NopAuthzProvider{}
	ctx := context.Background()

	requests := []AuthzRequest{
		{User: &AuthInfo{UserID: "u1"}, Action: "execute", ResourceType: "evaluation"},
		{User: &AuthInfo{UserID: "u2"}, Action: "read", ResourceType: "report", ResourceID: "run_1"},
		{User: nil, Action: "validate", ResourceType: "scenario"},
	}
	for _, req := range requests {
		if err := provider.Authorize(ctx, req); err != nil {
			t.Errorf("NopAuthzProvider should allow %s on %s: %v", req.Action, req.ResourceType, err)
		}
	}
}

func TestAuthInfo_HasRole(t *testing.T) {
	info := &AuthInfo{
		UserID: "user-1",
		Roles:  []string{"releaser", "viewer"},
	}

	if !info.HasRole("releaser") {
		t.Error("HasRole should find an assigned role")
	}
	if !info.HasRole("viewer") {
		t.Error("HasRole should find an assigned role")
	}
	if info.HasRole("admin") {
		t.Error("HasRole should not find an unassigned role")
	}
	if info.HasRole("Releaser") {
		t.Error("HasRole should be case sensitive")
	}
}

func TestAuthInfo_HasRole_EmptyRoles(t *testing.T) {
	info := &AuthInfo{UserID: "user-1"}

	if info.HasRole("admin") {
		t.Error("HasRole should return false when no roles are assigned")
	}
}

// ============================================================================
// NopAuditLogger Tests
// ============================================================================

func TestNopAuditLogger_Log(t *testing.T) {
	logger := &NopAuditLogger{}

	err := logger.Log(context.Background(), AuditEvent{
		EventType: "gate.run",
		UserID:    "local-user",
		Outcome:   "success",
	})
	if err != nil {
		t.Errorf("NopAuditLogger.Log should not error: %v", err)
	}
}

func TestNopAuditLogger_Query(t *testing.T) {
	logger := &NopAuditLogger{}
	ctx := context.Background()

	// Events are discarded, so queries always come back empty
	_ = logger.Log(ctx, AuditEvent{EventType: "gate.approved"})

	events, err := logger.Query(ctx, AuditFilter{})
	if err != nil {
		t.Fatalf("NopAuditLogger.Query should not error: %v", err)
	}
	if events == nil {
		t.Error("NopAuditLogger.Query should return an empty slice, not nil")
	}
	if len(events) != 0 {
		t.Errorf("NopAuditLogger.Query returned %d events, want 0", len(events))
	}
}

func TestNopAuditLogger_Flush(t *testing.T) {
	logger := &NopAuditLogger{}

	if err := logger.Flush(context.Background()); err != nil {
		t.Errorf("NopAuditLogger.Flush should not error: %v", err)
	}
}

// ============================================================================
// MemoryAuditLogger Tests
// ============================================================================

func TestNewMemoryAuditLogger_DefaultCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1, -100} {
		logger := NewMemoryAuditLogger(capacity)
		if logger.capacity != 1000 {
			t.Errorf("NewMemoryAuditLogger(%d) capacity = %d, want 1000", capacity, logger.capacity)
		}
	}

	logger := NewMemoryAuditLogger(50)
	if logger.capacity != 50 {
		t.Errorf("NewMemoryAuditLogger(50) capacity = %d, want 50", logger.capacity)
	}
}

func TestMemoryAuditLogger_LogAndLen(t *testing.T) {
	logger := NewMemoryAuditLogger(10)
	ctx := context.Background()

	if logger.Len() != 0 {
		t.Errorf("new logger Len() = %d, want 0", logger.Len())
	}

	for i := 0; i < 3; i++ {
		if err := logger.Log(ctx, AuditEvent{EventType: "gate.run"}); err != nil {
			t.Fatalf("Log should not error: %v", err)
		}
	}

	if logger.Len() != 3 {
		t.Errorf("Len() = %d, want 3", logger.Len())
	}
}

func TestMemoryAuditLogger_FillsZeroTimestamp(t *testing.T) {
	logger := NewMemoryAuditLogger(10)
	ctx := context.Background()

	_ = logger.Log(ctx, AuditEvent{EventType: "gate.run"})

	events, err := logger.Query(ctx, AuditFilter{})
	if err != nil {
		t.Fatalf("Query should not error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Query returned %d events, want 1", len(events))
	}
	if events[0].Timestamp.IsZero() {
		t.Error("Log should fill a zero timestamp with the current time")
	}
}

func TestMemoryAuditLogger_PreservesTimestamp(t *testing.T) {
	logger := NewMemoryAuditLogger(10)
	ctx := context.Background()
	stamp := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

	_ = logger.Log(ctx, AuditEvent{EventType: "gate.run", Timestamp: stamp})

	events, _ := logger.Query(ctx, AuditFilter{})
	if len(events) != 1 {
		t.Fatalf("Query returned %d events, want 1", len(events))
	}
	if !events[0].Timestamp.Equal(stamp) {
		t.Errorf("Timestamp = %v, want %v", events[0].Timestamp, stamp)
	}
}

func TestMemoryAuditLogger_EvictsOldest(t *testing.T) {
	logger := NewMemoryAuditLogger(3)
	ctx := context.Background()
	base := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"run_1", "run_2", "run_3", "run_4"} {
		_ = logger.Log(ctx, AuditEvent{
			EventType:  "gate.run",
			ResourceID: id,
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
		})
	}

	if logger.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 after eviction", logger.Len())
	}

	events, _ := logger.Query(ctx, AuditFilter{})
	for _, event := range events {
		if event.ResourceID == "run_1" {
			t.Error("oldest event should have been evicted")
		}
	}
}

func TestMemoryAuditLogger_QueryNewestFirst(t *testing.T) {
	logger := NewMemoryAuditLogger(10)
	ctx := context.Background()
	base := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

	// Logged oldest first; Query should reverse that
	for i := 0; i < 3; i++ {
		_ = logger.Log(ctx, AuditEvent{
			EventType: "gate.run",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		})
	}

	events, err := logger.Query(ctx, AuditFilter{})
	if err != nil {
		t.Fatalf("Query should not error: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("Query returned %d events, want 3", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.After(events[i-1].Timestamp) {
			t.Errorf("events out of order: index %d is newer than index %d", i, i-1)
		}
	}
	if !events[0].Timestamp.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("first event should be the newest, got %v", events[0].Timestamp)
	}
}

func TestMemoryAuditLogger_QueryByEventType(t *testing.T) {
	logger := NewMemoryAuditLogger(10)
	ctx := context.Background()

	_ = logger.Log(ctx, AuditEvent{EventType: "gate.approved"})
	_ = logger.Log(ctx, AuditEvent{EventType: "gate.blocked"})
	_ = logger.Log(ctx, AuditEvent{EventType: "scenario.load"})

	events, _ := logger.Query(ctx, AuditFilter{
		EventTypes: []string{"gate.approved", "gate.blocked"},
	})
	if len(events) != 2 {
		t.Fatalf("Query returned %d events, want 2", len(events))
	}
	for _, event := range events {
		if event.EventType == "scenario.load" {
			t.Error("Query should exclude event types not in the filter")
		}
	}
}

func TestMemoryAuditLogger_QueryByUserID(t *testing.T) {
	logger := NewMemoryAuditLogger(10)
	ctx := context.Background()

	_ = logger.Log(ctx, AuditEvent{EventType: "gate.run", UserID: "alice"})
	_ = logger.Log(ctx, AuditEvent{EventType: "gate.run", UserID: "bob"})
	_ = logger.Log(ctx, AuditEvent{EventType: "gate.run", UserID: "alice"})

	events, _ := logger.Query(ctx, AuditFilter{UserID: "alice"})
	if len(events) != 2 {
		t.Fatalf("Query returned %d events, want 2", len(events))
	}
	for _, event := range events {
		if event.UserID != "alice" {
			t.Errorf("Query returned event for user %q, want alice", event.UserID)
		}
	}
}

func TestMemoryAuditLogger_QueryByOutcome(t *testing.T) {
	logger := NewMemoryAuditLogger(10)
	ctx := context.Background()

	_ = logger.Log(ctx, AuditEvent{EventType: "gate.run", Outcome: "success"})
	_ = logger.Log(ctx, AuditEvent{EventType: "gate.run", Outcome: "failure"})
	_ = logger.Log(ctx, AuditEvent{EventType: "gate.run", Outcome: "success"})

	events, _ := logger.Query(ctx, AuditFilter{Outcome: "failure"})
	if len(events) != 1 {
		t.Fatalf("Query returned %d events, want 1", len(events))
	}
	if events[0].Outcome != "failure" {
		t.Errorf("Outcome = %q, want failure", events[0].Outcome)
	}
}

func TestMemoryAuditLogger_QueryByResource(t *testing.T) {
	logger := NewMemoryAuditLogger(10)
	ctx := context.Background()

	_ = logger.Log(ctx, AuditEvent{EventType: "gate.run", ResourceType: "evaluation", ResourceID: "run_1"})
	_ = logger.Log(ctx, AuditEvent{EventType: "gate.run", ResourceType: "evaluation", ResourceID: "run_2"})
	_ = logger.Log(ctx, AuditEvent{EventType: "scenario.load", ResourceType: "scenario", ResourceID: "prod-gate"})

	byType, _ := logger.Query(ctx, AuditFilter{ResourceType: "evaluation"})
	if len(byType) != 2 {
		t.Errorf("Query by ResourceType returned %d events, want 2", len(byType))
	}

	byID, _ := logger.Query(ctx, AuditFilter{ResourceID: "run_2"})
	if len(byID) != 1 {
		t.Fatalf("Query by ResourceID returned %d events, want 1", len(byID))
	}
	if byID[0].ResourceID != "run_2" {
		t.Errorf("ResourceID = %q, want run_2", byID[0].ResourceID)
	}
}

func TestMemoryAuditLogger_QueryTimeRange(t *testing.T) {
	logger := NewMemoryAuditLogger(10)
	ctx := context.Background()
	base := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_ = logger.Log(ctx, AuditEvent{
			EventType: "gate.run",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		})
	}

	// StartTime is inclusive, EndTime is exclusive
	events, _ := logger.Query(ctx, AuditFilter{
		StartTime: base.Add(1 * time.Hour),
		EndTime:   base.Add(2 * time.Hour),
	})
	if len(events) != 1 {
		t.Fatalf("Query returned %d events, want 1", len(events))
	}
	if !events[0].Timestamp.Equal(base.Add(1 * time.Hour)) {
		t.Errorf("Timestamp = %v, want %v", events[0].Timestamp, base.Add(1*time.Hour))
	}
}

func TestMemoryAuditLogger_QueryLimitAndOffset(t *testing.T) {
	logger := NewMemoryAuditLogger(10)
	ctx := context.Background()
	base := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_ = logger.Log(ctx, AuditEvent{
			EventType: "gate.run",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}

	limited, _ := logger.Query(ctx, AuditFilter{Limit: 2})
	if len(limited) != 2 {
		t.Errorf("Query with Limit 2 returned %d events", len(limited))
	}
	// Newest first: limit keeps the most recent events
	if !limited[0].Timestamp.Equal(base.Add(4 * time.Minute)) {
		t.Errorf("limited[0].Timestamp = %v, want newest", limited[0].Timestamp)
	}

	offset, _ := logger.Query(ctx, AuditFilter{Offset: 3})
	if len(offset) != 2 {
		t.Errorf("Query with Offset 3 returned %d events, want 2", len(offset))
	}

	paged, _ := logger.Query(ctx, AuditFilter{Offset: 1, Limit: 2})
	if len(paged) != 2 {
		t.Fatalf("Query with Offset 1 Limit 2 returned %d events", len(paged))
	}
	if !paged[0].Timestamp.Equal(base.Add(3 * time.Minute)) {
		t.Errorf("paged[0].Timestamp = %v, want second newest", paged[0].Timestamp)
	}
}

func TestMemoryAuditLogger_QueryOffsetBeyondEnd(t *testing.T) {
	logger := NewMemoryAuditLogger(10)
	ctx := context.Background()

	_ = logger.Log(ctx, AuditEvent{EventType: "gate.run"})

	events, err := logger.Query(ctx, AuditFilter{Offset: 5})
	if err != nil {
		t.Fatalf("Query should not error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("Query with offset beyond end returned %d events, want 0", len(events))
	}
}

func TestMemoryAuditLogger_Flush(t *testing.T) {
	logger := NewMemoryAuditLogger(10)
	ctx := context.Background()

	_ = logger.Log(ctx, AuditEvent{EventType: "gate.run"})

	if err := logger.Flush(ctx); err != nil {
		t.Errorf("Flush should not error: %v", err)
	}
	// Flush does not discard events
	if logger.Len() != 1 {
		t.Errorf("Len() = %d after Flush, want 1", logger.Len())
	}
}

func TestMemoryAuditLogger_ConcurrentAccess(t *testing.T) {
	logger := NewMemoryAuditLogger(100)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = logger.Log(ctx, AuditEvent{EventType: "gate.run"})
				_, _ = logger.Query(ctx, AuditFilter{Limit: 5})
				_ = logger.Len()
			}
		}()
	}
	wg.Wait()

	if logger.Len() != 100 {
		t.Errorf("Len() = %d, want 100 (capacity bound)", logger.Len())
	}
}

// ============================================================================
// Metadata Tests
// ============================================================================

func TestNewMetadata(t *testing.T) {
	meta := NewMetadata()

	if meta == nil {
		t.Fatal("NewMetadata should not return nil")
	}
	if meta.Len() != 0 {
		t.Errorf("new Metadata Len() = %d, want 0", meta.Len())
	}
}

func TestMetadata_SetAndGet(t *testing.T) {
	meta := NewMetadata().
		Set("run_id", "run_20250115_090000_a1b2c3d4").
		Set("duration_ms", int64(150))

	value, ok := meta.Get("run_id")
	if !ok {
		t.Fatal("Get should find an existing key")
	}
	if value != "run_20250115_090000_a1b2c3d4" {
		t.Errorf("Get returned %v", value)
	}

	if _, ok := meta.Get("missing"); ok {
		t.Error("Get should return false for a missing key")
	}
}

func TestMetadata_TypedGetters(t *testing.T) {
	now := time.Now()
	meta := NewMetadata().
		Set("scenario", "prod-gate").
		Set("count", 42).
		Set("duration_ms", int64(150)).
		Set("actual", 99.93).
		Set("approved", true).
		Set("started_at", now)

	if s, ok := meta.GetString("scenario"); !ok || s != "prod-gate" {
		t.Errorf("GetString = %q, %v", s, ok)
	}
	if i, ok := meta.GetInt("count"); !ok || i != 42 {
		t.Errorf("GetInt = %d, %v", i, ok)
	}
	if i, ok := meta.GetInt64("duration_ms"); !ok || i != 150 {
		t.Errorf("GetInt64 = %d, %v", i, ok)
	}
	if f, ok := meta.GetFloat64("actual"); !ok || f != 99.93 {
		t.Errorf("GetFloat64 = %f, %v", f, ok)
	}
	if b, ok := meta.GetBool("approved"); !ok || !b {
		t.Errorf("GetBool = %v, %v", b, ok)
	}
	if ts, ok := meta.GetTime("started_at"); !ok || !ts.Equal(now) {
		t.Errorf("GetTime = %v, %v", ts, ok)
	}
}

func TestMetadata_TypedGetters_WrongType(t *testing.T) {
	meta := NewMetadata().Set("count", "not-an-int")

	if _, ok := meta.GetInt("count"); ok {
		t.Error("GetInt should return false for a string value")
	}
	if _, ok := meta.GetString("missing"); ok {
		t.Error("GetString should return false for a missing key")
	}
	if _, ok := meta.GetBool("count"); ok {
		t.Error("GetBool should return false for a string value")
	}
	if _, ok := meta.GetTime("count"); ok {
		t.Error("GetTime should return false for a string value")
	}
}

func TestMetadata_HasAndDelete(t *testing.T) {
	meta := NewMetadata().Set("error", "connection refused")

	if !meta.Has("error") {
		t.Error("Has should find an existing key")
	}

	meta.Delete("error")
	if meta.Has("error") {
		t.Error("Has should not find a deleted key")
	}

	// Deleting a missing key is safe
	meta.Delete("missing")
}

func TestMetadata_Clone(t *testing.T) {
	original := NewMetadata().Set("scenario", "prod-gate")
	clone := original.Clone()

	clone.Set("scenario", "staging-gate")

	if s, _ := original.GetString("scenario"); s != "prod-gate" {
		t.Errorf("Clone should not affect the original, got %q", s)
	}
	if s, _ := clone.GetString("scenario"); s != "staging-gate" {
		t.Errorf("clone value = %q, want staging-gate", s)
	}
}

func TestMetadata_Merge(t *testing.T) {
	base := NewMetadata().Set("env", "prod").Set("version", "0.1.0")
	extra := NewMetadata().Set("version", "0.2.0").Set("run_id", "run_1")

	base.Merge(extra)

	if base.Len() != 3 {
		t.Errorf("merged Len() = %d, want 3", base.Len())
	}
	// Overlapping keys take the merged-in value
	if v, _ := base.GetString("version"); v != "0.2.0" {
		t.Errorf("version = %q, want 0.2.0", v)
	}

	// Merging nil is a no-op
	base.Merge(nil)
	if base.Len() != 3 {
		t.Errorf("Len() after nil merge = %d, want 3", base.Len())
	}
}

func TestMetadata_Keys(t *testing.T) {
	meta := NewMetadata().Set("a", 1).Set("b", 2)

	keys := meta.Keys()
	if len(keys) != 2 {
		t.Fatalf("Keys returned %d entries, want 2", len(keys))
	}
	seen := map[string]bool{}
	for _, k := range keys {
		seen[k] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Errorf("Keys = %v, want a and b", keys)
	}
}

// ============================================================================
// Mock Implementations
// ============================================================================

type mockAuthProvider struct {
	userID string
}

func (p *mockAuthProvider) Validate(ctx context.Context, token string) (*AuthInfo, error) {
	return &AuthInfo{UserID: p.userID}, nil
}

type mockAuthzProvider struct{}

func (p *mockAuthzProvider) Authorize(ctx context.Context, req AuthzRequest) error {
	return nil
}

type mockAuditLogger struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (l *mockAuditLogger) Log(ctx context.Context, event AuditEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

func (l *mockAuditLogger) Query(ctx context.Context, filter AuditFilter) ([]AuditEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]AuditEvent{}, l.events...), nil
}

func (l *mockAuditLogger) Flush(ctx context.Context) error {
	return nil
}
