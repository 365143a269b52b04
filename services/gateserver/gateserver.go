// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package gateserver provides the HTTP evaluation service for fitgate.
//
// This package contains the main Service type that coordinates all
// components of the server: HTTP routing, the evaluation engine,
// rate limiting, and observability infrastructure.
//
// # Hosted Integration
//
// The gate server supports dependency injection via extensions.ServiceOptions,
// enabling hosted deployments to provide custom implementations of:
//   - AuthProvider: Custom authentication (JWT, API keys)
//   - AuthzProvider: Role-based access control
//   - AuditLogger: Compliance audit logging
//
// # Usage
//
// Open source (uses no-op defaults):
//
//	cfg := gateserver.Config{Port: 8090}
//	svc, err := gateserver.New(cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc.Run()
//
// Hosted (with custom implementations):
//
//	opts := &extensions.ServiceOptions{
//	    AuthProvider: hostedAuth,
//	    AuditLogger:  hostedAudit,
//	}
//	svc, err := gateserver.New(cfg, opts)
//
// # Import Path
//
// Hosted deployments import this package as:
//
//	import "github.com/AleutianAI/fitgate/services/gateserver"
package gateserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/fitgate/pkg/extensions"
	"github.com/AleutianAI/fitgate/services/gateserver/middleware"
	"github.com/AleutianAI/fitgate/services/gateserver/routes"
	"github.com/AleutianAI/fitgate/services/telemetry"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Service defines the contract for the gate server.
//
// # Description
//
// Service abstracts the server lifecycle, enabling testing and
// alternative implementations. The interface follows the minimal surface
// area principle - only essential lifecycle methods are exposed.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use. Run() blocks and should
// only be called once per instance.
//
// # Limitations
//
//   - No graceful shutdown method yet (planned for future)
//   - Run() blocks until server error
//
// # Assumptions
//
//   - Service is fully initialized before Run() is called
//   - Run() is called at most once per Service instance
type Service interface {
	// Run starts the HTTP server and blocks until shutdown or error.
	//
	// # Description
	//
	// Starts the Gin HTTP server on the configured port. This method
	// blocks until the server stops (due to error or shutdown signal).
	//
	// # Outputs
	//
	//   - error: Non-nil if server fails to start or encounters fatal error
	//
	// # Examples
	//
	//   if err := svc.Run(); err != nil {
	//       log.Fatalf("server error: %v", err)
	//   }
	//
	// # Assumptions
	//
	//   - Service was successfully created via New()
	//   - Port is available and not in use
	Run() error

	// Router returns the underlying Gin engine for testing.
	//
	// # Description
	//
	// Provides access to the configured Gin router, primarily for
	// integration testing where direct HTTP calls are needed.
	//
	// # Outputs
	//
	//   - *gin.Engine: The configured router with all routes registered
	//
	// # Limitations
	//
	//   - Should not be used to modify routes after construction
	Router() *gin.Engine
}

// =============================================================================
// Configuration
// =============================================================================

// Config holds gate server configuration options.
//
// # Description
//
// Config centralizes all configuration for the gate server. Values can
// be populated from environment variables, config files, or
// programmatically for testing.
//
// # Required Fields
//
// None - all fields have sensible defaults.
//
// # Examples
//
//	// Minimal config (uses all defaults)
//	cfg := Config{}
//
//	// Custom port with telemetry off, for tests
//	cfg := Config{
//	    Port: 18090,
//	    Telemetry: &telemetry.Config{
//	        TraceExporter:  "none",
//	        MetricExporter: "none",
//	    },
//	}
type Config struct {
	// Port is the HTTP server port. Default: 8090
	Port int

	// GinMode sets the Gin framework mode.
	// Valid values: "debug", "release", "test"
	// Default: uses GIN_MODE env var or "debug"
	GinMode string

	// RequestsPerSecond is the refill rate of the shared request
	// limiter. Zero uses the default; negative disables limiting.
	// Default: 50
	RequestsPerSecond float64

	// Burst is the request limiter bucket size. Default: 100
	Burst int

	// Telemetry overrides the telemetry configuration.
	// Nil uses telemetry.DefaultConfig() with AllowDegraded set, so the
	// server still starts when no collector is reachable.
	Telemetry *telemetry.Config
}

// =============================================================================
// Implementation
// =============================================================================

// service implements Service for production use.
//
// # Description
//
// service is the main implementation that coordinates:
//   - HTTP routing via Gin
//   - The scenario and gate evaluation engine
//   - Token-bucket rate limiting
//   - OpenTelemetry tracing and metrics
//
// # Thread Safety
//
// Thread-safe after construction. All fields are read-only after New() returns.
//
// # Limitations
//
//   - No hot-reload of configuration
type service struct {
	config   Config
	opts     extensions.ServiceOptions
	router   *gin.Engine
	metrics  *telemetry.Metrics
	shutdown func(context.Context) error
}

// =============================================================================
// Constructor
// =============================================================================

// New creates a new gate server Service with the given configuration.
//
// # Description
//
// New initializes all server components:
//  1. Applies default configuration for missing values
//  2. Initializes OpenTelemetry tracing and metrics
//  3. Registers the audit backlog gauge when the sink reports its size
//  4. Sets up HTTP routes with extension options
//
// If opts is nil, DefaultOptions() is used (no-op implementations).
//
// # Inputs
//
//   - cfg: Service configuration. Zero values use defaults.
//   - opts: Extension options for hosted features. May be nil.
//
// # Outputs
//
//   - Service: Ready-to-run gate server
//   - error: Non-nil if initialization fails
//
// # Examples
//
//	// Open source usage (no-op extensions)
//	cfg := Config{Port: 8090}
//	svc, err := New(cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(svc.Run())
//
//	// Hosted usage (custom extensions)
//	opts := &extensions.ServiceOptions{
//	    AuthProvider: myAuthProvider,
//	    AuditLogger:  myAuditLogger,
//	}
//	svc, err := New(cfg, opts)
func New(cfg Config, opts *extensions.ServiceOptions) (Service, error) {
	s := &service{
		config: applyConfigDefaults(cfg),
	}

	// Apply extension options (use defaults if nil)
	if opts != nil {
		s.opts = *opts
	} else {
		s.opts = extensions.DefaultOptions()
	}

	if err := s.initTelemetry(); err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	s.initRouter()

	return s, nil
}

// =============================================================================
// Service Interface Methods
// =============================================================================

// Run starts the HTTP server and blocks until shutdown or error.
func (s *service) Run() error {
	defer s.cleanup()

	addr := fmt.Sprintf(":%d", s.config.Port)
	slog.Info("Starting gate server", "port", s.config.Port)

	return s.router.Run(addr)
}

// Router returns the underlying Gin engine for testing.
func (s *service) Router() *gin.Engine {
	return s.router
}

// =============================================================================
// Private Initialization Methods
// =============================================================================

// applyConfigDefaults fills in missing configuration values.
func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = 8090
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = 50
	}
	if cfg.Burst == 0 {
		cfg.Burst = 100
	}
	return cfg
}

// initTelemetry brings up the tracing and metrics stack and creates the
// service meter instruments.
func (s *service) initTelemetry() error {
	tcfg := telemetry.DefaultConfig()
	// A gate server should come up even when the collector is down.
	tcfg.AllowDegraded = true
	if s.config.Telemetry != nil {
		tcfg = *s.config.Telemetry
	}

	shutdown, err := telemetry.Init(context.Background(), tcfg)
	if err != nil {
		return err
	}
	s.shutdown = shutdown

	meter := otel.Meter("fitgate/gateserver")
	metrics, err := telemetry.NewMetrics(meter)
	if err != nil {
		return err
	}
	s.metrics = metrics

	// Sinks that report their backlog (such as the in-memory audit
	// logger) get a gauge; others are skipped.
	if sized, ok := s.opts.AuditLogger.(interface{ Len() int }); ok {
		sizeFunc := func() int64 { return int64(sized.Len()) }
		if _, err := metrics.RegisterAuditBacklog(meter, sizeFunc); err != nil {
			slog.Warn("Failed to register audit backlog gauge", "error", err)
		}
	}

	return nil
}

// initRouter builds the Gin engine with the middleware chain and routes.
//
// gin.New is used instead of gin.Default so the request log lines come
// from the structured logger rather than Gin's own writer.
func (s *service) initRouter() {
	if s.config.GinMode != "" {
		gin.SetMode(s.config.GinMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		otelgin.Middleware("fitgate-gateserver"),
		middleware.RequestLogger(slog.Default()),
		middleware.RequestMetrics(s.metrics),
	)

	var limiter *rate.Limiter
	if s.config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.config.RequestsPerSecond), s.config.Burst)
	}

	routes.SetupRoutes(router, s.opts, s.metrics, limiter)
	s.router = router
}

// cleanup releases telemetry resources on shutdown.
func (s *service) cleanup() {
	if s.shutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.shutdown(ctx); err != nil {
		slog.Error("failed to shutdown telemetry", "error", err)
	}
}

// Compile-time interface compliance check.
var _ Service = (*service)(nil)
