// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command gateserver starts the fitgate evaluation HTTP server.
//
// This is the entry point for the containerized gate service. It reads
// configuration from environment variables and starts the server; use
// `fitgate serve` for interactive runs.
//
// # Environment Variables
//
//   - FITGATE_PORT: HTTP server port (default: 8090)
//   - FITGATE_RPS: evaluation requests per second, negative disables limiting (default: 50)
//   - FITGATE_BURST: rate limiter burst size (default: 100)
//   - FITGATE_AUDIT_CAPACITY: in-memory audit trail size (default: 1000)
//   - GIN_MODE: gin engine mode (default: release)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OpenTelemetry collector (default: localhost:4317)
//
// # Usage
//
//	# Build
//	go build -o gateserver ./cmd/gateserver
//
//	# Run
//	./gateserver
//
//	# Or via container
//	podman-compose up gateserver
package main

import (
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/AleutianAI/fitgate/pkg/extensions"
	"github.com/AleutianAI/fitgate/services/gateserver"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Build configuration from environment variables
	cfg := gateserver.Config{
		Port:              getEnvInt("FITGATE_PORT", 8090),
		GinMode:           getEnvString("GIN_MODE", "release"),
		RequestsPerSecond: getEnvFloat("FITGATE_RPS", 50),
		Burst:             getEnvInt("FITGATE_BURST", 100),
	}

	slog.Info("Starting gateserver",
		"port", cfg.Port,
		"rps", cfg.RequestsPerSecond,
		"burst", cfg.Burst,
	)

	// Create the service with default (no-op) extension options plus an
	// in-memory audit trail. Enterprise builds pass custom ServiceOptions
	// here.
	opts := extensions.DefaultOptions().
		WithAudit(extensions.NewMemoryAuditLogger(getEnvInt("FITGATE_AUDIT_CAPACITY", 1000)))

	svc, err := gateserver.New(cfg, &opts)
	if err != nil {
		log.Fatalf("Failed to create gateserver: %v", err)
	}

	// Run the server (blocks until shutdown)
	if err := svc.Run(); err != nil {
		log.Fatalf("Gateserver error: %v", err)
	}
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat returns the environment variable as float64 or a default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
