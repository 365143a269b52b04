// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"os"

	"github.com/AleutianAI/fitgate/pkg/extensions"
	"github.com/AleutianAI/fitgate/services/gateserver"
	"github.com/spf13/cobra"
)

// auditTrailCapacity bounds the in-memory audit ring the open source
// service keeps.
const auditTrailCapacity = 1000

// runServe executes the serve command.
//
// # Description
//
// Runs the HTTP evaluation service until the process is stopped. The
// open source build keeps an in-memory audit trail and accepts every
// bearer token; hosted deployments inject their own providers through
// extensions.ServiceOptions.
//
// Telemetry comes from the environment (OTEL_EXPORTER_OTLP_ENDPOINT
// and friends) with graceful degradation when no collector is up.
//
// # Exit Codes
//
//   - 2: The service could not start or its listener failed
func runServe(cmd *cobra.Command, _ []string) {
	opts := extensions.DefaultOptions().
		WithAudit(extensions.NewMemoryAuditLogger(auditTrailCapacity))

	svc, err := gateserver.New(gateserver.Config{
		Port:              servePort,
		GinMode:           "release",
		RequestsPerSecond: serveRPS,
		Burst:             serveBurst,
	}, &opts)
	if err != nil {
		OutputError(false, "cannot configure service", err)
		os.Exit(CLIExitError)
	}

	if err := svc.Run(); err != nil {
		OutputError(false, "service stopped", err)
		os.Exit(CLIExitError)
	}
}
