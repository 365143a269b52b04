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
	"fmt"
	"log/slog"

	"github.com/AleutianAI/fitgate/pkg/logging"
	"github.com/AleutianAI/fitgate/pkg/ux"
	"github.com/AleutianAI/fitgate/pkg/version"
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	personalityLevel string // UX personality level (full/standard/minimal/machine)
	logLevel         string // Minimum log level (debug/info/warn/error)
	logJSON          bool   // JSON log records on stderr instead of colorized text

	validateJSONOutput bool // validate: result as JSON
	checksJSONOutput   bool // checks: catalog as JSON
	initOut            string
	initForce          bool
	servePort          int
	serveRPS           float64
	serveBurst         int

	rootCmd = &cobra.Command{
		Use:   "fitgate",
		Short: "A release gate built from executable fitness functions",
		Long: `Fitgate evaluates a scenario of fitness functions against a release
				candidate and answers with an exit code: 0 approved, 1 blocked,
				2 when the harness itself could not run.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Personality first so every later print is styled consistently.
			if personalityLevel != "" {
				ux.SetPersonalityLevel(ux.ParsePersonalityLevel(personalityLevel))
			} else {
				ux.InitPersonality()
			}

			logger := logging.New(logging.Config{
				Level:   logging.ParseLevel(logLevel),
				Service: "cli",
				JSON:    logJSON,
			})
			slog.SetDefault(logger.Slog())
		},
	}

	// --- Gate Evaluation ---
	evaluateCmd = &cobra.Command{
		Use:     "evaluate",
		Aliases: []string{"eval"},
		Short:   "Run the release gate and exit 0 (approved) or 1 (blocked)",
		Run:     runEvaluate, // Defined in cmd_evaluate.go
	}

	validateCmd = &cobra.Command{
		Use:   "validate <scenario>",
		Short: "Validate a scenario document without running it",
		Args:  cobra.ExactArgs(1),
		Run:   runValidate, // Defined in cmd_validate.go
	}

	// --- Capacity Planning ---
	capacityCmd = &cobra.Command{
		Use:   "capacity",
		Short: "Estimate concurrent-user capacity for an architecture",
		Run:   runCapacity, // Defined in cmd_capacity.go
	}

	// --- Catalog / Scaffolding ---
	checksCmd = &cobra.Command{
		Use:   "checks",
		Short: "List the built-in check kinds and their reference defaults",
		Run:   runChecks, // Defined in cmd_checks.go
	}

	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a starter scenario, interactively when on a terminal",
		Run:   runInit, // Defined in cmd_init.go
	}

	// --- Service ---
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP evaluation service",
		Run:   runServe, // Defined in cmd_serve.go
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the full version banner",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.String())
		},
	}
)

// init runs when the Go program starts
func init() {
	rootCmd.PersistentFlags().StringVar(&personalityLevel, "personality", "",
		"Output style: full (default on a terminal), standard, minimal, or machine (CI)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Minimum log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false,
		"Emit JSON log records on stderr")

	// evaluate and capacity bind their flags next to their run
	// functions; everything else is wired here.
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(capacityCmd)

	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateJSONOutput, "json", false,
		"Output the validation result as JSON")

	rootCmd.AddCommand(checksCmd)
	checksCmd.Flags().BoolVar(&checksJSONOutput, "json", false,
		"Output the catalog as JSON")

	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&initOut, "out", "o", "fitgate.yaml",
		"Path for the generated scenario")
	initCmd.Flags().BoolVar(&initForce, "force", false,
		"Overwrite the scenario file if it already exists")

	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 8090,
		"TCP port for the evaluation service")
	serveCmd.Flags().Float64Var(&serveRPS, "rps", 50,
		"Request budget per second for /v1 (negative disables limiting)")
	serveCmd.Flags().IntVar(&serveBurst, "burst", 100,
		"Token bucket burst for the /v1 rate limiter")

	rootCmd.AddCommand(versionCmd)
}
