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
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/AleutianAI/beacon/cmd/beacon/config"
	"github.com/AleutianAI/beacon/pkg/logging"
	"github.com/AleutianAI/beacon/services/locator/scan"
	"github.com/AleutianAI/beacon/services/locator/telemetry"
)

// =============================================================================
// CONFIG RESOLUTION
// =============================================================================

// scanOverrides carries flag values that take precedence over the
// project config file. Zero values mean "flag not set".
type scanOverrides struct {
	out          string
	formats      []string
	exclude      []string
	templateExts []string
	scriptExts   []string
	maxWorkers   int
	maxFileSize  int64
	dryRun       bool
}

// loadScanConfig resolves the effective scan configuration.
//
// Precedence, lowest to highest: built-in defaults, the optional
// .beacon.yaml at the scan root, then command-line flags. Exclude
// patterns accumulate across the layers instead of replacing.
func loadScanConfig(rootArg string, over scanOverrides) (scan.Config, error) {
	root := rootArg
	if root == "" {
		root = scan.DefaultRoot
	}

	cfg := scan.DefaultConfig(root)
	cfg.GeneratorVersion = Version

	fileCfg, err := config.Load(root)
	if err != nil {
		return cfg, err
	}
	fileCfg.Apply(&cfg)

	if over.out != "" {
		cfg.OutputDir = over.out
	}
	if len(over.formats) > 0 {
		cfg.Formats = over.formats
	}
	if len(over.exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, over.exclude...)
	}
	if len(over.templateExts) > 0 {
		cfg.TemplateExtensions = over.templateExts
	}
	if len(over.scriptExts) > 0 {
		cfg.ScriptExtensions = over.scriptExts
	}
	if over.maxWorkers > 0 {
		cfg.MaxWorkers = over.maxWorkers
	}
	if over.maxFileSize > 0 {
		cfg.MaxFileSize = over.maxFileSize
	}
	cfg.DryRun = over.dryRun

	return cfg, nil
}

// =============================================================================
// LOGGING AND TELEMETRY SETUP
// =============================================================================

// initLogging builds the process logger from the shared logging flags
// and installs it as the slog default.
func initLogging(jsonLogs bool, logFile string, quiet, verbose bool) *logging.Logger {
	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}

	logger := logging.New(logging.Config{
		Level: level,
		File:  logFile,
		JSON:  jsonLogs,
		Quiet: quiet,
	})
	logging.SetDefault(logger)
	return logger
}

// initTelemetry starts the telemetry stack when an exporter is
// requested. Returns a shutdown function, which may be a no-op.
func initTelemetry(ctx context.Context, exporter string) (func(context.Context) error, error) {
	if exporter == "" || exporter == "none" {
		return func(context.Context) error { return nil }, nil
	}

	cfg := telemetry.DefaultConfig()
	cfg.ServiceVersion = Version
	cfg.TraceExporter = exporter
	cfg.MetricExporter = exporter
	return telemetry.Init(ctx, cfg)
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

// outputJSON writes v to stdout as indented JSON.
func outputJSON(v any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		os.Exit(scan.ExitFailure)
	}
}

// outputError writes an error message to stderr.
func outputError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
}

// outputErrorJSON writes an error to stdout as a JSON object.
func outputErrorJSON(err error) {
	outputJSON(map[string]interface{}{
		"api_version": scan.APIVersion,
		"success":     false,
		"error":       err.Error(),
	})
}
