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
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/beacon/pkg/ux"
	"github.com/AleutianAI/beacon/services/locator/scan"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	scanOut         string   // Output directory override
	scanFormats     []string // Artifact formats to emit
	scanExclude     []string // Glob patterns to exclude
	scanExts        []string // Template extensions override
	scanScriptExts  []string // Script extensions override
	scanMaxWorkers  int      // Worker pool ceiling (0 = auto)
	scanMaxFileSize int64    // Per-file size cap in bytes (0 = default)
	scanDryRun      bool     // Discover and count without writing
	scanJSONOutput  bool     // Output report as JSON
	scanQuiet       bool     // Suppress progress output
	scanVerbose     bool     // Show detailed output
	scanTelemetry   string   // Telemetry exporter (none/stdout)
	scanLogJSON     bool     // JSON log format on stderr
	scanLogFile     string   // Log file path
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// scanCmd is the main scan command.
//
// # Description
//
// Scans a frontend source tree for UI element locators, resolves
// constant bindings from scripts, and writes locator maps and page
// objects to the output directory.
//
// # Examples
//
//	beacon scan                          # Scan ./src
//	beacon scan ./frontend               # Scan specific path
//	beacon scan --format json,pageobject # Emit multiple formats
//	beacon scan --json                   # JSON report for scripting
//	beacon scan --dry-run                # Count files without writing
//
// # Exit Codes
//
//	0 - Success (including per-file warnings)
//	1 - Scan failed
//	2 - Invalid arguments
//
// # Limitations
//
//   - Only one scan can run per output directory at a time (file lock)
//   - Requires write permission on the output directory
var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan templates and generate locator artifacts",
	Long: `Scan a frontend source tree and generate locator artifacts.

The scan runs in two phases. Phase one harvests exported string
constants from scripts and script blocks. Phase two extracts locators
from templates, resolving dynamic bindings against the constant table,
and writes the selected artifact formats.

Files that cannot be read or parsed are reported and skipped; they
never abort the scan.

Examples:
  beacon scan
  beacon scan ./frontend
  beacon scan --out generated --format json,yaml,pageobject
  beacon scan --exclude "legacy/*" --exclude "*.stories.vue"
  beacon scan --json --quiet

Exit Codes:
  0 = Success (per-file warnings allowed)
  1 = Scan failed (lock held, root missing, write failure)
  2 = Invalid arguments`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScanCommand,
}

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	scanCmd.Flags().StringVarP(&scanOut, "out", "o", "",
		"Output directory for artifacts (default \"beacon\")")
	scanCmd.Flags().StringSliceVarP(&scanFormats, "format", "f", nil,
		"Artifact formats: json, yaml, pageobject (default json)")
	scanCmd.Flags().StringSliceVar(&scanExclude, "exclude", nil,
		"Glob patterns to skip (e.g., 'legacy/*,*.stories.vue')")
	scanCmd.Flags().StringSliceVar(&scanExts, "ext", nil,
		"Template extensions to scan (default .vue,.html,.htm)")
	scanCmd.Flags().StringSliceVar(&scanScriptExts, "script-ext", nil,
		"Script extensions to harvest (default .js,.ts,.jsx,.tsx)")
	scanCmd.Flags().IntVar(&scanMaxWorkers, "max-workers", 0,
		"Maximum parallel extraction workers (0 = auto)")
	scanCmd.Flags().Int64Var(&scanMaxFileSize, "max-file-size", 0,
		"Skip files larger than this size in bytes (0 = 10MB default)")
	scanCmd.Flags().BoolVar(&scanDryRun, "dry-run", false,
		"Discover and count files without extracting or writing")
	scanCmd.Flags().BoolVar(&scanJSONOutput, "json", false,
		"Output the scan report as JSON for scripting")
	scanCmd.Flags().BoolVar(&scanQuiet, "quiet", false,
		"Suppress progress output")
	scanCmd.Flags().BoolVarP(&scanVerbose, "verbose", "v", false,
		"Show per-file progress and debug logs")
	scanCmd.Flags().StringVar(&scanTelemetry, "telemetry", "none",
		"Telemetry exporter: none or stdout")
	scanCmd.Flags().BoolVar(&scanLogJSON, "log-json", false,
		"Write stderr logs as JSON")
	scanCmd.Flags().StringVar(&scanLogFile, "log-file", "",
		"Also write logs to this file (always JSON)")

	rootCmd.AddCommand(scanCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runScanCommand executes the scan command.
func runScanCommand(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	rootArg := ""
	if len(args) > 0 {
		rootArg = args[0]
	}

	logger := initLogging(scanLogJSON, scanLogFile, scanQuiet || scanJSONOutput, scanVerbose)
	defer logger.Close()

	shutdown, err := initTelemetry(ctx, scanTelemetry)
	if err != nil {
		outputError("Failed to initialize telemetry", err)
		os.Exit(scan.ExitBadArgs)
	}
	defer shutdown(context.Background())

	cfg, err := loadScanConfig(rootArg, scanOverrides{
		out:          scanOut,
		formats:      scanFormats,
		exclude:      scanExclude,
		templateExts: scanExts,
		scriptExts:   scanScriptExts,
		maxWorkers:   scanMaxWorkers,
		maxFileSize:  scanMaxFileSize,
		dryRun:       scanDryRun,
	})
	if err != nil {
		outputError("Invalid configuration", err)
		os.Exit(scan.ExitBadArgs)
	}

	if !scanQuiet && !scanJSONOutput && ux.ShouldShowProgress() {
		cfg.Progress = scanProgressPrinter()
	}

	scanner, err := scan.NewScanner(cfg)
	if err != nil {
		outputError("Invalid configuration", err)
		os.Exit(scan.ExitBadArgs)
	}

	report, err := scanner.Run(ctx)
	if err != nil {
		if scanJSONOutput {
			outputErrorJSON(err)
		} else {
			outputError("Scan failed", err)
		}
		os.Exit(scan.ExitFailure)
	}

	if scanJSONOutput {
		outputJSON(report)
	} else if !scanQuiet {
		outputScanResultText(report)
	}

	os.Exit(scan.ExitSuccess)
}

// scanProgressPrinter returns a progress callback that renders phase
// lines and an extraction progress bar.
func scanProgressPrinter() scan.ProgressCallback {
	inBar := false
	endBar := func() {
		if inBar {
			fmt.Println()
			inBar = false
		}
	}

	return func(p scan.Progress) {
		switch p.Phase {
		case "discovering":
			ux.Info("Discovering source files...")
		case "harvesting":
			ux.Info("Harvesting constants...")
		case "extracting":
			if p.FilesTotal > 0 {
				fmt.Printf("\r%s %d/%d", ux.ProgressBar(p.FilesScanned, p.FilesTotal, 30),
					p.FilesScanned, p.FilesTotal)
				inBar = true
			}
		case "emitting":
			endBar()
			ux.Info("Generating artifacts...")
		case "writing":
			ux.Info("Writing artifacts...")
		case "complete":
			endBar()
		}
	}
}

// outputScanResultText renders the report for humans.
func outputScanResultText(report *scan.Report) {
	var b strings.Builder
	fmt.Fprintf(&b, "Files scanned:   %d\n", report.FilesScanned)
	fmt.Fprintf(&b, "Script files:    %d\n", report.ScriptFiles)
	fmt.Fprintf(&b, "Locators found:  %d\n", report.LocatorsFound)
	fmt.Fprintf(&b, "Dropped:         %d\n", report.Dropped)
	if report.FilesFailed > 0 {
		fmt.Fprintf(&b, "Files failed:    %d\n", report.FilesFailed)
	}
	fmt.Fprintf(&b, "Duration:        %dms", report.DurationMs)

	title := "Scan " + report.Root
	if report.DryRun {
		title += " (dry run)"
	}
	ux.Box(title, b.String())

	ux.Summary(report.ByRobustness["robust"], report.ByRobustness["fragile"],
		report.Dropped, report.LocatorsFound)

	if len(report.Artifacts) > 0 {
		fmt.Println()
		for _, artifact := range report.Artifacts {
			ux.FileStatus(artifact, ux.IconSuccess, "")
		}
	}

	for _, warning := range report.Warnings {
		ux.Warning(warning)
	}
	for _, advice := range report.Advisories {
		ux.Info(advice)
	}
	for _, failure := range report.Failures {
		ux.Error(failure)
	}
}
