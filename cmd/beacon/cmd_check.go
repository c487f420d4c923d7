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
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/beacon/pkg/ux"
	"github.com/AleutianAI/beacon/services/locator/check"
	"github.com/AleutianAI/beacon/services/locator/scan"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	checkOut         string   // Output directory override
	checkFormats     []string // Artifact formats to verify
	checkExclude     []string // Glob patterns to exclude
	checkExts        []string // Template extensions override
	checkScriptExts  []string // Script extensions override
	checkMaxWorkers  int      // Worker pool ceiling (0 = auto)
	checkMaxFileSize int64    // Per-file size cap in bytes (0 = default)
	checkNoDiff      bool     // Suppress unified diffs in text output
	checkJSONOutput  bool     // Output result as JSON
	checkQuiet       bool     // Only exit code, no output
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// checkCmd verifies generated artifacts against the source tree.
//
// # Description
//
// Regenerates all artifacts in memory and byte-compares them against
// the files on disk. Reports missing, changed, and stale artifacts
// without taking the scan lock or writing anything, so it is safe to
// run concurrently with editors and CI jobs.
//
// # Examples
//
//	beacon check                 # Verify artifacts for ./src
//	beacon check ./frontend      # Verify specific path
//	beacon check --json          # JSON result for scripting
//	beacon check --no-diff       # Drift list without diffs
//
// # Exit Codes
//
//	0 - Artifacts match the source tree
//	1 - Drift detected
//	2 - Invalid arguments or check failure
var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Verify that generated artifacts match the source tree",
	Long: `Verify that generated locator artifacts are up to date.

The check regenerates every artifact in memory and compares it byte for
byte against the output directory. Use it in CI to force a rerun of
beacon scan after template changes.

Detected drift kinds:
  missing  the artifact has never been generated or was deleted
  changed  the source tree moved ahead of the artifact
  stale    the page object belongs to no scanned template

Examples:
  beacon check
  beacon check ./frontend --out generated
  beacon check --json --quiet

Exit Codes:
  0 = Clean
  1 = Drift detected
  2 = Invalid arguments or check failure`,
	Args: cobra.MaximumNArgs(1),
	Run:  runCheckCommand,
}

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	checkCmd.Flags().StringVarP(&checkOut, "out", "o", "",
		"Output directory holding the artifacts (default \"beacon\")")
	checkCmd.Flags().StringSliceVarP(&checkFormats, "format", "f", nil,
		"Artifact formats to verify: json, yaml, pageobject (default json)")
	checkCmd.Flags().StringSliceVar(&checkExclude, "exclude", nil,
		"Glob patterns to skip")
	checkCmd.Flags().StringSliceVar(&checkExts, "ext", nil,
		"Template extensions to scan (default .vue,.html,.htm)")
	checkCmd.Flags().StringSliceVar(&checkScriptExts, "script-ext", nil,
		"Script extensions to harvest (default .js,.ts,.jsx,.tsx)")
	checkCmd.Flags().IntVar(&checkMaxWorkers, "max-workers", 0,
		"Maximum parallel extraction workers (0 = auto)")
	checkCmd.Flags().Int64Var(&checkMaxFileSize, "max-file-size", 0,
		"Skip files larger than this size in bytes (0 = 10MB default)")
	checkCmd.Flags().BoolVar(&checkNoDiff, "no-diff", false,
		"Suppress unified diffs in text output")
	checkCmd.Flags().BoolVar(&checkJSONOutput, "json", false,
		"Output the check result as JSON for scripting")
	checkCmd.Flags().BoolVar(&checkQuiet, "quiet", false,
		"Only exit code, no output")

	rootCmd.AddCommand(checkCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runCheckCommand executes the check command.
func runCheckCommand(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	rootArg := ""
	if len(args) > 0 {
		rootArg = args[0]
	}

	cfg, err := loadScanConfig(rootArg, scanOverrides{
		out:          checkOut,
		formats:      checkFormats,
		exclude:      checkExclude,
		templateExts: checkExts,
		scriptExts:   checkScriptExts,
		maxWorkers:   checkMaxWorkers,
		maxFileSize:  checkMaxFileSize,
	})
	if err != nil {
		outputError("Invalid configuration", err)
		os.Exit(scan.ExitBadArgs)
	}

	checker, err := check.NewChecker(cfg)
	if err != nil {
		outputError("Invalid configuration", err)
		os.Exit(scan.ExitBadArgs)
	}

	var result *check.Result
	if checkQuiet || checkJSONOutput {
		result, err = checker.Run(ctx)
	} else {
		sp := ux.NewSpinner(ux.SpinnerDots, "Regenerating artifacts")
		sp.Start()
		result, err = checker.Run(ctx)
		sp.Stop()
	}
	if err != nil {
		if checkJSONOutput {
			outputErrorJSON(err)
		} else {
			outputError("Check failed", err)
		}
		os.Exit(scan.ExitBadArgs)
	}

	if !checkQuiet {
		if checkJSONOutput {
			outputJSON(result)
		} else {
			outputCheckResultText(result)
		}
	}

	os.Exit(result.ExitCode())
}

// outputCheckResultText renders the check result for humans.
func outputCheckResultText(result *check.Result) {
	if result.Clean {
		ux.Success(fmt.Sprintf("Artifacts up to date (%d checked)", result.Checked))
		return
	}

	ux.Title(fmt.Sprintf("Drift detected in %d of %d artifacts", len(result.Drifts), result.Checked))
	fmt.Println()

	for _, drift := range result.Drifts {
		switch drift.Kind {
		case check.DriftMissing:
			ux.FileStatus(drift.Path, ux.IconError, "missing, run beacon scan")
		case check.DriftStale:
			ux.FileStatus(drift.Path, ux.IconWarning, "stale, no matching template")
		case check.DriftChanged:
			reason := fmt.Sprintf("changed (+%d -%d)", drift.LinesAdded, drift.LinesRemoved)
			ux.FileStatus(drift.Path, ux.IconError, reason)
			if !checkNoDiff && drift.Diff != "" {
				fmt.Println(drift.Diff)
			}
		}
	}

	for _, advice := range result.Advisories {
		ux.Warning(advice)
	}

	fmt.Println()
	ux.Muted("Run beacon scan to regenerate.")
}
