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
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/beacon/services/locator/emit"
	"github.com/AleutianAI/beacon/services/locator/scan"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var versionJSONOutput bool // JSON result output

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// versionCmd reports the tool, report, and artifact schema versions.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the beacon version along with the report API version and
the artifact schema version it emits.`,
	Args: cobra.NoArgs,
	Run:  runVersionCommand,
}

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	versionCmd.Flags().BoolVar(&versionJSONOutput, "json", false,
		"Output version information as JSON")

	rootCmd.AddCommand(versionCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runVersionCommand executes the version command.
func runVersionCommand(cmd *cobra.Command, args []string) {
	if versionJSONOutput {
		outputJSON(map[string]string{
			"version":        Version,
			"api_version":    scan.APIVersion,
			"schema_version": emit.SchemaVersion,
			"go_version":     runtime.Version(),
			"os":             runtime.GOOS,
			"arch":           runtime.GOARCH,
		})
	} else {
		fmt.Printf("beacon %s\n", Version)
		fmt.Printf("  report api:      %s\n", scan.APIVersion)
		fmt.Printf("  artifact schema: %s\n", emit.SchemaVersion)
		fmt.Printf("  go:              %s (%s/%s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	}
	os.Exit(scan.ExitSuccess)
}
