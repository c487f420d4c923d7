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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/beacon/cmd/beacon/config"
	"github.com/AleutianAI/beacon/pkg/ux"
	"github.com/AleutianAI/beacon/services/locator/scan"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	initForce      bool // Overwrite an existing config file
	initJSONOutput bool // JSON result output
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// initCmd writes a starter configuration file into the scan root.
//
// # Description
//
// Creates <path>/.beacon.yaml with every setting present and commented
// out, so the defaults stay in effect until a line is uncommented. The
// scan, check, and watch commands read this file automatically.
//
// # Examples
//
//	beacon init                # Write src/.beacon.yaml
//	beacon init ./frontend     # Write ./frontend/.beacon.yaml
//	beacon init --force        # Replace an existing file
//
// # Exit Codes
//
//	0 - Config file written
//	1 - Write failed
//	2 - Invalid path or file already exists
var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter .beacon.yaml into the scan root",
	Long: `Write a commented starter configuration file.

The file lands at <path>/.beacon.yaml, next to the templates it
configures. All settings ship commented out; uncomment a line to
override the built-in default.

Examples:
  beacon init
  beacon init ./frontend
  beacon init --force

Exit Codes:
  0 = Config file written
  1 = Write failed
  2 = Invalid path or file already exists`,
	Args: cobra.MaximumNArgs(1),
	Run:  runInitCommand,
}

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false,
		"Overwrite an existing config file")
	initCmd.Flags().BoolVar(&initJSONOutput, "json", false,
		"Output the result as JSON")

	rootCmd.AddCommand(initCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runInitCommand executes the init command.
func runInitCommand(cmd *cobra.Command, args []string) {
	root := scan.DefaultRoot
	if len(args) > 0 {
		root = args[0]
	}

	info, err := os.Stat(root)
	if err != nil {
		initError(fmt.Sprintf("Path %s does not exist", root), err)
		os.Exit(scan.ExitBadArgs)
	}
	if !info.IsDir() {
		initError(fmt.Sprintf("Path %s is not a directory", root), nil)
		os.Exit(scan.ExitBadArgs)
	}

	target := filepath.Join(root, config.FileName)
	if _, err := os.Stat(target); err == nil && !initForce {
		initError(fmt.Sprintf("%s already exists (use --force to overwrite)", target), nil)
		os.Exit(scan.ExitBadArgs)
	}

	if err := os.WriteFile(target, []byte(config.DefaultYAML), 0644); err != nil {
		initError(fmt.Sprintf("Failed to write %s", target), err)
		os.Exit(scan.ExitFailure)
	}

	if initJSONOutput {
		outputJSON(map[string]any{
			"api_version": scan.APIVersion,
			"success":     true,
			"path":        target,
		})
	} else {
		ux.Success(fmt.Sprintf("Wrote %s", target))
		ux.Muted("All settings are commented out. Uncomment a line to override the default,")
		ux.Muted("then run beacon scan.")
	}
	os.Exit(scan.ExitSuccess)
}

// initError reports an init failure in the selected output mode.
func initError(msg string, err error) {
	if initJSONOutput {
		if err == nil {
			err = errors.New(msg)
		} else {
			err = fmt.Errorf("%s: %v", msg, err)
		}
		outputErrorJSON(err)
	} else {
		outputError(msg, err)
	}
}
