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
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/beacon/pkg/ux"
	"github.com/AleutianAI/beacon/services/locator/scan"
	"github.com/AleutianAI/beacon/services/locator/watch"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	watchOut         string        // Output directory override
	watchFormats     []string      // Artifact formats to emit
	watchExclude     []string      // Glob patterns to exclude
	watchExts        []string      // Template extensions override
	watchScriptExts  []string      // Script extensions override
	watchMaxWorkers  int           // Worker pool ceiling (0 = auto)
	watchMaxFileSize int64         // Per-file size cap in bytes (0 = default)
	watchDebounce    time.Duration // Debounce window for event batches
	watchMinInterval time.Duration // Minimum time between rescans
	watchTUI         bool          // Render the live dashboard
	watchLogJSON     bool          // JSON log format on stderr
	watchLogFile     string        // Log file path
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// watchCmd keeps artifacts in sync while templates are edited.
//
// # Description
//
// Watches the scan root for filesystem changes, debounces editor save
// bursts, and reruns the scan for each batch that touches a template or
// script. Runs until interrupted.
//
// # Examples
//
//	beacon watch                   # Watch ./src, line output
//	beacon watch --tui             # Live dashboard
//	beacon watch --debounce 500ms  # Calmer rescans
//
// # Exit Codes
//
//	0 - Stopped by the user
//	1 - Watcher failed to start
//	2 - Invalid arguments
var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Rescan automatically when templates change",
	Long: `Watch the source tree and keep locator artifacts in sync.

An initial scan runs on startup. After that, filesystem events are
debounced and deduplicated; each batch that touches a relevant file
triggers a full rescan. Artifact writes never trigger rescans, and
unchanged artifacts are not rewritten.

Examples:
  beacon watch
  beacon watch ./frontend --tui
  beacon watch --debounce 500ms --min-interval 2s

Exit Codes:
  0 = Stopped by the user
  1 = Watcher failed to start
  2 = Invalid arguments`,
	Args: cobra.MaximumNArgs(1),
	Run:  runWatchCommand,
}

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	watchCmd.Flags().StringVarP(&watchOut, "out", "o", "",
		"Output directory for artifacts (default \"beacon\")")
	watchCmd.Flags().StringSliceVarP(&watchFormats, "format", "f", nil,
		"Artifact formats: json, yaml, pageobject (default json)")
	watchCmd.Flags().StringSliceVar(&watchExclude, "exclude", nil,
		"Glob patterns to skip")
	watchCmd.Flags().StringSliceVar(&watchExts, "ext", nil,
		"Template extensions to scan (default .vue,.html,.htm)")
	watchCmd.Flags().StringSliceVar(&watchScriptExts, "script-ext", nil,
		"Script extensions to harvest (default .js,.ts,.jsx,.tsx)")
	watchCmd.Flags().IntVar(&watchMaxWorkers, "max-workers", 0,
		"Maximum parallel extraction workers (0 = auto)")
	watchCmd.Flags().Int64Var(&watchMaxFileSize, "max-file-size", 0,
		"Skip files larger than this size in bytes (0 = 10MB default)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0,
		"Wait this long after the last event before rescanning (default 300ms)")
	watchCmd.Flags().DurationVar(&watchMinInterval, "min-interval", 0,
		"Minimum time between rescans (default 1s)")
	watchCmd.Flags().BoolVar(&watchTUI, "tui", false,
		"Render a live dashboard instead of line output")
	watchCmd.Flags().BoolVar(&watchLogJSON, "log-json", false,
		"Write stderr logs as JSON")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "",
		"Also write logs to this file (always JSON)")

	rootCmd.AddCommand(watchCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runWatchCommand executes the watch command.
func runWatchCommand(cmd *cobra.Command, args []string) {
	rootArg := ""
	if len(args) > 0 {
		rootArg = args[0]
	}

	// The dashboard owns the terminal, so stderr logging is suppressed
	// in TUI mode. File logging still works.
	logger := initLogging(watchLogJSON, watchLogFile, watchTUI, false)
	defer logger.Close()

	cfg, err := loadScanConfig(rootArg, scanOverrides{
		out:          watchOut,
		formats:      watchFormats,
		exclude:      watchExclude,
		templateExts: watchExts,
		scriptExts:   watchScriptExts,
		maxWorkers:   watchMaxWorkers,
		maxFileSize:  watchMaxFileSize,
	})
	if err != nil {
		outputError("Invalid configuration", err)
		os.Exit(scan.ExitBadArgs)
	}

	opts := watch.DefaultOptions()
	if watchDebounce > 0 {
		opts.DebounceWindow = watchDebounce
	}
	if watchMinInterval > 0 {
		opts.MinRescanInterval = watchMinInterval
	}

	// Graceful shutdown on Ctrl+C / SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if watchTUI {
		runWatchTUI(ctx, cfg, &opts)
	} else {
		runWatchPlain(ctx, cfg, &opts)
	}

	os.Exit(scan.ExitSuccess)
}

// runWatchPlain prints one line per rescan until the context ends.
func runWatchPlain(ctx context.Context, cfg scan.Config, opts *watch.Options) {
	watcher, err := watch.NewWatcher(cfg, printWatchEvent, opts)
	if err != nil {
		outputError("Invalid configuration", err)
		os.Exit(scan.ExitBadArgs)
	}
	defer watcher.Stop()

	if err := watcher.Start(ctx); err != nil {
		outputError("Failed to start watcher", err)
		os.Exit(scan.ExitFailure)
	}

	ux.Info(fmt.Sprintf("Watching %s (Ctrl+C to stop)", cfg.Root))
	<-ctx.Done()
	ux.Info("Stopped.")
}

// runWatchTUI drives the live dashboard until the user quits.
func runWatchTUI(ctx context.Context, cfg scan.Config, opts *watch.Options) {
	events := make(chan watch.Event, 64)
	watcher, err := watch.NewWatcher(cfg, func(ev watch.Event) { events <- ev }, opts)
	if err != nil {
		outputError("Invalid configuration", err)
		os.Exit(scan.ExitBadArgs)
	}
	defer watcher.Stop()

	if err := watcher.Start(ctx); err != nil {
		outputError("Failed to start watcher", err)
		os.Exit(scan.ExitFailure)
	}

	program := tea.NewProgram(watch.NewWatchModel(cfg, events))
	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		outputError("Dashboard failed", err)
		os.Exit(scan.ExitFailure)
	}
}

// printWatchEvent renders one rescan outcome as plain lines.
func printWatchEvent(ev watch.Event) {
	stamp := time.Now().Format("15:04:05")

	if ev.Err != nil {
		ux.Error(fmt.Sprintf("%s rescan failed: %v", stamp, ev.Err))
		return
	}

	cause := "initial scan"
	switch {
	case len(ev.Trigger) == 1:
		cause = ev.Trigger[0].Path
	case len(ev.Trigger) > 1:
		cause = fmt.Sprintf("%d changes", len(ev.Trigger))
	}
	ux.Info(fmt.Sprintf("%s %s: %d locators from %d files (%dms)",
		stamp, cause, ev.Report.LocatorsFound, ev.Report.FilesScanned, ev.Report.DurationMs))

	for _, warning := range ev.Report.Warnings {
		ux.Warning(warning)
	}
}
