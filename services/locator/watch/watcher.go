// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package watch keeps locator artifacts in sync with a source tree.
//
// A Watcher observes the scan root through fsnotify, debounces bursts of
// filesystem events into batches, and runs a full rescan for each batch
// that touches a relevant source file. Rescans run on a single goroutine,
// so at most one scan is in flight at a time; events that arrive during a
// scan accumulate and trigger a follow-up rescan once the debounce window
// closes again.
//
// Each rescan is a complete pipeline run. Constants harvested from one
// file can resolve bindings in any other, so a changed script may alter
// locators in templates that did not change; partial rescans would miss
// that. Unchanged artifacts are skipped at write time, which keeps the
// full rescan cheap in practice.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/beacon/services/locator/scan"
)

// ChangeOp classifies a filesystem change.
type ChangeOp int

const (
	// ChangeCreate indicates a file or directory was created.
	ChangeCreate ChangeOp = iota
	// ChangeWrite indicates a file was modified.
	ChangeWrite
	// ChangeRemove indicates a file or directory was removed.
	ChangeRemove
	// ChangeRename indicates a file or directory was renamed.
	ChangeRename
)

// String returns a human-readable name for the operation.
func (op ChangeOp) String() string {
	switch op {
	case ChangeCreate:
		return "create"
	case ChangeWrite:
		return "write"
	case ChangeRemove:
		return "remove"
	case ChangeRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Change is a single debounced filesystem change under the scan root.
type Change struct {
	// Path is the absolute path of the changed file.
	Path string
	// Op is the kind of change.
	Op ChangeOp
	// Time is when the change was observed.
	Time time.Time
}

// Event is the outcome of one rescan cycle.
type Event struct {
	// Report summarizes the rescan. Nil when the scan failed outright.
	Report *scan.Report
	// Err is the scan error, if any.
	Err error
	// Trigger lists the changes that caused the rescan. Nil for the
	// initial scan performed on Start.
	Trigger []Change
}

// EventHandler receives rescan outcomes. It is called from the scan
// goroutine, so a slow handler delays the next rescan.
type EventHandler func(Event)

// Options configures watcher behavior.
type Options struct {
	// DebounceWindow is how long to wait after the last event before
	// rescanning. Editors often emit several events per save.
	DebounceWindow time.Duration

	// MinRescanInterval is the minimum time between rescans. Batches
	// that arrive faster are delayed, not dropped.
	MinRescanInterval time.Duration

	// IgnorePatterns are path fragments and glob patterns to skip, in
	// addition to the output directory which is always skipped.
	IgnorePatterns []string

	// BufferSize is the capacity of the internal change channel.
	BufferSize int
}

// DefaultOptions returns options suitable for interactive use.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:    300 * time.Millisecond,
		MinRescanInterval: time.Second,
		IgnorePatterns: []string{
			".git",
			"node_modules",
			"dist",
			"build",
			"coverage",
			"vendor",
			"*.swp",
			"*.tmp",
			"*~",
		},
		BufferSize: 1000,
	}
}

// Watcher rescans a source tree whenever relevant files change.
//
// # Description
// Watcher wraps a scan.Scanner and an fsnotify watcher. Filesystem
// events are filtered, debounced and deduplicated before each batch
// triggers a rescan. Outcomes are delivered to the EventHandler.
//
// # Thread Safety
// Start and Stop are safe to call from any goroutine. Stop may be
// called more than once.
type Watcher struct {
	cfg     scan.Config
	opts    Options
	handler EventHandler

	scanner  *scan.Scanner
	notifier *fsnotify.Watcher
	limiter  *rate.Limiter

	rootAbs      string
	outAbs       string
	templateExts map[string]bool
	scriptExts   map[string]bool

	changes  chan Change
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	watching bool
}

// NewWatcher creates a watcher for the given scan configuration.
//
// # Inputs
//   - cfg: scan configuration; validated before use
//   - handler: receives one Event per rescan; may be nil
//   - opts: watcher options; nil selects DefaultOptions
//
// # Outputs
//   - *Watcher: ready to Start
//   - error: invalid configuration or fsnotify initialization failure
func NewWatcher(cfg scan.Config, handler EventHandler, opts *Options) (*Watcher, error) {
	scanner, err := scan.NewScanner(cfg)
	if err != nil {
		return nil, err
	}

	o := DefaultOptions()
	if opts != nil {
		o = *opts
		if o.DebounceWindow <= 0 {
			o.DebounceWindow = DefaultOptions().DebounceWindow
		}
		if o.MinRescanInterval <= 0 {
			o.MinRescanInterval = DefaultOptions().MinRescanInterval
		}
		if o.BufferSize <= 0 {
			o.BufferSize = DefaultOptions().BufferSize
		}
	}

	rootAbs, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	outAbs, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("resolving output dir: %w", err)
	}

	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		cfg:          cfg,
		opts:         o,
		handler:      handler,
		scanner:      scanner,
		notifier:     notifier,
		limiter:      rate.NewLimiter(rate.Every(o.MinRescanInterval), 1),
		rootAbs:      rootAbs,
		outAbs:       outAbs,
		templateExts: scan.ExtensionSet(cfg.TemplateExtensions),
		scriptExts:   scan.ExtensionSet(cfg.ScriptExtensions),
		changes:      make(chan Change, o.BufferSize),
		done:         make(chan struct{}),
	}, nil
}

// Start begins watching and performs an initial scan.
//
// The initial scan runs asynchronously; its Event carries a nil Trigger.
// Start returns an error if the watcher is already running or the root
// cannot be watched.
func (w *Watcher) Start(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("ctx must not be nil")
	}

	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return fmt.Errorf("watcher already started")
	}
	w.watching = true
	w.mu.Unlock()

	if err := scan.CheckRoot(w.rootAbs); err != nil {
		return err
	}
	if err := w.addRecursive(w.rootAbs); err != nil {
		return fmt.Errorf("watching %s: %w", w.rootAbs, err)
	}

	go w.processEvents(ctx)
	go w.run(ctx)

	return nil
}

// Stop stops watching and releases the fsnotify watcher. A batch still
// inside its debounce window is discarded, but a rescan already running
// completes and its Event is delivered.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		if err := w.notifier.Close(); err != nil {
			slog.Warn("closing fsnotify watcher", "error", err)
		}
	})
}

// addRecursive registers the directory and all subdirectories that are
// not ignored.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Directories can vanish mid-walk.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (w.shouldIgnore(path) || w.underOutput(path)) {
			return filepath.SkipDir
		}
		if err := w.notifier.Add(path); err != nil {
			return fmt.Errorf("adding %s: %w", path, err)
		}
		return nil
	})
}

// shouldIgnore reports whether a path matches an ignore pattern or the
// configured exclude globs.
func (w *Watcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.opts.IgnorePatterns {
		if base == pattern {
			return true
		}
		if matched, err := filepath.Match(pattern, base); err == nil && matched {
			return true
		}
		if strings.Contains(path, string(os.PathSeparator)+pattern+string(os.PathSeparator)) {
			return true
		}
	}
	for _, pattern := range w.cfg.Exclude {
		if matched, err := filepath.Match(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}

// underOutput reports whether a path is the output directory or inside
// it.
func (w *Watcher) underOutput(path string) bool {
	return path == w.outAbs || strings.HasPrefix(path, w.outAbs+string(os.PathSeparator))
}

// isRelevant reports whether a change at the given absolute path should
// trigger a rescan. Artifacts under the output directory never do, or a
// completed scan would immediately schedule the next one.
func (w *Watcher) isRelevant(path string) bool {
	if w.underOutput(path) {
		return false
	}
	if w.shouldIgnore(path) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	return w.templateExts[ext] || w.scriptExts[ext]
}

// processEvents translates fsnotify events into Change values and keeps
// the recursive watch up to date as directories appear.
func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.notifier.Events:
			if !ok {
				return
			}

			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !w.shouldIgnore(event.Name) && !w.underOutput(event.Name) {
						if err := w.addRecursive(event.Name); err != nil {
							slog.Warn("watching new directory",
								"path", event.Name, "error", err)
						}
					}
					continue
				}
			}

			change := Change{
				Path: event.Name,
				Op:   convertOp(event.Op),
				Time: time.Now(),
			}
			select {
			case w.changes <- change:
			default:
				// Channel full. Dropping is safe: any relevant
				// change already queued will trigger a full
				// rescan that picks this one up too.
			}
		case err, ok := <-w.notifier.Errors:
			if !ok {
				return
			}
			slog.Warn("fsnotify error", "error", err)
		}
	}
}

// convertOp maps an fsnotify op onto a ChangeOp.
func convertOp(op fsnotify.Op) ChangeOp {
	switch {
	case op.Has(fsnotify.Create):
		return ChangeCreate
	case op.Has(fsnotify.Remove):
		return ChangeRemove
	case op.Has(fsnotify.Rename):
		return ChangeRename
	default:
		return ChangeWrite
	}
}

// run is the scan goroutine. It performs the initial scan, then drains
// debounced batches and rescans for each batch with relevant changes.
func (w *Watcher) run(ctx context.Context) {
	w.rescan(ctx, nil)

	var batch []Change
	var timer *time.Timer
	var timerC <-chan time.Time

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case change := <-w.changes:
			batch = append(batch, change)
			if timer == nil {
				timer = time.NewTimer(w.opts.DebounceWindow)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.opts.DebounceWindow)
			}
		case <-timerC:
			trigger := relevantChanges(batch, w.isRelevant)
			batch = batch[:0]
			timer = nil
			timerC = nil
			if len(trigger) > 0 {
				w.rescan(ctx, trigger)
			}
		}
	}
}

// rescan runs one scan and delivers the outcome. The rate limiter
// spaces rescans at least MinRescanInterval apart.
func (w *Watcher) rescan(ctx context.Context, trigger []Change) {
	if err := w.limiter.Wait(ctx); err != nil {
		return
	}

	report, err := w.scanner.Run(ctx)
	if w.handler != nil {
		w.handler(Event{Report: report, Err: err, Trigger: trigger})
	}
}

// relevantChanges deduplicates a batch by path, keeping the newest
// change for each, and drops changes the filter rejects. Order follows
// each path's first appearance in the batch.
func relevantChanges(batch []Change, relevant func(string) bool) []Change {
	if len(batch) == 0 {
		return nil
	}

	var result []Change
	seen := make(map[string]int)
	for _, change := range batch {
		if !relevant(change.Path) {
			continue
		}
		if idx, ok := seen[change.Path]; ok {
			if change.Time.After(result[idx].Time) {
				result[idx] = change
			}
			continue
		}
		seen[change.Path] = len(result)
		result = append(result, change)
	}
	return result
}
