// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/beacon/services/locator"
	"github.com/AleutianAI/beacon/services/locator/emit"
)

// scriptBlockPattern captures the inner text of <script> blocks in
// template files for constant harvesting.
var scriptBlockPattern = regexp.MustCompile(`(?is)<script\b[^>]*>(.*?)</script>`)

// Scanner runs the two-phase batch scan.
//
// # Thread Safety
//
// A Scanner is immutable after construction and safe for concurrent
// use. Concurrent runs against the same output directory serialize on
// the scan lock.
type Scanner struct {
	cfg Config
}

// NewScanner creates a Scanner from a validated configuration.
func NewScanner(cfg Config) (*Scanner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scanner{cfg: cfg}, nil
}

// Run executes the scan and writes artifacts.
//
// # Description
//
// Validates the root, acquires the output lock, regenerates artifacts
// via Generate and writes them to the output directory. Per-file
// failures are collected into the report; only root/lock/emit/write
// problems fail the run. Dry runs stop after discovery and write
// nothing.
//
// # Inputs
//
//   - ctx: Context for cancellation. Must not be nil.
//
// # Outputs
//
//   - *Report: Run summary. Nil when error is non-nil.
//   - error: Non-nil on top-level failure or cancellation.
func (s *Scanner) Run(ctx context.Context) (*Report, error) {
	if ctx == nil {
		return nil, fmt.Errorf("ctx must not be nil")
	}
	started := time.Now()

	if err := CheckRoot(s.cfg.Root); err != nil {
		return nil, err
	}

	if !s.cfg.DryRun {
		lock := NewFileLock(filepath.Join(s.cfg.OutputDir, LockFileName))
		if err := s.acquireLock(lock); err != nil {
			return nil, err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				slog.Warn("failed to release scan lock", "error", err)
			}
		}()
	}

	rep, artifacts, err := s.Generate(ctx)
	if err != nil {
		return nil, err
	}
	if s.cfg.DryRun {
		return rep, nil
	}

	s.report(Progress{Phase: "writing", FilesTotal: rep.FilesScanned, Percent: 95})
	written, err := WriteArtifacts(ctx, s.cfg.OutputDir, artifacts)
	if err != nil {
		return nil, err
	}
	rep.Artifacts = written

	rep.DurationMs = time.Since(started).Milliseconds()
	s.report(Progress{
		Phase:        "complete",
		FilesScanned: rep.FilesScanned,
		FilesTotal:   rep.FilesScanned,
		Percent:      100,
	})
	return rep, nil
}

// Generate runs discovery, constant harvest, extraction and emission
// without touching the output directory.
//
// # Description
//
// This is the read-only core of a scan: everything Run does except
// locking and writing. The drift check regenerates artifacts through
// this entry point and compares them against disk.
//
// # Outputs
//
//   - *Report: Summary with tallies and failures. Artifacts list unset.
//   - []emit.Artifact: Emitted artifacts in emitter order.
//   - error: Non-nil on bad root, emitter failure or cancellation.
func (s *Scanner) Generate(ctx context.Context) (*Report, []emit.Artifact, error) {
	if ctx == nil {
		return nil, nil, fmt.Errorf("ctx must not be nil")
	}
	started := time.Now()

	s.report(Progress{Phase: "discovering"})
	disc, err := Discover(ctx, &s.cfg)
	if err != nil {
		return nil, nil, err
	}

	rep := NewReport(s.cfg.Root)
	rep.StartedAt = started.UTC().Format(time.RFC3339)
	rep.DryRun = s.cfg.DryRun
	rep.FilesScanned = len(disc.TemplateFiles)
	rep.ScriptFiles = len(disc.ScriptFiles)
	for _, rel := range disc.Oversize {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s: exceeds max file size, skipped", rel))
	}

	if s.cfg.DryRun {
		rep.DurationMs = time.Since(started).Milliseconds()
		s.report(Progress{Phase: "complete", FilesTotal: len(disc.TemplateFiles), Percent: 100})
		return rep, nil, nil
	}

	s.report(Progress{Phase: "harvesting", FilesTotal: len(disc.TemplateFiles), Percent: 5})
	consts, harvestFailures, err := s.harvestConstants(ctx, disc)
	if err != nil {
		return nil, nil, err
	}
	rep.Failures = append(rep.Failures, harvestFailures...)

	s.report(Progress{Phase: "extracting", FilesTotal: len(disc.TemplateFiles), Percent: 10})
	results, extractFailures, err := s.extractAll(ctx, disc.TemplateFiles, consts)
	if err != nil {
		return nil, nil, err
	}
	rep.Failures = append(rep.Failures, extractFailures...)
	rep.FilesFailed = len(extractFailures)

	table := locator.NewTable(results)
	rep.fillFromTable(table)

	s.report(Progress{Phase: "emitting", FilesTotal: len(disc.TemplateFiles), Percent: 90})
	artifacts, err := s.emitAll(table)
	if err != nil {
		return nil, nil, err
	}

	rep.DurationMs = time.Since(started).Milliseconds()
	return rep, artifacts, nil
}

// acquireLock takes the output lock, forcing out a stale holder.
func (s *Scanner) acquireLock(lock *FileLock) error {
	err := lock.Acquire()
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrLockHeld) && lock.IsStale() {
		slog.Info("removing stale scan lock", "path", lock.Path())
		if rmErr := lock.ForceRelease(); rmErr != nil {
			return fmt.Errorf("%w: removing stale lock: %v", ErrLockAcquireFailed, rmErr)
		}
		if err := lock.Acquire(); err != nil {
			return fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
		}
		return nil
	}
	return err
}

// harvestItem is one file to feed the constant table builder.
type harvestItem struct {
	rel      string
	template bool
}

// harvestConstants builds the immutable constant table (phase 1).
//
// Script files contribute their whole text; template files contribute
// only their <script> block contents. Reads run in parallel but the
// table is built in sorted item order, so first-seen-wins resolution is
// deterministic regardless of read completion order.
func (s *Scanner) harvestConstants(ctx context.Context, disc *Discovery) (*locator.ConstantTable, []string, error) {
	items := make([]harvestItem, 0, len(disc.ScriptFiles)+len(disc.TemplateFiles))
	for _, rel := range disc.ScriptFiles {
		items = append(items, harvestItem{rel: rel})
	}
	for _, rel := range disc.TemplateFiles {
		items = append(items, harvestItem{rel: rel, template: true})
	}

	contents := make([][]byte, len(items))
	readErrs := make([]error, len(items))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxWorkers)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if gCtx.Err() != nil {
				return nil // Never propagate: harvest failures are non-fatal
			}
			content, err := os.ReadFile(filepath.Join(s.cfg.Root, filepath.FromSlash(item.rel)))
			if err != nil {
				readErrs[i] = err
				return nil
			}
			contents[i] = content
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("constant harvest canceled: %w", err)
	}

	builder := locator.NewConstantTableBuilder()
	var failures []string
	for i, item := range items {
		if readErrs[i] != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", item.rel, readErrs[i]))
			continue
		}
		if item.template {
			for _, block := range scriptBlocks(contents[i]) {
				builder.Add(block)
			}
			continue
		}
		builder.Add(contents[i])
	}
	return builder.Build(), failures, nil
}

// scriptBlocks returns the inner text of each <script> block.
func scriptBlocks(content []byte) [][]byte {
	matches := scriptBlockPattern.FindAllSubmatch(content, -1)
	blocks := make([][]byte, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, m[1])
	}
	return blocks
}

// extractOutcome carries one file's result back to the collector.
type extractOutcome struct {
	rel    string
	result *locator.FileResult
	err    error
}

// extractAll runs phase 2 over the template files with a worker pool.
// Failures are returned sorted so the report is deterministic.
func (s *Scanner) extractAll(ctx context.Context, files []string, consts *locator.ConstantTable) ([]*locator.FileResult, []string, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	numWorkers := s.cfg.MaxWorkers
	if numWorkers > len(files) {
		numWorkers = len(files)
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}

	extractor := locator.NewExtractor(consts, locator.WithMaxFileSize(int(s.cfg.MaxFileSize)))

	fileChan := make(chan string, DefaultChannelBuffer)
	resultChan := make(chan extractOutcome, DefaultChannelBuffer)

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for rel := range fileChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				result, err := s.extractFile(ctx, extractor, rel)
				resultChan <- extractOutcome{rel: rel, result: result, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	go func() {
		defer close(fileChan)
		for _, rel := range files {
			select {
			case <-ctx.Done():
				return
			case fileChan <- rel:
			}
		}
	}()

	var (
		results   []*locator.FileResult
		failures  []string
		processed int
	)
	for outcome := range resultChan {
		processed++
		if outcome.err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", outcome.rel, outcome.err))
		} else {
			results = append(results, outcome.result)
		}
		if processed%DefaultProgressBatch == 0 || processed == len(files) {
			s.report(Progress{
				Phase:        "extracting",
				FilesScanned: processed,
				FilesTotal:   len(files),
				Percent:      10 + (processed*80)/len(files),
				Current:      outcome.rel,
			})
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("extraction canceled: %w", err)
	}
	sort.Strings(failures)
	return results, failures, nil
}

// extractFile reads and extracts a single template file.
func (s *Scanner) extractFile(ctx context.Context, extractor *locator.Extractor, rel string) (*locator.FileResult, error) {
	content, err := os.ReadFile(filepath.Join(s.cfg.Root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}
	return extractor.Extract(ctx, content, rel)
}

// emitAll runs every configured emitter over the table.
func (s *Scanner) emitAll(table *locator.Table) ([]emit.Artifact, error) {
	opts := emit.Options{
		GeneratorVersion: s.cfg.GeneratorVersion,
		ClassSuffix:      s.cfg.ClassSuffix,
		Framework:        s.cfg.Framework,
	}
	var artifacts []emit.Artifact
	for _, name := range s.cfg.Formats {
		emitter, err := emit.NewEmitter(emit.FormatType(name))
		if err != nil {
			return nil, err
		}
		arts, err := emitter.Emit(table, opts)
		if err != nil {
			return nil, fmt.Errorf("emitting %s: %w", name, err)
		}
		artifacts = append(artifacts, arts...)
	}
	return artifacts, nil
}

// report invokes the progress callback when configured.
func (s *Scanner) report(p Progress) {
	if s.cfg.Progress != nil {
		s.cfg.Progress(p)
	}
}
