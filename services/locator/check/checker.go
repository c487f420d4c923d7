// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package check verifies that generated locator artifacts are still in
// sync with the source tree.
//
// The checker regenerates every artifact in memory through the scan
// pipeline and byte-compares the results against the output directory.
// It never takes the scan lock and never writes: a check run is safe
// against a live scan and leaves no trace. Drift is reported with
// unified diffs so CI logs show exactly which locators moved.
package check

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sourcegraph/go-diff/diff"

	"github.com/AleutianAI/beacon/services/locator/emit"
	"github.com/AleutianAI/beacon/services/locator/scan"
)

// DriftKind classifies one out-of-sync artifact.
type DriftKind string

const (
	// DriftMissing means the artifact is not on disk at all.
	DriftMissing DriftKind = "missing"

	// DriftChanged means the on-disk content no longer matches the
	// source tree.
	DriftChanged DriftKind = "changed"

	// DriftStale means the file is on disk but the current source tree
	// no longer produces it.
	DriftStale DriftKind = "stale"
)

// Drift describes one artifact that is out of sync.
type Drift struct {
	Path         string    `json:"path"`
	Kind         DriftKind `json:"kind"`
	Diff         string    `json:"diff,omitempty"`
	LinesAdded   int       `json:"lines_added,omitempty"`
	LinesRemoved int       `json:"lines_removed,omitempty"`
}

// Result summarizes a drift check.
type Result struct {
	Root       string   `json:"root"`
	Clean      bool     `json:"clean"`
	Checked    int      `json:"checked"`
	Drifts     []Drift  `json:"drifts,omitempty"`
	Advisories []string `json:"advisories,omitempty"`
}

// ExitCode maps the result onto the CLI exit contract.
func (r *Result) ExitCode() int {
	if r.Clean {
		return scan.ExitSuccess
	}
	return scan.ExitFailure
}

// Checker regenerates artifacts and compares them against disk.
//
// # Thread Safety
//
// A Checker is immutable after construction and safe for concurrent
// use.
type Checker struct {
	cfg scan.Config
}

// NewChecker creates a Checker from a validated scan configuration.
func NewChecker(cfg scan.Config) (*Checker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Checker{cfg: cfg}, nil
}

// Run performs the drift check.
//
// # Description
//
// Regenerates all configured artifacts in memory, then compares each
// against the output directory: absent files are missing drift,
// byte-mismatches are changed drift with a unified diff, and
// page-object files the current tree no longer produces are stale
// drift. Generator-version stamps found on disk are compared against
// the configured version; a major-version gap produces an advisory.
//
// # Inputs
//
//   - ctx: Context for cancellation. Must not be nil.
//
// # Outputs
//
//   - *Result: Drift summary. Nil when error is non-nil.
//   - error: Non-nil on bad root, regeneration failure or cancellation.
func (c *Checker) Run(ctx context.Context) (*Result, error) {
	if ctx == nil {
		return nil, fmt.Errorf("ctx must not be nil")
	}

	scanner, err := scan.NewScanner(c.cfg)
	if err != nil {
		return nil, err
	}
	_, artifacts, err := scanner.Generate(ctx)
	if err != nil {
		return nil, err
	}

	sorted := make([]emit.Artifact, len(artifacts))
	copy(sorted, artifacts)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Path < sorted[j].Path
	})

	result := &Result{Root: c.cfg.Root, Clean: true}
	stamped := make(map[string]string)

	for _, artifact := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("check canceled: %w", err)
		}
		result.Checked++

		target := filepath.Join(c.cfg.OutputDir, filepath.FromSlash(artifact.Path))
		disk, err := os.ReadFile(target)
		if os.IsNotExist(err) {
			result.add(Drift{Path: artifact.Path, Kind: DriftMissing})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", artifact.Path, err)
		}

		if version, ok := artifactVersion(artifact.Path, disk); ok {
			stamped[artifact.Path] = version
		}

		if bytes.Equal(disk, artifact.Content) {
			continue
		}
		d := Drift{Path: artifact.Path, Kind: DriftChanged}
		d.Diff, d.LinesAdded, d.LinesRemoved = unifiedDiff(artifact.Path, disk, artifact.Content)
		result.add(d)
	}

	for _, stale := range stalePages(c.cfg.OutputDir, sorted) {
		result.add(Drift{Path: stale, Kind: DriftStale})
	}

	result.Advisories = versionAdvice(c.cfg.GeneratorVersion, stamped)
	return result, nil
}

// add records a drift and clears the clean flag.
func (r *Result) add(d Drift) {
	r.Clean = false
	r.Drifts = append(r.Drifts, d)
}

// unifiedDiff renders a unified diff between the on-disk and the
// regenerated content, plus changed-line counts.
func unifiedDiff(path string, disk, want []byte) (string, int, int) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(disk)),
		B:        difflib.SplitLines(string(want)),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return fmt.Sprintf("diff failed: %v", err), 0, 0
	}
	added, removed := diffStats(text)
	return text, added, removed
}

// diffStats counts added and removed lines in a unified diff.
func diffStats(unified string) (added, removed int) {
	fd, err := diff.ParseFileDiff([]byte(unified))
	if err != nil {
		return 0, 0
	}
	for _, hunk := range fd.Hunks {
		for _, line := range strings.Split(string(hunk.Body), "\n") {
			if strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++") {
				added++
			} else if strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---") {
				removed++
			}
		}
	}
	return added, removed
}

// stalePages lists .ts files under the pages subdirectory that the
// current run no longer declares. Mirrors the writer's pruning scope:
// only page objects are tracked, and only when page objects were
// emitted this run.
func stalePages(outDir string, artifacts []emit.Artifact) []string {
	declared := make(map[string]bool, len(artifacts))
	hasPages := false
	for _, a := range artifacts {
		declared[a.Path] = true
		if strings.HasPrefix(a.Path, emit.PagesDir+"/") {
			hasPages = true
		}
	}
	if !hasPages {
		return nil
	}

	entries, err := os.ReadDir(filepath.Join(outDir, emit.PagesDir))
	if err != nil {
		return nil
	}

	var stale []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".ts") {
			continue
		}
		rel := emit.PagesDir + "/" + entry.Name()
		if !declared[rel] {
			stale = append(stale, rel)
		}
	}
	sort.Strings(stale)
	return stale
}
