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
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AleutianAI/beacon/services/locator/emit"
)

// WriteArtifacts writes emitted artifacts under outDir.
//
// # Description
//
// Writes each artifact atomically (temp file + rename) in sorted path
// order. Artifacts whose on-disk content already matches are left
// untouched, so repeat runs over an unchanged tree modify nothing.
// Page-object files from earlier runs whose template has disappeared
// are pruned.
//
// # Inputs
//
//   - ctx: Context for cancellation. Must not be nil.
//   - outDir: Output directory. Created if missing.
//   - artifacts: Emitted artifacts with outDir-relative slash paths.
//
// # Outputs
//
//   - []string: Sorted relative paths of all declared artifacts.
//   - error: Non-nil if the output directory is unwritable or ctx is done.
func WriteArtifacts(ctx context.Context, outDir string, artifacts []emit.Artifact) ([]string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	sorted := make([]emit.Artifact, len(artifacts))
	copy(sorted, artifacts)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Path < sorted[j].Path
	})

	paths := make([]string, 0, len(sorted))
	for _, artifact := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("write canceled: %w", err)
		}
		if err := writeArtifact(outDir, artifact); err != nil {
			return nil, err
		}
		paths = append(paths, artifact.Path)
	}

	if err := pruneStalePages(outDir, sorted); err != nil {
		slog.Warn("failed to prune stale page objects", "error", err)
	}
	return paths, nil
}

// writeArtifact writes one artifact, skipping when content is unchanged.
func writeArtifact(outDir string, artifact emit.Artifact) error {
	target := filepath.Join(outDir, filepath.FromSlash(artifact.Path))
	if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, artifact.Content) {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", artifact.Path, err)
	}

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, artifact.Content, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", artifact.Path, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", artifact.Path, err)
	}
	return nil
}

// pruneStalePages removes .ts files under the pages subdirectory that
// no current artifact declares.
func pruneStalePages(outDir string, artifacts []emit.Artifact) error {
	declared := make(map[string]bool, len(artifacts))
	hasPages := false
	for _, a := range artifacts {
		declared[a.Path] = true
		if strings.HasPrefix(a.Path, emit.PagesDir+"/") {
			hasPages = true
		}
	}
	if !hasPages {
		// Page objects were not emitted this run; leave the directory alone.
		return nil
	}

	pagesDir := filepath.Join(outDir, emit.PagesDir)
	entries, err := os.ReadDir(pagesDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".ts") {
			continue
		}
		rel := emit.PagesDir + "/" + entry.Name()
		if declared[rel] {
			continue
		}
		if err := os.Remove(filepath.Join(pagesDir, entry.Name())); err != nil {
			return err
		}
		slog.Info("pruned stale page object", "path", rel)
	}
	return nil
}
