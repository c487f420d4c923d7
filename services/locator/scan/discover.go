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
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AleutianAI/beacon/services/locator"
)

// ignoredDirectories are never descended into, regardless of config.
var ignoredDirectories = map[string]bool{
	"node_modules": true,
	"dist":         true,
	"build":        true,
	".git":         true,
	"vendor":       true,
	"coverage":     true,
	".nuxt":        true,
	".output":      true,
}

// Discovery holds the file sets found under the scan root. All paths
// are root-relative with forward slashes, sorted lexicographically.
type Discovery struct {
	// TemplateFiles are extracted for locators in phase 2.
	TemplateFiles []string

	// ScriptFiles are harvested for constants in phase 1.
	ScriptFiles []string

	// Oversize lists files skipped for exceeding the size cap.
	Oversize []string
}

// CheckRoot verifies the scan root exists and is a directory.
func CheckRoot(root string) error {
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", locator.ErrPathNotExist, root)
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", locator.ErrPathNotDirectory, root)
	}
	return nil
}

// Discover walks the scan root collecting template and script files.
//
// # Description
//
// Walks cfg.Root honoring the fixed ignore list, the configured exclude
// globs, and the extension filters. Files over cfg.MaxFileSize are
// skipped and recorded in Discovery.Oversize. Unreadable entries are
// skipped; discovery itself only fails on a bad root or cancellation.
//
// # Inputs
//
//   - ctx: Context for cancellation. Must not be nil.
//   - cfg: Validated scan configuration.
//
// # Outputs
//
//   - *Discovery: Sorted template and script file lists. Never nil on success.
//   - error: Non-nil on bad root or cancellation.
func Discover(ctx context.Context, cfg *Config) (*Discovery, error) {
	if err := CheckRoot(cfg.Root); err != nil {
		return nil, err
	}

	templateExts := ExtensionSet(cfg.TemplateExtensions)
	scriptExts := ExtensionSet(cfg.ScriptExtensions)

	disc := &Discovery{}
	err := filepath.WalkDir(cfg.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entry: skip it, keep walking.
			slog.Warn("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("discovery canceled: %w", ctxErr)
		}

		rel, relErr := filepath.Rel(cfg.Root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if ignoredDirectories[d.Name()] || matchesExclude(cfg.Exclude, rel, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if matchesExclude(cfg.Exclude, rel, d.Name()) {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(d.Name()))
		isTemplate := templateExts[ext]
		isScript := scriptExts[ext]
		if !isTemplate && !isScript {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			slog.Warn("skipping unstatable file", "path", path, "error", infoErr)
			return nil
		}
		if info.Size() > cfg.MaxFileSize {
			disc.Oversize = append(disc.Oversize, rel)
			return nil
		}

		if isTemplate {
			disc.TemplateFiles = append(disc.TemplateFiles, rel)
		}
		if isScript {
			disc.ScriptFiles = append(disc.ScriptFiles, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(disc.TemplateFiles)
	sort.Strings(disc.ScriptFiles)
	sort.Strings(disc.Oversize)
	return disc, nil
}

// ExtensionSet lowercases extensions into a lookup set, adding the
// leading dot when missing.
func ExtensionSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = true
	}
	return set
}

// matchesExclude reports whether a root-relative path or its base name
// matches any configured exclude glob.
func matchesExclude(patterns []string, rel, base string) bool {
	for _, pattern := range patterns {
		if ok, err := filepath.Match(pattern, rel); err == nil && ok {
			return true
		}
		if ok, err := filepath.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}
