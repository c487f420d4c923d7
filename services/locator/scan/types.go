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
	"runtime"

	"github.com/AleutianAI/beacon/services/locator"
	"github.com/AleutianAI/beacon/services/locator/emit"
)

// DefaultRoot is scanned when no path argument is given.
const DefaultRoot = "src"

// DefaultOutputDir receives generated artifacts.
const DefaultOutputDir = "beacon"

// Default tuning parameters.
const (
	// DefaultMaxWorkers caps the extraction worker pool.
	DefaultMaxWorkers = 8

	// DefaultChannelBuffer is the work/result channel buffer size.
	DefaultChannelBuffer = 100

	// DefaultProgressBatch controls how often progress callbacks fire
	// during extraction.
	DefaultProgressBatch = 25
)

// DefaultTemplateExtensions are the template file extensions scanned for
// locators when the config does not override them.
func DefaultTemplateExtensions() []string {
	return []string{".vue", ".html", ".htm"}
}

// DefaultScriptExtensions are the script file extensions harvested for
// constants when the config does not override them.
func DefaultScriptExtensions() []string {
	return []string{".js", ".ts", ".jsx", ".tsx"}
}

// Config holds scan configuration.
type Config struct {
	// Root is the directory to scan.
	Root string

	// OutputDir is the directory that receives generated artifacts.
	OutputDir string

	// Formats selects the emitters to run, by format name.
	Formats []string

	// Exclude holds glob patterns matched against root-relative paths
	// and base names. Matching files and directories are skipped.
	Exclude []string

	// TemplateExtensions are the file extensions extracted for locators.
	TemplateExtensions []string

	// ScriptExtensions are the file extensions harvested for constants.
	ScriptExtensions []string

	// MaxWorkers is the extraction worker pool ceiling.
	MaxWorkers int

	// MaxFileSize is the per-file size cap in bytes.
	MaxFileSize int64

	// DryRun discovers files and reports counts without extracting or
	// writing anything.
	DryRun bool

	// GeneratorVersion is stamped into emitted artifacts.
	GeneratorVersion string

	// ClassSuffix is appended to generated page-object class names.
	ClassSuffix string

	// Framework selects the page-object call style. Empty means the
	// emitter default.
	Framework string

	// Progress receives progress updates. May be nil.
	Progress ProgressCallback
}

// DefaultConfig returns a Config with sensible defaults for root.
func DefaultConfig(root string) Config {
	if root == "" {
		root = DefaultRoot
	}
	return Config{
		Root:               root,
		OutputDir:          DefaultOutputDir,
		Formats:            []string{string(emit.FormatJSON)},
		TemplateExtensions: DefaultTemplateExtensions(),
		ScriptExtensions:   DefaultScriptExtensions(),
		MaxWorkers:         OptimalWorkerCount(),
		MaxFileSize:        locator.DefaultMaxFileSize,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Root == "" {
		return ErrEmptyRoot
	}
	if c.OutputDir == "" {
		return ErrEmptyOutputDir
	}
	if c.MaxWorkers <= 0 {
		return ErrInvalidMaxWorkers
	}
	if c.MaxFileSize <= 0 {
		return ErrInvalidMaxFileSize
	}
	if len(c.Formats) == 0 {
		return ErrNoFormats
	}
	for _, f := range c.Formats {
		if _, err := emit.NewEmitter(emit.FormatType(f)); err != nil {
			return err
		}
	}
	if len(c.TemplateExtensions) == 0 {
		return ErrNoTemplateExtensions
	}
	return nil
}

// OptimalWorkerCount returns the number of workers for this machine,
// capped at DefaultMaxWorkers.
func OptimalWorkerCount() int {
	n := runtime.NumCPU()
	if n > DefaultMaxWorkers {
		n = DefaultMaxWorkers
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Progress reports scan state to the caller.
type Progress struct {
	// Phase is the current phase: "discovering", "harvesting",
	// "extracting", "emitting", "writing", or "complete".
	Phase string

	// FilesScanned is the number of template files processed so far.
	FilesScanned int

	// FilesTotal is the number of template files to process.
	FilesTotal int

	// Percent is overall progress (0-100).
	Percent int

	// Current is the file being processed, when known.
	Current string
}

// ProgressCallback receives progress updates during a scan. Called from
// the scan goroutine; implementations must not block.
type ProgressCallback func(Progress)
