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
	"errors"
	"fmt"
)

// Configuration errors.
var (
	// ErrEmptyRoot indicates an empty scan root.
	ErrEmptyRoot = errors.New("scan root must not be empty")

	// ErrEmptyOutputDir indicates an empty output directory.
	ErrEmptyOutputDir = errors.New("output directory must not be empty")

	// ErrInvalidMaxWorkers indicates MaxWorkers is not positive.
	ErrInvalidMaxWorkers = errors.New("max workers must be positive")

	// ErrInvalidMaxFileSize indicates MaxFileSize is not positive.
	ErrInvalidMaxFileSize = errors.New("max file size must be positive")

	// ErrNoFormats indicates no output format was selected.
	ErrNoFormats = errors.New("at least one output format is required")

	// ErrNoTemplateExtensions indicates no template extension was configured.
	ErrNoTemplateExtensions = errors.New("at least one template extension is required")
)

// Lock errors.
var (
	// ErrLockAcquireFailed indicates the scan lock could not be acquired.
	ErrLockAcquireFailed = errors.New("failed to acquire scan lock")

	// ErrLockHeld indicates another scan is writing to the output directory.
	ErrLockHeld = errors.New("another scan is already writing to this output directory")
)

// FileFailure records a per-file scan failure. Per-file failures never
// abort the batch; they are collected into the run report.
type FileFailure struct {
	FilePath string
	Err      error
}

// Error implements the error interface.
func (e *FileFailure) Error() string {
	return fmt.Sprintf("scanning %s: %v", e.FilePath, e.Err)
}

// Unwrap returns the underlying error.
func (e *FileFailure) Unwrap() error {
	return e.Err
}
