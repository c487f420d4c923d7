// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package emit renders locator tables into generated artifacts.
//
// Emitters are pure: they consume an immutable locator table plus
// options and produce artifact bytes. They never touch the filesystem,
// which keeps artifact content a function of the scanned sources and
// makes the drift check a plain byte comparison.
package emit

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/beacon/services/locator"
)

// SchemaVersion is the artifact schema version stamped into locator maps.
const SchemaVersion = "1.0"

// FormatType identifies an output format.
type FormatType string

const (
	// FormatJSON is the JSON locator map (default).
	FormatJSON FormatType = "json"

	// FormatYAML is the YAML locator map.
	FormatYAML FormatType = "yaml"

	// FormatPageObject is TypeScript page-object classes.
	FormatPageObject FormatType = "pageobject"
)

// ErrUnknownFormat indicates an unrecognized format name.
var ErrUnknownFormat = errors.New("unknown output format")

// Artifact is one generated file.
type Artifact struct {
	// Path is relative to the output directory, with forward slashes.
	Path string

	// Content is the complete artifact body, ending in a newline.
	Content []byte
}

// Options control artifact rendering.
type Options struct {
	// GeneratorVersion is stamped into every artifact. Empty means "dev".
	GeneratorVersion string

	// ClassSuffix is appended to page-object class names. Empty means "Page".
	ClassSuffix string

	// Framework selects the page-object call style. Empty means "playwright".
	Framework string
}

// Emitter renders a locator table into artifacts.
type Emitter interface {
	// Name returns the format name.
	Name() string

	// Emit renders the table. Must not mutate it.
	Emit(table *locator.Table, opts Options) ([]Artifact, error)
}

// NewEmitter returns the emitter for a format.
func NewEmitter(format FormatType) (Emitter, error) {
	switch format {
	case FormatJSON:
		return &JSONEmitter{}, nil
	case FormatYAML:
		return &YAMLEmitter{}, nil
	case FormatPageObject:
		return &PageObjectEmitter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}
}

// Formats lists the supported format names in help-text order.
func Formats() []FormatType {
	return []FormatType{FormatJSON, FormatYAML, FormatPageObject}
}

// generatorVersion resolves the version stamp from options.
func generatorVersion(opts Options) string {
	if opts.GeneratorVersion == "" {
		return "dev"
	}
	return opts.GeneratorVersion
}
