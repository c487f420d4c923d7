// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the optional project-local .beacon.yaml file.
//
// The file lives at the scan root and holds per-project defaults. Every
// field is optional; command-line flags override file values, and file
// values override built-in defaults. A missing file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/beacon/services/locator/scan"
)

// FileName is the project-local configuration file name.
const FileName = ".beacon.yaml"

// fileValidate is the validator instance for configuration files.
var fileValidate *validator.Validate

func init() {
	fileValidate = validator.New()
}

// PageObjects configures TypeScript page-object generation.
type PageObjects struct {
	// ClassSuffix is appended to generated class names.
	ClassSuffix string `yaml:"class_suffix" validate:"omitempty,alpha"`

	// Framework selects the call style of generated accessors.
	Framework string `yaml:"framework" validate:"omitempty,oneof=playwright"`
}

// FileConfig mirrors the .beacon.yaml schema.
//
// Zero values mean "not set"; Apply only overlays fields the file
// actually provides.
type FileConfig struct {
	// Out is the artifact output directory.
	Out string `yaml:"out"`

	// Formats lists the artifact formats to emit.
	Formats []string `yaml:"formats" validate:"omitempty,dive,oneof=json yaml pageobject"`

	// Exclude holds glob patterns to skip.
	Exclude []string `yaml:"exclude"`

	// TemplateExtensions are the file extensions scanned for locators.
	TemplateExtensions []string `yaml:"template_extensions"`

	// ScriptExtensions are the file extensions harvested for constants.
	ScriptExtensions []string `yaml:"script_extensions"`

	// MaxWorkers is the extraction worker pool ceiling.
	MaxWorkers int `yaml:"max_workers" validate:"omitempty,gte=1,lte=64"`

	// MaxFileSize is the per-file size cap in bytes.
	MaxFileSize int64 `yaml:"max_file_size" validate:"omitempty,gte=1"`

	// PageObjects configures page-object generation.
	PageObjects PageObjects `yaml:"page_objects"`
}

// Load reads root/.beacon.yaml if it exists.
//
// # Inputs
//   - root: the scan root directory
//
// # Outputs
//   - *FileConfig: the parsed file, or nil when no file exists
//   - error: read, parse, or validation failure
func Load(root string) (*FileConfig, error) {
	path := filepath.Join(root, FileName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := fileValidate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}

	return &cfg, nil
}

// Apply overlays the file's values onto a scan configuration. Fields
// the file does not set are left alone. Safe to call on a nil receiver.
func (f *FileConfig) Apply(cfg *scan.Config) {
	if f == nil {
		return
	}
	if f.Out != "" {
		cfg.OutputDir = f.Out
	}
	if len(f.Formats) > 0 {
		cfg.Formats = f.Formats
	}
	if len(f.Exclude) > 0 {
		cfg.Exclude = f.Exclude
	}
	if len(f.TemplateExtensions) > 0 {
		cfg.TemplateExtensions = f.TemplateExtensions
	}
	if len(f.ScriptExtensions) > 0 {
		cfg.ScriptExtensions = f.ScriptExtensions
	}
	if f.MaxWorkers > 0 {
		cfg.MaxWorkers = f.MaxWorkers
	}
	if f.MaxFileSize > 0 {
		cfg.MaxFileSize = f.MaxFileSize
	}
	if f.PageObjects.ClassSuffix != "" {
		cfg.ClassSuffix = f.PageObjects.ClassSuffix
	}
	if f.PageObjects.Framework != "" {
		cfg.Framework = f.PageObjects.Framework
	}
}

// DefaultYAML is the commented configuration template written by
// beacon init. Every setting is commented out, so the file documents
// the schema without changing behavior until edited.
const DefaultYAML = `# beacon project configuration
#
# This file lives at the scan root. All settings are optional; flags
# override file values, and file values override built-in defaults.

# Output directory for generated artifacts.
#out: beacon

# Artifact formats to emit: json, yaml, pageobject.
#formats:
#  - json
#  - pageobject

# Glob patterns to skip, matched against root-relative paths and base
# names.
#exclude:
#  - "legacy/*"
#  - "*.stories.vue"

# File extensions scanned for locators.
#template_extensions: [".vue", ".html", ".htm"]

# File extensions harvested for constants.
#script_extensions: [".js", ".ts", ".jsx", ".tsx"]

# Extraction worker pool ceiling (1-64).
#max_workers: 8

# Per-file size cap in bytes.
#max_file_size: 1048576

# Page object generation.
#page_objects:
#  class_suffix: Page
#  framework: playwright
`
