// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for generated artifacts.
//
// This package contains validators for values that end up inside generated
// files: locator map keys, page object class names, and relative source
// paths recorded in scan reports. Using these validators prevents broken
// generated code (invalid identifiers) and path traversal in artifact paths.
package validation

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// keyPattern matches valid locator map keys.
// Allows: lowercase letters, digits, underscores; must not start with a digit.
// Max length: 128 characters (long keys come from long raw attribute values)
var keyPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,127}$`)

// classNamePattern matches valid generated class names (PascalCase).
var classNamePattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9]{0,63}$`)

// ValidateKey validates a locator map key before it is written to an artifact.
//
// Valid keys:
//   - 1-128 characters
//   - Lowercase letters a-z
//   - Digits 0-9
//   - Underscores
//   - First character is a letter or underscore
//
// Keys double as method names in generated page objects, so anything a
// code generator would choke on is rejected here.
//
// Returns an error if the key is invalid.
//
// Example:
//
//	if err := validation.ValidateKey(key); err != nil {
//	    return fmt.Errorf("invalid locator key: %w", err)
//	}
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	if !keyPattern.MatchString(key) {
		return fmt.Errorf("invalid key format: %q (must be 1-128 lowercase alphanumeric chars or underscores, not starting with a digit)", key)
	}

	return nil
}

// ValidateKeys validates multiple locator keys.
// Returns an error listing all invalid keys if any fail validation.
func ValidateKeys(keys []string) error {
	var invalid []string
	for _, k := range keys {
		if err := ValidateKey(k); err != nil {
			invalid = append(invalid, k)
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid keys: %v", invalid)
	}
	return nil
}

// ValidateClassName validates a generated page object class name.
//
// Valid class names are PascalCase: an uppercase letter followed by up
// to 63 letters or digits.
//
// Returns an error if the name is invalid.
func ValidateClassName(name string) error {
	if name == "" {
		return fmt.Errorf("class name cannot be empty")
	}

	if !classNamePattern.MatchString(name) {
		return fmt.Errorf("invalid class name: %q (must be PascalCase, 1-64 letters or digits)", name)
	}

	return nil
}

// SanitizeClassName derives a valid PascalCase class name from a file stem.
// Returns the class name if one can be derived, or an error if the stem
// contains no usable characters.
//
// Use this when generating a page object from a template file name:
//
//	className, err := validation.SanitizeClassName("login-form.component")
//	// className == "LoginFormComponent"
func SanitizeClassName(stem string) (string, error) {
	var b strings.Builder
	upperNext := true
	for _, r := range stem {
		switch {
		case unicode.IsLetter(r):
			if upperNext {
				b.WriteRune(unicode.ToUpper(r))
				upperNext = false
			} else {
				b.WriteRune(r)
			}
		case unicode.IsDigit(r):
			if b.Len() > 0 {
				b.WriteRune(r)
			}
			upperNext = true
		default:
			// Separators (hyphen, dot, underscore, space) start a new word
			upperNext = true
		}
	}

	name := b.String()
	if len(name) > 64 {
		name = name[:64]
	}
	if err := ValidateClassName(name); err != nil {
		return "", fmt.Errorf("cannot derive class name from %q: %w", stem, err)
	}
	return name, nil
}

// ValidateRelPath validates a relative source path recorded in artifacts.
//
// Valid paths:
//   - Non-empty
//   - Relative (no leading / or drive letter)
//   - No parent traversal (.. segments)
//   - Forward slashes only (artifact paths are normalized at scan time)
//
// Returns an error if the path is invalid.
//
// Example:
//
//	if err := validation.ValidateRelPath(rel); err != nil {
//	    return fmt.Errorf("unsafe artifact path: %w", err)
//	}
func ValidateRelPath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	if strings.Contains(path, "\\") {
		return fmt.Errorf("path %q contains backslashes (must use forward slashes)", path)
	}

	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return fmt.Errorf("path %q is absolute (must be relative)", path)
	}

	// Reject drive-letter prefixes on any platform
	if len(path) >= 2 && path[1] == ':' {
		return fmt.Errorf("path %q has a drive prefix (must be relative)", path)
	}

	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return fmt.Errorf("path %q contains parent traversal", path)
		}
	}

	return nil
}
