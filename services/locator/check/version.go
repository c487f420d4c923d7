// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package check

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// stampPattern matches the generator stamp on page-object headers.
var stampPattern = regexp.MustCompile(`^// Generated by beacon (\S+)\.`)

// artifactVersion extracts the generator-version stamp from an
// artifact's on-disk content. Returns false when the artifact carries
// no readable stamp.
func artifactVersion(path string, content []byte) (string, bool) {
	switch {
	case strings.HasSuffix(path, ".json"):
		var doc struct {
			GeneratorVersion string `json:"generator_version"`
		}
		if err := json.Unmarshal(content, &doc); err != nil || doc.GeneratorVersion == "" {
			return "", false
		}
		return doc.GeneratorVersion, true

	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		var doc struct {
			GeneratorVersion string `yaml:"generator_version"`
		}
		if err := yaml.Unmarshal(content, &doc); err != nil || doc.GeneratorVersion == "" {
			return "", false
		}
		return doc.GeneratorVersion, true

	case strings.HasSuffix(path, ".ts"):
		m := stampPattern.FindSubmatch(content)
		if m == nil {
			return "", false
		}
		return string(m[1]), true
	}
	return "", false
}

// versionAdvice compares stamped artifact versions against the current
// generator version and advises when the majors diverge. Versions that
// do not parse as semver (including the "dev" default) produce no
// advice; the byte comparison already covers them.
func versionAdvice(current string, stamped map[string]string) []string {
	cur := "v" + current
	if !semver.IsValid(cur) {
		return nil
	}

	paths := make([]string, 0, len(stamped))
	for path := range stamped {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var advice []string
	for _, path := range paths {
		v := "v" + stamped[path]
		if !semver.IsValid(v) {
			continue
		}
		if semver.Major(v) != semver.Major(cur) {
			advice = append(advice, fmt.Sprintf(
				"%s: generated by %s, current generator is %s; regenerate artifacts",
				path, stamped[path], current))
		}
	}
	return advice
}
