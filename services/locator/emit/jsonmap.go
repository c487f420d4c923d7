// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package emit

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/AleutianAI/beacon/pkg/validation"
	"github.com/AleutianAI/beacon/services/locator"
)

// JSONMapFileName is the path of the JSON locator map artifact.
const JSONMapFileName = "locators.json"

// JSONEmitter renders the locator table as a single JSON map.
//
// Files appear in sorted path order, records in first-seen source
// order. Only files with at least one surviving record are listed.
type JSONEmitter struct{}

// Name returns the format name.
func (e *JSONEmitter) Name() string {
	return string(FormatJSON)
}

type jsonLocatorMap struct {
	SchemaVersion    string          `json:"schema_version"`
	GeneratorVersion string          `json:"generator_version"`
	Files            []jsonFileEntry `json:"files"`
}

type jsonFileEntry struct {
	File     string                   `json:"file"`
	Locators []*locator.LocatorRecord `json:"locators"`
}

// Emit renders the table into locators.json.
func (e *JSONEmitter) Emit(table *locator.Table, opts Options) ([]Artifact, error) {
	doc := jsonLocatorMap{
		SchemaVersion:    SchemaVersion,
		GeneratorVersion: generatorVersion(opts),
		Files:            make([]jsonFileEntry, 0, len(table.Files)),
	}
	for _, f := range table.Files {
		if len(f.Records) == 0 {
			continue
		}
		if err := validation.ValidateRelPath(f.FilePath); err != nil {
			return nil, fmt.Errorf("locator map: %w", err)
		}
		if err := validation.ValidateKeys(f.Keys()); err != nil {
			return nil, fmt.Errorf("locator map for %s: %w", f.FilePath, err)
		}
		doc.Files = append(doc.Files, jsonFileEntry{File: f.FilePath, Locators: f.Records})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding locator map: %w", err)
	}
	return []Artifact{{Path: JSONMapFileName, Content: buf.Bytes()}}, nil
}
