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
	"github.com/google/uuid"

	"github.com/AleutianAI/beacon/services/locator"
)

// APIVersion is the report JSON API version.
const APIVersion = "1.0"

// Exit codes for the scan command.
const (
	// ExitSuccess indicates successful completion.
	ExitSuccess = 0

	// ExitFailure indicates the operation failed.
	ExitFailure = 1

	// ExitBadArgs indicates invalid arguments.
	ExitBadArgs = 2
)

// Report summarizes a scan run. The report goes to stdout or a log,
// never into the artifact directory: RunID, StartedAt and DurationMs
// vary between runs and would break artifact idempotence.
type Report struct {
	APIVersion    string         `json:"api_version"`
	RunID         string         `json:"run_id"`
	Root          string         `json:"root"`
	StartedAt     string         `json:"started_at"`
	DurationMs    int64          `json:"duration_ms"`
	DryRun        bool           `json:"dry_run,omitempty"`
	FilesScanned  int            `json:"files_scanned"`
	FilesFailed   int            `json:"files_failed"`
	ScriptFiles   int            `json:"script_files"`
	LocatorsFound int            `json:"locators_found"`
	Dropped       int            `json:"dropped"`
	ByType        map[string]int `json:"by_type,omitempty"`
	ByRobustness  map[string]int `json:"by_robustness,omitempty"`
	ByRelevance   map[string]int `json:"by_relevance,omitempty"`
	Warnings      []string       `json:"warnings,omitempty"`
	Advisories    []string       `json:"advisories,omitempty"`
	Artifacts     []string       `json:"artifacts,omitempty"`
	Failures      []string       `json:"failures,omitempty"`
}

// NewReport creates a Report for a run over root.
func NewReport(root string) *Report {
	return &Report{
		APIVersion: APIVersion,
		RunID:      uuid.NewString(),
		Root:       root,
	}
}

// fillFromTable copies the aggregate tallies out of the locator table.
func (r *Report) fillFromTable(table *locator.Table) {
	r.LocatorsFound = table.TotalRecords()
	r.Dropped = table.TotalDropped()
	r.ByType = table.CountByType()
	r.ByRobustness = table.CountByRobustness()
	r.ByRelevance = table.CountByRelevance()
	r.Warnings = append(r.Warnings, table.Warnings()...)
	r.Advisories = append(r.Advisories, table.Advisories()...)
}
