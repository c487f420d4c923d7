package locator

import "sort"

// Table aggregates the extraction results of a full scan run.
//
// Files are kept sorted by FilePath so that every consumer (emitters,
// reports, drift checks) observes the same deterministic order
// regardless of the order in which files were processed.
type Table struct {
	Files []*FileResult
}

// NewTable builds a Table from per-file results, sorted by file path.
// Nil results are skipped.
func NewTable(results []*FileResult) *Table {
	files := make([]*FileResult, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		files = append(files, r)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].FilePath < files[j].FilePath
	})
	return &Table{Files: files}
}

// TotalRecords returns the number of locator records across all files.
func (t *Table) TotalRecords() int {
	n := 0
	for _, f := range t.Files {
		n += len(f.Records)
	}
	return n
}

// TotalDropped returns the number of low-relevance drops across all files.
func (t *Table) TotalDropped() int {
	n := 0
	for _, f := range t.Files {
		n += f.Dropped
	}
	return n
}

// CountByType tallies records by locator type name.
func (t *Table) CountByType() map[string]int {
	counts := make(map[string]int)
	for _, f := range t.Files {
		for _, r := range f.Records {
			counts[r.Type.String()]++
		}
	}
	return counts
}

// CountByRobustness tallies records by robustness name.
func (t *Table) CountByRobustness() map[string]int {
	counts := make(map[string]int)
	for _, f := range t.Files {
		for _, r := range f.Records {
			counts[r.Robustness.String()]++
		}
	}
	return counts
}

// CountByRelevance tallies records by relevance name.
func (t *Table) CountByRelevance() map[string]int {
	counts := make(map[string]int)
	for _, f := range t.Files {
		for _, r := range f.Records {
			counts[r.Relevance.String()]++
		}
	}
	return counts
}

// Warnings collects per-file warnings in file order.
func (t *Table) Warnings() []string {
	var out []string
	for _, f := range t.Files {
		out = append(out, f.Warnings...)
	}
	return out
}

// Advisories collects per-file advisories in file order.
func (t *Table) Advisories() []string {
	var out []string
	for _, f := range t.Files {
		out = append(out, f.Advisories...)
	}
	return out
}
