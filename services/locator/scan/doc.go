// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scan orchestrates batch locator extraction over a project tree.
//
// This package implements the core logic for the `beacon scan` command:
// discover template and script files under the scan root, harvest string
// constants from script sources (phase 1), extract locators from every
// template file (phase 2), and write the emitted artifacts to the output
// directory under a single-writer file lock.
//
// # Two-Phase Pipeline
//
// Phase 1 builds the immutable constant table before any extraction
// starts; phase 2 workers only ever read it. The hard barrier between
// the phases is what makes per-file extraction a pure function of
// (file text, constant table).
//
// # Buffered Channel Architecture
//
// Extraction uses buffered channels for work distribution:
//
//	┌──────────┐     ┌───────────────────┐     ┌───────────────────┐
//	│ Feeder   │────▶│ fileChan (buffer) │────▶│ Worker Pool (N)   │
//	└──────────┘     └───────────────────┘     └───────────────────┘
//	                                                    │
//	                                                    ▼
//	┌──────────┐     ┌───────────────────┐     ┌───────────────────┐
//	│ Collector│◀────│ resultChan (buf)  │◀────│ File Results      │
//	└──────────┘     └───────────────────┘     └───────────────────┘
//
// # Determinism
//
// Artifact bytes depend only on the scanned sources and the
// configuration. File lists are sorted, the constant table is built in
// sorted file order, failures are sorted before reporting, and no
// wall-clock values enter artifact bodies. Scanning an unchanged tree
// twice produces byte-identical artifacts.
//
// # Thread Safety
//
// A Scanner is safe for concurrent use on different output directories.
// Concurrent scans into the same output directory are serialized by the
// .beacon.lock file.
package scan
