// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

//go:build windows

package scan

import (
	"os"
)

// windowsFileLocker is a stub implementation for Windows.
type windowsFileLocker struct{}

// lock is a no-op on Windows.
//
// TODO: Implement using golang.org/x/sys/windows.LockFileEx
func (windowsFileLocker) lock(f *os.File) error {
	return nil
}

// unlock is a no-op on Windows.
//
// TODO: Implement using golang.org/x/sys/windows.UnlockFileEx
func (windowsFileLocker) unlock(f *os.File) error {
	return nil
}

// isProcessAlive always reports false on Windows, which makes every
// contested lock look stale. Harmless while lock is a no-op.
//
// TODO: Implement using golang.org/x/sys/windows.OpenProcess
func isProcessAlive(pid int) bool {
	return false
}

// newPlatformLocker returns the Windows stub implementation.
func newPlatformLocker() fileLocker {
	return windowsFileLocker{}
}
