// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

//go:build unix

package scan

import (
	"os"
	"syscall"
)

// unixFileLocker implements fileLocker using flock(2). Locks are
// advisory, process-scoped, and released on close or process exit.
type unixFileLocker struct{}

// lock acquires a non-blocking exclusive lock.
func (unixFileLocker) lock(f *os.File) error {
	err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
	if err != nil {
		if err == syscall.EWOULDBLOCK {
			return ErrLockHeld
		}
		return err
	}
	return nil
}

// unlock releases the lock.
func (unixFileLocker) unlock(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}

// isProcessAlive checks process existence with signal 0.
func isProcessAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal 0 doesn't actually send anything, just checks if process exists
	err = process.Signal(syscall.Signal(0))
	return err == nil
}

// newPlatformLocker returns the Unix flock implementation.
func newPlatformLocker() fileLocker {
	return unixFileLocker{}
}
