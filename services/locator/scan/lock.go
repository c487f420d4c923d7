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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LockFileName is created inside the output directory while a scan is
// writing artifacts.
const LockFileName = ".beacon.lock"

// StaleLockDuration is the age after which a lock whose holder cannot
// be confirmed alive is considered stale.
const StaleLockDuration = 1 * time.Hour

// LockInfo is the JSON payload written into the lock file for
// debugging and stale-lock detection.
type LockInfo struct {
	PID        int       `json:"pid"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// fileLocker abstracts platform-specific file locking.
// Unix uses flock(2); Windows is a no-op stub.
type fileLocker interface {
	lock(f *os.File) error
	unlock(f *os.File) error
}

// FileLock is an advisory single-writer lock on the output directory.
//
// # Thread Safety
//
// A FileLock guards cross-process exclusion only. Sharing one FileLock
// between goroutines is not supported; each scan owns its own.
type FileLock struct {
	path   string
	file   *os.File
	locker fileLocker
}

// NewFileLock creates a lock handle for path. The lock is not acquired
// until Acquire is called.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		path:   path,
		locker: newPlatformLocker(),
	}
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.path
}

// Acquire takes the lock, creating the lock file if needed.
//
// Returns ErrLockHeld when another process holds the lock. On success
// the holder's PID and acquisition time are recorded in the lock file.
func (l *FileLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("creating lock directory: %w", err)
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("creating lock file: %w", err)
	}

	if err := l.locker.lock(file); err != nil {
		file.Close()
		return err
	}

	info := LockInfo{PID: os.Getpid(), AcquiredAt: time.Now().UTC()}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		l.locker.unlock(file)
		file.Close()
		return fmt.Errorf("encoding lock info: %w", err)
	}
	if err := file.Truncate(0); err == nil {
		_, err = file.WriteAt(data, 0)
	}
	if err != nil {
		l.locker.unlock(file)
		file.Close()
		return fmt.Errorf("writing lock info: %w", err)
	}

	l.file = file
	return nil
}

// Release unlocks and removes the lock file. Safe to call when the
// lock was never acquired.
func (l *FileLock) Release() error {
	if l.file == nil {
		return nil
	}
	unlockErr := l.locker.unlock(l.file)
	closeErr := l.file.Close()
	l.file = nil
	removeErr := os.Remove(l.path)

	if unlockErr != nil {
		return fmt.Errorf("unlocking: %w", unlockErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing lock file: %w", closeErr)
	}
	if removeErr != nil && !os.IsNotExist(removeErr) {
		return fmt.Errorf("removing lock file: %w", removeErr)
	}
	return nil
}

// HolderInfo reads the lock info left by the current holder.
func (l *FileLock) HolderInfo() (*LockInfo, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, err
	}
	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parsing lock info: %w", err)
	}
	return &info, nil
}

// IsStale reports whether the lock can be safely broken: its holder is
// no longer alive or the lock has outlived StaleLockDuration.
func (l *FileLock) IsStale() bool {
	info, err := l.HolderInfo()
	if err != nil {
		// Unreadable info: fall back to the file's age.
		stat, statErr := os.Stat(l.path)
		if statErr != nil {
			return false
		}
		return time.Since(stat.ModTime()) > StaleLockDuration
	}
	if time.Since(info.AcquiredAt) > StaleLockDuration {
		return true
	}
	return !isProcessAlive(info.PID)
}

// ForceRelease removes the lock file without holding the lock. Only
// call after IsStale confirms the holder is gone.
func (l *FileLock) ForceRelease() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale lock: %w", err)
	}
	return nil
}
