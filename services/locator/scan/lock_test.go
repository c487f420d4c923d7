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
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestFileLock_AcquireRelease tests basic lock acquire and release.
func TestFileLock_AcquireRelease(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), LockFileName)
	lock := NewFileLock(lockPath)

	if err := lock.Acquire(); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	// Lock file exists while held
	if _, err := os.Stat(lockPath); err != nil {
		t.Errorf("lock file not created: %v", err)
	}

	if err := lock.Release(); err != nil {
		t.Errorf("Release failed: %v", err)
	}

	// Lock file removed on release
	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Errorf("lock file should be removed after release, stat err: %v", err)
	}
}

// TestFileLock_CreatesParentDirectory tests that Acquire creates the
// output directory when it does not exist yet.
func TestFileLock_CreatesParentDirectory(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "out", LockFileName)
	lock := NewFileLock(lockPath)

	if err := lock.Acquire(); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer lock.Release()

	if _, err := os.Stat(lockPath); err != nil {
		t.Errorf("lock file not created: %v", err)
	}
}

// TestFileLock_Contention tests that a second handle cannot acquire a
// held lock.
func TestFileLock_Contention(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), LockFileName)
	lock1 := NewFileLock(lockPath)
	lock2 := NewFileLock(lockPath)

	if err := lock1.Acquire(); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	defer lock1.Release()

	err := lock2.Acquire()
	if err == nil {
		lock2.Release()
		t.Fatal("second Acquire should fail while lock is held")
	}
	if !errors.Is(err, ErrLockHeld) {
		t.Errorf("expected ErrLockHeld, got: %v", err)
	}
}

// TestFileLock_ReacquireAfterRelease tests the release/acquire cycle.
func TestFileLock_ReacquireAfterRelease(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), LockFileName)
	lock1 := NewFileLock(lockPath)
	lock2 := NewFileLock(lockPath)

	if err := lock1.Acquire(); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if err := lock1.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	if err := lock2.Acquire(); err != nil {
		t.Errorf("Acquire after release failed: %v", err)
	}
	lock2.Release()
}

// TestFileLock_ReleaseWithoutAcquire tests that Release is safe on a
// lock that was never acquired.
func TestFileLock_ReleaseWithoutAcquire(t *testing.T) {
	lock := NewFileLock(filepath.Join(t.TempDir(), LockFileName))
	if err := lock.Release(); err != nil {
		t.Errorf("Release without Acquire should be a no-op, got: %v", err)
	}
}

// TestFileLock_HolderInfo tests the recorded holder metadata.
func TestFileLock_HolderInfo(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), LockFileName)
	lock := NewFileLock(lockPath)

	if err := lock.Acquire(); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer lock.Release()

	info, err := lock.HolderInfo()
	if err != nil {
		t.Fatalf("HolderInfo failed: %v", err)
	}
	if info.PID != os.Getpid() {
		t.Errorf("expected holder PID %d, got %d", os.Getpid(), info.PID)
	}
	if time.Since(info.AcquiredAt) > time.Minute {
		t.Errorf("AcquiredAt should be recent, got %v", info.AcquiredAt)
	}
}

// TestFileLock_IsStale_HeldByLiveProcess tests that a fresh lock held
// by a live process is not stale.
func TestFileLock_IsStale_HeldByLiveProcess(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), LockFileName)
	lock := NewFileLock(lockPath)

	if err := lock.Acquire(); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer lock.Release()

	other := NewFileLock(lockPath)
	if other.IsStale() {
		t.Error("fresh lock held by a live process should not be stale")
	}
}

// TestFileLock_IsStale_DeadHolder tests stale detection when the
// recorded holder PID no longer exists.
func TestFileLock_IsStale_DeadHolder(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), LockFileName)

	info := LockInfo{PID: math.MaxInt32, AcquiredAt: time.Now().UTC()}
	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("marshal lock info: %v", err)
	}
	if err := os.WriteFile(lockPath, data, 0644); err != nil {
		t.Fatalf("write lock file: %v", err)
	}

	lock := NewFileLock(lockPath)
	if !lock.IsStale() {
		t.Error("lock held by a nonexistent PID should be stale")
	}
}

// TestFileLock_IsStale_ExpiredHolder tests stale detection when the
// lock has outlived StaleLockDuration.
func TestFileLock_IsStale_ExpiredHolder(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), LockFileName)

	info := LockInfo{
		PID:        os.Getpid(),
		AcquiredAt: time.Now().UTC().Add(-2 * StaleLockDuration),
	}
	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("marshal lock info: %v", err)
	}
	if err := os.WriteFile(lockPath, data, 0644); err != nil {
		t.Fatalf("write lock file: %v", err)
	}

	lock := NewFileLock(lockPath)
	if !lock.IsStale() {
		t.Error("lock older than StaleLockDuration should be stale")
	}
}

// TestFileLock_IsStale_UnreadableInfo tests the mtime fallback when
// the lock file does not hold valid JSON.
func TestFileLock_IsStale_UnreadableInfo(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), LockFileName)
	if err := os.WriteFile(lockPath, []byte("not json"), 0644); err != nil {
		t.Fatalf("write lock file: %v", err)
	}

	lock := NewFileLock(lockPath)
	if lock.IsStale() {
		t.Error("fresh lock file with unreadable info should not be stale")
	}

	old := time.Now().Add(-2 * StaleLockDuration)
	if err := os.Chtimes(lockPath, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if !lock.IsStale() {
		t.Error("old lock file with unreadable info should be stale")
	}
}

// TestFileLock_ForceRelease tests breaking a lock without holding it.
func TestFileLock_ForceRelease(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), LockFileName)
	if err := os.WriteFile(lockPath, []byte("{}"), 0644); err != nil {
		t.Fatalf("write lock file: %v", err)
	}

	lock := NewFileLock(lockPath)
	if err := lock.ForceRelease(); err != nil {
		t.Fatalf("ForceRelease failed: %v", err)
	}
	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Errorf("lock file should be removed, stat err: %v", err)
	}

	// Second call on the missing file is a no-op.
	if err := lock.ForceRelease(); err != nil {
		t.Errorf("ForceRelease on missing file should succeed, got: %v", err)
	}
}

// TestFileLock_Path tests the path accessor.
func TestFileLock_Path(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), LockFileName)
	lock := NewFileLock(lockPath)
	if lock.Path() != lockPath {
		t.Errorf("expected path %q, got %q", lockPath, lock.Path())
	}
}
