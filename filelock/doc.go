/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package filelock provides host-wide exclusive locks keyed by a file
// path. Each operating system uses its native advisory primitive:
// flock(2) on unix systems and LockFileEx on Windows. Both are exposed
// through the same FileLock type and the Locker interface.
//
// Locks are held per open file, so two FileLocks on the same path exclude
// each other whether they live in different processes or in different
// goroutines of one process. Acquisition is not re-entrant and not fair:
// waiters poll with backoff and whichever attempt lands first wins.
//
// Typical usage:
//
//	lock, err := filelock.Acquire(ctx, filelock.New(path), 10*time.Second)
//	if err != nil {
//	    return err
//	}
//	defer lock.Release()
package filelock
