/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package filelock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"chainguard.dev/gitmaint/retry"
	"github.com/chainguard-dev/clog"
)

// ErrLocked is returned when the lock is held by someone else.
var ErrLocked = errors.New("lock is held by another owner")

// Locker is a non-blocking exclusive lock primitive.
type Locker interface {
	// Path identifies the locked resource.
	Path() string
	// TryLock attempts to take the lock without blocking. It reports false
	// with a nil error when another owner holds it.
	TryLock() (bool, error)
	// Unlock releases a lock taken by TryLock.
	Unlock() error
}

// AcquisitionError reports a failure to obtain a lock, either because it
// stayed busy until the timeout or because the native call failed.
type AcquisitionError struct {
	Path string
	Err  error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquiring lock %s: %v", e.Path, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// FileLock is the native file lock for the current operating system.
type FileLock struct {
	path string

	mu   sync.Mutex
	file *os.File
}

var _ Locker = (*FileLock)(nil)

// New returns an unlocked FileLock for path. The file is created on the
// first TryLock and left in place afterwards.
func New(path string) *FileLock {
	return &FileLock{path: path}
}

// Path implements Locker.
func (l *FileLock) Path() string {
	return l.path
}

// TryLock implements Locker.
func (l *FileLock) TryLock() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return false, fmt.Errorf("lock %s is already held by this handle", l.path)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, fmt.Errorf("creating lock directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return false, fmt.Errorf("opening lock file: %w", err)
	}

	ok, err := lockFile(f)
	if err != nil || !ok {
		f.Close()
		return false, err
	}
	l.file = f
	return true, nil
}

// Unlock implements Locker.
func (l *FileLock) Unlock() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil

	uerr := unlockFile(f)
	cerr := f.Close()
	return errors.Join(uerr, cerr)
}

// Lock is a held lock. Release must be called on every exit path of the
// owning scope; it is safe to call more than once.
type Lock struct {
	locker Locker

	once sync.Once
	err  error
}

// Path returns the path of the held lock.
func (l *Lock) Path() string {
	return l.locker.Path()
}

// Release unlocks the lock. Only the first call has any effect.
func (l *Lock) Release() error {
	l.once.Do(func() {
		l.err = l.locker.Unlock()
	})
	return l.err
}

var pollConfig = retry.Config{
	BaseBackoff: 5 * time.Millisecond,
	MaxBackoff:  250 * time.Millisecond,
	MaxJitter:   5 * time.Millisecond,
}

// Acquire takes locker, polling until it succeeds, timeout elapses or ctx
// is done. A zero timeout makes a single attempt. Busy timeouts wrap
// ErrLocked; native failures are returned immediately.
func Acquire(ctx context.Context, locker Locker, timeout time.Duration) (*Lock, error) {
	attempt := func() (bool, error) {
		ok, err := locker.TryLock()
		if err != nil {
			return false, err
		}
		if !ok {
			return false, ErrLocked
		}
		return true, nil
	}
	isBusy := func(err error) bool { return errors.Is(err, ErrLocked) }

	var err error
	if timeout <= 0 {
		_, err = attempt()
	} else {
		pollCtx, cancel := context.WithTimeout(ctx, timeout)
		_, err = retry.Poll(pollCtx, pollConfig, "acquire "+locker.Path(), isBusy, attempt)
		cancel()
	}
	if err != nil {
		return nil, &AcquisitionError{Path: locker.Path(), Err: err}
	}

	clog.FromContext(ctx).Debugf("Acquired lock %s", locker.Path())
	return &Lock{locker: locker}, nil
}

// AcquirePath is Acquire with the native FileLock for path.
func AcquirePath(ctx context.Context, path string, timeout time.Duration) (*Lock, error) {
	return Acquire(ctx, New(path), timeout)
}
