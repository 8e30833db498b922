/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package filelock

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chainguard-dev/clog/slogtest"
	"github.com/stretchr/testify/require"
)

func TestAcquire_CreatesLockFile(t *testing.T) {
	t.Parallel()
	ctx := slogtest.Context(t)

	path := filepath.Join(t.TempDir(), "objects", "maintenance.lock")
	lock, err := AcquirePath(ctx, path, 0)
	require.NoError(t, err)
	require.Equal(t, path, lock.Path())

	_, err = os.Stat(path)
	require.NoError(t, err, "lock file should exist while held")

	require.NoError(t, lock.Release())
	require.NoError(t, lock.Release(), "second release must be a no-op")
}

func TestAcquire_SecondAttemptFailsWhileHeld(t *testing.T) {
	t.Parallel()
	ctx := slogtest.Context(t)
	path := filepath.Join(t.TempDir(), "maintenance.lock")

	first, err := AcquirePath(ctx, path, 0)
	require.NoError(t, err)
	defer first.Release()

	start := time.Now()
	_, err = AcquirePath(ctx, path, 50*time.Millisecond)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrLocked), "want ErrLocked, got %v", err)
	var aerr *AcquisitionError
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, path, aerr.Path)
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	_, err = AcquirePath(ctx, path, 0)
	require.ErrorIs(t, err, ErrLocked)
}

func TestAcquire_WaitsForRelease(t *testing.T) {
	t.Parallel()
	ctx := slogtest.Context(t)
	path := filepath.Join(t.TempDir(), "maintenance.lock")

	first, err := AcquirePath(ctx, path, 0)
	require.NoError(t, err)

	go func() {
		time.Sleep(30 * time.Millisecond)
		first.Release()
	}()

	second, err := AcquirePath(ctx, path, 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, second.Release())
}

func TestAcquire_ContextCancelled(t *testing.T) {
	t.Parallel()
	ctx := slogtest.Context(t)
	path := filepath.Join(t.TempDir(), "maintenance.lock")

	first, err := AcquirePath(ctx, path, 0)
	require.NoError(t, err)
	defer first.Release()

	cctx, cancel := context.WithCancel(ctx)
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err = AcquirePath(cctx, path, time.Minute)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, err, ErrLocked)
}

func TestAcquire_MutualExclusion(t *testing.T) {
	t.Parallel()
	ctx := slogtest.Context(t)
	path := filepath.Join(t.TempDir(), "maintenance.lock")

	var (
		holders    atomic.Int32
		maxHolders atomic.Int32
		wg         sync.WaitGroup
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lock, err := AcquirePath(ctx, path, 10*time.Second)
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			defer lock.Release()

			n := holders.Add(1)
			for {
				m := maxHolders.Load()
				if n <= m || maxHolders.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			holders.Add(-1)
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), maxHolders.Load(), "lock was held concurrently")
}

func TestFileLock_TryLockTwiceOnSameHandle(t *testing.T) {
	t.Parallel()
	l := New(filepath.Join(t.TempDir(), "x.lock"))

	ok, err := l.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer l.Unlock()

	_, err = l.TryLock()
	require.Error(t, err, "handles are not re-entrant")
}

func TestFileLock_UnlockWithoutLock(t *testing.T) {
	t.Parallel()
	require.NoError(t, New(filepath.Join(t.TempDir(), "x.lock")).Unlock())
}

const helperEnv = "FILELOCK_HELPER_PATH"

// TestHelperProcess holds the lock named by FILELOCK_HELPER_PATH until its
// stdin is closed. It only runs when invoked by TestAcquire_CrossProcess.
func TestHelperProcess(t *testing.T) {
	path := os.Getenv(helperEnv)
	if path == "" {
		t.Skip("helper process only")
	}
	lock, err := AcquirePath(context.Background(), path, 0)
	if err != nil {
		os.Stdout.WriteString("error: " + err.Error() + "\n")
		os.Exit(1)
	}
	os.Stdout.WriteString("locked\n")
	io.Copy(io.Discard, os.Stdin)
	lock.Release()
	os.Exit(0)
}

func TestAcquire_CrossProcess(t *testing.T) {
	t.Parallel()
	ctx := slogtest.Context(t)
	path := filepath.Join(t.TempDir(), "maintenance.lock")

	cmd := exec.Command(os.Args[0], "-test.run=^TestHelperProcess$")
	cmd.Env = append(os.Environ(), helperEnv+"="+path)
	stdin, err := cmd.StdinPipe()
	require.NoError(t, err)
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())

	line, err := bufio.NewReader(stdout).ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "locked\n", line)

	_, err = AcquirePath(ctx, path, 20*time.Millisecond)
	require.ErrorIs(t, err, ErrLocked, "lock held by another process must not be granted")

	require.NoError(t, stdin.Close())
	require.NoError(t, cmd.Wait())

	lock, err := AcquirePath(ctx, path, 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, lock.Release())
}
