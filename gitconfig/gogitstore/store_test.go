/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package gogitstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chainguard.dev/gitmaint/gitconfig"
	"chainguard.dev/gitmaint/retry"
	"github.com/chainguard-dev/clog/slogtest"
	"github.com/go-git/go-git/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T, opts ...Option) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	if _, err := git.PlainInit(dir, false); err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	global := filepath.Join(t.TempDir(), "gitconfig")
	if err := os.WriteFile(global, []byte("[status]\n\taheadbehind = true\n[user]\n\tname = Someone\n"), 0o644); err != nil {
		t.Fatalf("writing global config: %v", err)
	}
	missing := filepath.Join(t.TempDir(), "absent")
	return ForRepository(filepath.Join(dir, ".git"), append([]Option{WithGlobalPaths(missing, global)}, opts...)...), dir
}

func TestSetLocal_VisibleToGoGit(t *testing.T) {
	t.Parallel()
	ctx := slogtest.Context(t)
	s, dir := newRepo(t)

	require.NoError(t, s.SetLocal(ctx, "core.fscache", "true"))
	require.NoError(t, s.SetLocal(ctx, "remote.origin.url", "https://example.com/repo.git"))

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	cfg, err := repo.Config()
	require.NoError(t, err)
	require.Equal(t, "true", cfg.Raw.Section("core").Option("fscache"))
	require.Equal(t, "https://example.com/repo.git", cfg.Raw.Section("remote").Subsection("origin").Option("url"))

	_, err = os.Stat(s.LocalPath() + lockSuffix)
	require.True(t, os.IsNotExist(err), "lock file left behind")
}

func TestSetLocal_ReplacesExistingValue(t *testing.T) {
	t.Parallel()
	ctx := slogtest.Context(t)
	s, _ := newRepo(t)

	require.NoError(t, s.SetLocal(ctx, "gc.auto", "256"))
	require.NoError(t, s.SetLocal(ctx, "GC.Auto", "0"))

	got, err := s.ReadAll(ctx, gitconfig.LocalOnly)
	require.NoError(t, err)
	require.Equal(t, []string{"0"}, got.Get("gc.auto"))
}

func TestSetLocal_PreservesMultiValuedKeys(t *testing.T) {
	t.Parallel()
	ctx := slogtest.Context(t)
	s, _ := newRepo(t)

	f, err := os.OpenFile(s.LocalPath(), os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString("[remote \"origin\"]\n\tfetch = +refs/heads/*:refs/remotes/origin/*\n\tfetch = +refs/tags/*:refs/tags/*\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, s.SetLocal(ctx, "core.multiPackIndex", "true"))

	got, err := s.ReadAll(ctx, gitconfig.LocalOnly)
	require.NoError(t, err)
	want := []string{"+refs/heads/*:refs/remotes/origin/*", "+refs/tags/*:refs/tags/*"}
	if diff := cmp.Diff(want, got.Get("remote.origin.fetch")); diff != "" {
		t.Errorf("fetch refspecs (-want +got):\n%s", diff)
	}
	require.True(t, got.Has("core.multipackindex", "true"))
}

func TestUnsetLocal(t *testing.T) {
	t.Parallel()
	ctx := slogtest.Context(t)
	s, _ := newRepo(t)

	require.NoError(t, s.SetLocal(ctx, "feature.manyFiles", "true"))
	require.NoError(t, s.SetLocal(ctx, "branch.main.remote", "origin"))

	require.NoError(t, s.UnsetLocal(ctx, "feature.manyFiles"))
	require.NoError(t, s.UnsetLocal(ctx, "branch.main.remote"))
	// Missing keys and sections are not errors.
	require.NoError(t, s.UnsetLocal(ctx, "feature.manyFiles"))
	require.NoError(t, s.UnsetLocal(ctx, "nosuch.section.key"))

	got, err := s.ReadAll(ctx, gitconfig.LocalOnly)
	require.NoError(t, err)
	require.False(t, got.Present("feature.manyfiles"))
	require.False(t, got.Present("branch.main.remote"))

	raw, err := os.ReadFile(s.LocalPath())
	require.NoError(t, err)
	require.NotContains(t, string(raw), "[feature]")
	require.NotContains(t, string(raw), "branch")
}

func TestSetLocal_InvalidKey(t *testing.T) {
	t.Parallel()
	ctx := slogtest.Context(t)
	s, _ := newRepo(t)

	require.Error(t, s.SetLocal(ctx, "nodot", "x"))
	require.Error(t, s.UnsetLocal(ctx, "trailing."))
}

func TestReadAll_Scopes(t *testing.T) {
	t.Parallel()
	ctx := slogtest.Context(t)
	s, _ := newRepo(t)

	require.NoError(t, s.SetLocal(ctx, "status.aheadbehind", "false"))

	local, err := s.ReadAll(ctx, gitconfig.LocalOnly)
	require.NoError(t, err)
	require.Equal(t, []string{"false"}, local.Get("status.aheadbehind"))
	require.False(t, local.Present("user.name"))

	all, err := s.ReadAll(ctx, gitconfig.AllScopes)
	require.NoError(t, err)
	// Global values come first, local values last.
	require.Equal(t, []string{"true", "false"}, all.Get("status.aheadbehind"))
	require.Equal(t, []string{"Someone"}, all.Get("user.name"))
}

func TestReadAll_MissingLocalConfig(t *testing.T) {
	t.Parallel()
	ctx := slogtest.Context(t)

	s := New(filepath.Join(t.TempDir(), "config"))
	_, err := s.ReadAll(ctx, gitconfig.LocalOnly)
	require.Error(t, err)
}

func TestWrite_LockHeld(t *testing.T) {
	t.Parallel()
	ctx := slogtest.Context(t)
	s, _ := newRepo(t, WithLockRetry(retry.Config{MaxRetries: 2, BaseBackoff: time.Millisecond}))

	before, err := os.ReadFile(s.LocalPath())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.LocalPath()+lockSuffix, nil, 0o644))

	err = s.SetLocal(ctx, "core.fscache", "true")
	require.True(t, errors.Is(err, ErrConfigLocked), "got %v", err)

	after, err := os.ReadFile(s.LocalPath())
	require.NoError(t, err)
	require.Equal(t, string(before), string(after))
	// Someone else's lock is left alone.
	_, err = os.Stat(s.LocalPath() + lockSuffix)
	require.NoError(t, err)
}

func TestWrite_WaitsForLockRelease(t *testing.T) {
	t.Parallel()
	ctx := slogtest.Context(t)
	s, _ := newRepo(t, WithLockRetry(retry.Config{MaxRetries: 50, BaseBackoff: 5 * time.Millisecond, MaxBackoff: 20 * time.Millisecond}))

	lockPath := s.LocalPath() + lockSuffix
	require.NoError(t, os.WriteFile(lockPath, nil, 0o644))
	released := make(chan error, 1)
	go func() {
		time.Sleep(30 * time.Millisecond)
		released <- os.Remove(lockPath)
	}()

	require.NoError(t, s.UnsetLocal(ctx, "core.bare"))
	require.NoError(t, s.SetLocal(ctx, "core.fscache", "true"))
	require.NoError(t, <-released)

	got, err := s.ReadAll(ctx, gitconfig.LocalOnly)
	require.NoError(t, err)
	require.True(t, got.Has("core.fscache", "true"))
	require.False(t, got.Present("core.bare"))
}

func TestReconcile_EmptyValueIsStable(t *testing.T) {
	t.Parallel()
	ctx := slogtest.Context(t)
	s, _ := newRepo(t)

	// An empty helper resets any inherited credential helpers.
	desired := []gitconfig.Setting{gitconfig.Set("credential.helper", "")}
	out, err := gitconfig.Reconcile(ctx, s, desired, true)
	require.NoError(t, err)
	require.Equal(t, 1, out.Writes())

	for range 2 {
		out, err = gitconfig.Reconcile(ctx, s, desired, true)
		require.NoError(t, err)
		require.Zero(t, out.Writes())
	}

	got, err := s.ReadAll(ctx, gitconfig.LocalOnly)
	require.NoError(t, err)
	require.Equal(t, []string{""}, got.Get("credential.helper"))
}

func TestReconcile_Idempotent(t *testing.T) {
	t.Parallel()
	ctx := slogtest.Context(t)
	s, _ := newRepo(t)

	required := []gitconfig.Setting{
		gitconfig.Set("core.fscache", "true"),
		gitconfig.Set("core.hookspath", "C:/Repos/A/.git/hooks"),
		gitconfig.Set("gc.auto", "0"),
		gitconfig.Set("index.version", "4"),
		gitconfig.Set("merge.renames", "false"),
	}
	out, err := gitconfig.Reconcile(ctx, s, required, true)
	require.NoError(t, err)
	require.Equal(t, 5, out.Writes())

	out, err = gitconfig.Reconcile(ctx, s, required, true)
	require.NoError(t, err)
	require.Zero(t, out.Writes())

	optional := []gitconfig.Setting{gitconfig.Set("status.aheadbehind", "false")}
	out, err = gitconfig.Reconcile(ctx, s, optional, false)
	require.NoError(t, err)
	require.Zero(t, out.Writes(), "globally set optional value must be kept")
}
