/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		goos      string
		name      string
		windows   bool
		fileMode  bool
		extension string
	}{
		{"windows", "Windows", true, false, ".exe"},
		{"darwin", "macOS", false, true, ".dmg"},
		{"linux", "Linux", false, true, ".tar.gz"},
	}
	for _, tt := range tests {
		p, err := New(tt.goos)
		if err != nil {
			t.Fatalf("New(%q): %v", tt.goos, err)
		}
		if got := p.Name(); got != tt.name {
			t.Errorf("%s: Name() = %q, want %q", tt.goos, got, tt.name)
		}
		if got := p.IsWindows(); got != tt.windows {
			t.Errorf("%s: IsWindows() = %v, want %v", tt.goos, got, tt.windows)
		}
		if got := p.SupportsFileMode(); got != tt.fileMode {
			t.Errorf("%s: SupportsFileMode() = %v, want %v", tt.goos, got, tt.fileMode)
		}
		if !p.SupportsUntrackedCache() {
			t.Errorf("%s: SupportsUntrackedCache() = false", tt.goos)
		}
		if got := p.InstallerExtension(); got != tt.extension {
			t.Errorf("%s: InstallerExtension() = %q, want %q", tt.goos, got, tt.extension)
		}
	}

	if _, err := New("plan9"); err == nil {
		t.Error("New(plan9) should fail")
	}
}

func TestCurrent(t *testing.T) {
	t.Parallel()
	if got, want := Current().IsWindows(), runtime.GOOS == "windows"; got != want {
		t.Errorf("Current().IsWindows() = %v, want %v", got, want)
	}
}

func TestLocateProgram(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a unix executable bit")
	}

	dir := t.TempDir()
	prog := filepath.Join(dir, "fake-watchman")
	if err := os.WriteFile(prog, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir)

	p := Linux{}
	if got := p.LocateProgram("fake-watchman"); got != prog {
		t.Errorf("LocateProgram = %q, want %q", got, prog)
	}
	if got := p.LocateProgram("definitely-not-installed"); got != "" {
		t.Errorf("LocateProgram(missing) = %q, want empty", got)
	}
}

func TestNewFileLock(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "maintenance.lock")
	l := Current().NewFileLock(path)
	if l.Path() != path {
		t.Errorf("Path() = %q, want %q", l.Path(), path)
	}
	ok, err := l.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock() = %v, %v", ok, err)
	}
	if err := l.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
}
