/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package platform

import (
	"fmt"
	"os/exec"
	"runtime"

	"chainguard.dev/gitmaint/filelock"
)

// Platform answers the capability questions the maintenance steps ask
// about the host.
type Platform interface {
	// Name is a human readable platform name.
	Name() string
	IsWindows() bool
	// SupportsUntrackedCache reports whether git's untracked cache is
	// reliable on the host file system.
	SupportsUntrackedCache() bool
	// SupportsFileMode reports whether the file system tracks the
	// executable bit.
	SupportsFileMode() bool
	// InstallerExtension is the file extension of git installers for the
	// platform, e.g. ".exe".
	InstallerExtension() string
	// LocateProgram returns the full path of an executable found on the
	// search path, or "" when it is not installed.
	LocateProgram(name string) string
	// NewFileLock returns the native lock for path.
	NewFileLock(path string) filelock.Locker
}

// Current returns the Platform for the running operating system.
func Current() Platform {
	p, err := New(runtime.GOOS)
	if err != nil {
		// Any other unix is treated like Linux.
		return Linux{}
	}
	return p
}

// New returns the Platform for a GOOS value.
func New(goos string) (Platform, error) {
	switch goos {
	case "windows":
		return Windows{}, nil
	case "darwin":
		return Mac{}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return Linux{}, nil
	default:
		return nil, fmt.Errorf("unsupported platform %q", goos)
	}
}

type native struct{}

func (native) LocateProgram(name string) string {
	path, err := exec.LookPath(name)
	if err != nil {
		return ""
	}
	return path
}

func (native) NewFileLock(path string) filelock.Locker {
	return filelock.New(path)
}

// Windows is the Windows platform.
type Windows struct{ native }

func (Windows) Name() string                 { return "Windows" }
func (Windows) IsWindows() bool              { return true }
func (Windows) SupportsUntrackedCache() bool { return true }
func (Windows) SupportsFileMode() bool       { return false }
func (Windows) InstallerExtension() string   { return ".exe" }

// Mac is the macOS platform.
type Mac struct{ native }

func (Mac) Name() string                 { return "macOS" }
func (Mac) IsWindows() bool              { return false }
func (Mac) SupportsUntrackedCache() bool { return true }
func (Mac) SupportsFileMode() bool       { return true }
func (Mac) InstallerExtension() string   { return ".dmg" }

// Linux covers Linux and the BSDs.
type Linux struct{ native }

func (Linux) Name() string                 { return "Linux" }
func (Linux) IsWindows() bool              { return false }
func (Linux) SupportsUntrackedCache() bool { return true }
func (Linux) SupportsFileMode() bool       { return true }
func (Linux) InstallerExtension() string   { return ".tar.gz" }
