/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package enlistment

import (
	"path/filepath"
)

const (
	workingDirName      = "src"
	dotGitName          = ".git"
	hooksName           = "hooks"
	maintenanceLockName = "maintenance.lock"
)

// Enlistment is one local checkout managed by the client.
type Enlistment struct {
	// Root is the enlistment root directory.
	Root string
	// WorkingDirectoryRoot is the working tree, Root/src.
	WorkingDirectoryRoot string
	// DotGitRoot is the git directory inside the working tree.
	DotGitRoot string
	// ObjectCacheRoot is the shared object cache. It defaults to the git
	// objects directory when the enlistment has no shared cache.
	ObjectCacheRoot string
	// UsesGvfsProtocol reports whether the enlistment's remote speaks the
	// virtualization protocol.
	UsesGvfsProtocol bool
}

// New returns the Enlistment rooted at root.
func New(root, objectCache string, usesGvfs bool) *Enlistment {
	root = filepath.Clean(root)
	wd := filepath.Join(root, workingDirName)
	dotGit := filepath.Join(wd, dotGitName)
	if objectCache == "" {
		objectCache = filepath.Join(dotGit, "objects")
	}
	return &Enlistment{
		Root:                 root,
		WorkingDirectoryRoot: wd,
		DotGitRoot:           dotGit,
		ObjectCacheRoot:      filepath.Clean(objectCache),
		UsesGvfsProtocol:     usesGvfs,
	}
}

// HooksDir returns the hooks directory of the git directory.
func (e *Enlistment) HooksDir() string {
	return filepath.Join(e.DotGitRoot, hooksName)
}

// HooksPathForConfig returns HooksDir in the form git expects in
// core.hookspath, with forward slashes on every platform.
func (e *Enlistment) HooksPathForConfig() string {
	return filepath.ToSlash(e.HooksDir())
}

// MaintenanceLockPath returns the lock file guarding the object cache.
func (e *Enlistment) MaintenanceLockPath() string {
	return filepath.Join(e.ObjectCacheRoot, maintenanceLockName)
}

func (e *Enlistment) String() string {
	return e.Root
}
