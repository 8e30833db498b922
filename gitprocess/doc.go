/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package gitprocess runs the git CLI against one repository. Every
// command targets the repository through "git -C <dir>", and the exit code
// is the only failure signal: Run never returns an error, it reports
// spawn failures as exit code 127 (or 1) with the reason on stderr.
//
// Process also implements gitconfig.Store on top of "git config", so the
// reconciler can read and write a repository's configuration through the
// same binary users run.
package gitprocess
