/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package gitversion parses and compares git version strings, including
// the vendor-extended forms shipped by Git for Windows and the VFS-enabled
// builds of git:
//
//	2.25.0
//	2.25.0-rc1
//	2.20.0.vfs.1.1
//
// Versions are ordered by (Major, Minor, Build, Revision, MinorRevision).
// The platform component only takes part in equality, and the release
// candidate number takes part in neither: "1.2.3" and "1.2.3-rc5" compare
// equal.
//
// Features derives the capabilities that gate protocol settings from a
// parsed version. Malformed input always fails with a *ParseError; no
// component is ever guessed.
package gitversion
