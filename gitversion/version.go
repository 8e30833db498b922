/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package gitversion

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

const (
	commandOutputPrefix = "git version "
	installerPrefix     = "Git-"
	installerSuffix     = "-64-bit"
	releaseCandidateSep = "-rc"
)

// Version is an immutable parsed git version.
type Version struct {
	Major int
	Minor int
	Build int
	// ReleaseCandidate is nil for final releases.
	ReleaseCandidate *int
	// Platform is the vendor component, e.g. "windows" or "vfs". Empty for
	// upstream releases.
	Platform      string
	Revision      int
	MinorRevision int
}

// ParseError reports a version string that could not be parsed.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing git version %q: %s", e.Input, e.Reason)
}

// Parse parses a version of the form "M.N.B", "M.N.B-rcR" or
// "M.N.B[-rcR].Platform.Revision.MinorRevision". The trailing platform
// components are optional and a non-numeric revision defaults to 0.
func Parse(raw string) (Version, error) {
	if strings.TrimSpace(raw) == "" {
		return Version{}, &ParseError{Input: raw, Reason: "empty version"}
	}

	parts := strings.Split(raw, ".")
	if len(parts) < 3 {
		return Version{}, &ParseError{Input: raw, Reason: fmt.Sprintf("expected at least 3 components, got %d", len(parts))}
	}

	var v Version
	var ok bool
	if v.Major, ok = parseComponent(parts[0]); !ok {
		return Version{}, &ParseError{Input: raw, Reason: fmt.Sprintf("invalid major version %q", parts[0])}
	}
	if v.Minor, ok = parseComponent(parts[1]); !ok {
		return Version{}, &ParseError{Input: raw, Reason: fmt.Sprintf("invalid minor version %q", parts[1])}
	}

	build, rc, hasRC := strings.Cut(parts[2], releaseCandidateSep)
	if hasRC {
		if n, ok := parseComponent(rc); ok {
			v.ReleaseCandidate = &n
		}
	}
	if v.Build, ok = parseComponent(build); !ok {
		return Version{}, &ParseError{Input: raw, Reason: fmt.Sprintf("invalid build number %q", parts[2])}
	}

	if len(parts) >= 4 {
		v.Platform = parts[3]
	}
	if len(parts) >= 5 {
		v.Revision, _ = parseComponent(parts[4])
	}
	if len(parts) >= 6 {
		v.MinorRevision, _ = parseComponent(parts[5])
	}
	return v, nil
}

// ParseCommandOutput parses the output of "git version", e.g.
// "git version 2.20.0.vfs.1.1". The prefix is matched case-sensitively and
// is optional.
func ParseCommandOutput(output string) (Version, error) {
	output = strings.TrimSpace(output)
	return Parse(strings.TrimPrefix(output, commandOutputPrefix))
}

// ParseInstallerName parses an installer file name of the form
// "Git-<version>-64-bit<ext>", e.g. "Git-2.20.0.vfs.1.1-64-bit.exe". Prefix
// and suffix are matched case-insensitively.
func ParseInstallerName(name, installerExtension string) (Version, error) {
	suffix := installerSuffix + installerExtension
	if len(name) < len(installerPrefix)+len(suffix) ||
		!strings.EqualFold(name[:len(installerPrefix)], installerPrefix) {
		return Version{}, &ParseError{Input: name, Reason: "installer name must start with " + installerPrefix}
	}
	if !strings.EqualFold(name[len(name)-len(suffix):], suffix) {
		return Version{}, &ParseError{Input: name, Reason: "installer name must end with " + suffix}
	}
	return Parse(name[len(installerPrefix) : len(name)-len(suffix)])
}

// InstallerName is the inverse of ParseInstallerName.
func InstallerName(v Version, installerExtension string) string {
	return installerPrefix + v.String() + installerSuffix + installerExtension
}

func parseComponent(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Compare orders a and b by (Major, Minor, Build, Revision, MinorRevision)
// and returns -1, 0 or +1. Platform and ReleaseCandidate are ignored.
func Compare(a, b Version) int {
	if c := cmp.Compare(a.Major, b.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Minor, b.Minor); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Build, b.Build); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Revision, b.Revision); c != 0 {
		return c
	}
	return cmp.Compare(a.MinorRevision, b.MinorRevision)
}

// Less reports whether v orders before other.
func (v Version) Less(other Version) bool {
	return Compare(v, other) < 0
}

// Equal reports whether v and other are the same build for upgrade
// purposes: identical platform strings and equal version numbers.
func (v Version) Equal(other Version) bool {
	return v.Platform == other.Platform && Compare(v, other) == 0
}

// String renders the canonical form "M.N.B[-rcR][.Platform.Rev.MinorRev]".
func (v Version) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d.%d.%d", v.Major, v.Minor, v.Build)
	if v.ReleaseCandidate != nil {
		fmt.Fprintf(&sb, "%s%d", releaseCandidateSep, *v.ReleaseCandidate)
	}
	if strings.TrimSpace(v.Platform) != "" {
		fmt.Fprintf(&sb, ".%s.%d.%d", v.Platform, v.Revision, v.MinorRevision)
	}
	return sb.String()
}
