/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package gitversion

import (
	"strings"
)

// Features is the set of git capabilities implied by a version.
type Features uint32

const (
	// GvfsProtocol is set for builds that speak the GVFS protocol.
	GvfsProtocol Features = 1 << iota
	// MaintenanceBuiltin is set for builds that ship "git maintenance".
	MaintenanceBuiltin

	// None is the empty feature set.
	None Features = 0
)

const vfsPlatform = "vfs"

var featureNames = []struct {
	flag Features
	name string
}{
	{GvfsProtocol, "gvfs-protocol"},
	{MaintenanceBuiltin, "maintenance-builtin"},
}

// Features derives the feature set of v. Only VFS builds support the GVFS
// protocol, and only VFS builds newer than 2.28.0.vfs.0 ship the
// maintenance builtin.
func (v Version) Features() Features {
	flags := None
	if strings.EqualFold(v.Platform, vfsPlatform) {
		flags |= GvfsProtocol
	}
	if flags.Has(GvfsProtocol) && (v.Minor > 28 || (v.Minor == 28 && v.Revision > 0)) {
		flags |= MaintenanceBuiltin
	}
	return flags
}

// Has reports whether every flag in want is set.
func (f Features) Has(want Features) bool {
	return f&want == want
}

// String lists the set flags separated by commas, or "none".
func (f Features) String() string {
	var names []string
	for _, fn := range featureNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}
