/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package maintenance

import "strconv"

// ProtocolFlags are the behaviors of a protocol-aware git controlled by
// the core.gvfs setting.
type ProtocolFlags struct {
	// SkipShaOnIndex skips computing the checksum when writing the index.
	SkipShaOnIndex bool
	// BlockCommands blocks commands that are unsafe in a virtualized
	// enlistment.
	BlockCommands bool
	// MissingOk lets write-tree succeed when referenced objects are not
	// present locally.
	MissingOk bool
	// NoDeleteOutsideSparseCheckout keeps skip-worktree files in the
	// working directory when they leave the index.
	NoDeleteOutsideSparseCheckout bool
	// FetchSkipReachabilityAndUploadPack makes fetch skip reachability
	// checks and the object pack, since objects arrive on demand.
	FetchSkipReachabilityAndUploadPack bool
	// BlockFiltersAndEolConversions disables smudge, clean and line ending
	// filters, which would change the size of virtualized files.
	BlockFiltersAndEolConversions bool
	// PrefetchDuringFetch prefetches commits and trees through the
	// protocol helper during fetch.
	PrefetchDuringFetch bool
}

// Bit positions in the core.gvfs value. Bit 5 is retired.
const (
	flagSkipShaOnIndex                     = 1 << 0
	flagBlockCommands                      = 1 << 1
	flagMissingOk                          = 1 << 2
	flagNoDeleteOutsideSparseCheckout      = 1 << 3
	flagFetchSkipReachabilityAndUploadPack = 1 << 4
	flagBlockFiltersAndEolConversions      = 1 << 6
	flagPrefetchDuringFetch                = 1 << 7
)

// RecommendedProtocolFlags returns the flags maintained on protocol
// enlistments.
func RecommendedProtocolFlags() ProtocolFlags {
	return ProtocolFlags{
		BlockCommands:                      true,
		MissingOk:                          true,
		FetchSkipReachabilityAndUploadPack: true,
		PrefetchDuringFetch:                true,
	}
}

type namedFlag struct {
	name string
	set  bool
	bit  int
}

func (f ProtocolFlags) flags() []namedFlag {
	return []namedFlag{
		{"SkipShaOnIndex", f.SkipShaOnIndex, flagSkipShaOnIndex},
		{"BlockCommands", f.BlockCommands, flagBlockCommands},
		{"MissingOk", f.MissingOk, flagMissingOk},
		{"NoDeleteOutsideSparseCheckout", f.NoDeleteOutsideSparseCheckout, flagNoDeleteOutsideSparseCheckout},
		{"FetchSkipReachabilityAndUploadPack", f.FetchSkipReachabilityAndUploadPack, flagFetchSkipReachabilityAndUploadPack},
		{"BlockFiltersAndEolConversions", f.BlockFiltersAndEolConversions, flagBlockFiltersAndEolConversions},
		{"PrefetchDuringFetch", f.PrefetchDuringFetch, flagPrefetchDuringFetch},
	}
}

// Encode returns the integer value git expects in core.gvfs.
func (f ProtocolFlags) Encode() int {
	var v int
	for _, b := range f.flags() {
		if b.set {
			v |= b.bit
		}
	}
	return v
}

// Enabled names the set flags in bit order.
func (f ProtocolFlags) Enabled() []string {
	var names []string
	for _, b := range f.flags() {
		if b.set {
			names = append(names, b.name)
		}
	}
	return names
}

// DecodeProtocolFlags is the inverse of Encode. Unknown bits are ignored.
func DecodeProtocolFlags(v int) ProtocolFlags {
	return ProtocolFlags{
		SkipShaOnIndex:                     v&flagSkipShaOnIndex != 0,
		BlockCommands:                      v&flagBlockCommands != 0,
		MissingOk:                          v&flagMissingOk != 0,
		NoDeleteOutsideSparseCheckout:      v&flagNoDeleteOutsideSparseCheckout != 0,
		FetchSkipReachabilityAndUploadPack: v&flagFetchSkipReachabilityAndUploadPack != 0,
		BlockFiltersAndEolConversions:      v&flagBlockFiltersAndEolConversions != 0,
		PrefetchDuringFetch:                v&flagPrefetchDuringFetch != 0,
	}
}

func (f ProtocolFlags) String() string {
	return strconv.Itoa(f.Encode())
}
