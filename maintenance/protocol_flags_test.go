/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package maintenance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProtocolFlags_Encode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		flags ProtocolFlags
		want  int
	}{{
		name: "none",
		want: 0,
	}, {
		name:  "recommended",
		flags: RecommendedProtocolFlags(),
		want:  150,
	}, {
		name:  "skip sha",
		flags: ProtocolFlags{SkipShaOnIndex: true},
		want:  1,
	}, {
		name:  "filters skip the retired bit",
		flags: ProtocolFlags{BlockFiltersAndEolConversions: true},
		want:  64,
	}, {
		name: "all",
		flags: ProtocolFlags{
			SkipShaOnIndex:                     true,
			BlockCommands:                      true,
			MissingOk:                          true,
			NoDeleteOutsideSparseCheckout:      true,
			FetchSkipReachabilityAndUploadPack: true,
			BlockFiltersAndEolConversions:      true,
			PrefetchDuringFetch:                true,
		},
		want: 223,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, tt.flags.Encode())
			require.Equal(t, tt.flags, DecodeProtocolFlags(tt.want))
		})
	}
}

func TestDecodeProtocolFlags_IgnoresUnknownBits(t *testing.T) {
	t.Parallel()

	require.Equal(t, ProtocolFlags{MissingOk: true}, DecodeProtocolFlags(4|32|256))
	require.Equal(t, "150", RecommendedProtocolFlags().String())
}

func TestProtocolFlags_Enabled(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"BlockCommands", "MissingOk", "FetchSkipReachabilityAndUploadPack", "PrefetchDuringFetch"},
		RecommendedProtocolFlags().Enabled())
	require.Empty(t, ProtocolFlags{}.Enabled())
}
