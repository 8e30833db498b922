/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package gitconfig reconciles a desired set of git configuration
// settings against the configuration a repository currently has.
//
// The observed state is read once through a Store, compared with the
// desired Settings, and only the differences are written back to the
// repository's local configuration:
//
//   - A setting with a value is satisfied when the key is present and, for
//     required batches, one of its observed values matches. Unsatisfied
//     settings produce exactly one local set.
//   - A setting marked Delete produces exactly one local unset when the key
//     is present in the local configuration, and nothing otherwise. Values
//     inherited from global or system configuration cannot be removed
//     locally and are ignored.
//
// Optional batches are satisfied by the key's presence alone, so a value a
// user chose is never overwritten. Required batches only consult the local
// scope, so settings inherited from global or system configuration cannot
// satisfy them.
//
// There is no transaction spanning the read and the writes. Another
// process may change the configuration in between; reconciliation is
// idempotent, so repeated runs converge.
package gitconfig
