/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package gogitstore implements gitconfig.Store in process, reading and
// writing git configuration files with go-git's config format package
// instead of spawning git.
//
// Writes follow git's own protocol: the new file is written to
// "<config>.lock", created exclusively, and renamed over the original. A
// concurrent git process holding the lock makes the write back off and
// retry (see WithLockRetry), failing with ErrConfigLocked if the lock is
// never released.
//
// The store has limits git itself does not:
//
//   - Every write re-encodes the whole local file, so comments and the
//     original formatting are lost.
//   - include.path and includeIf are not followed. Values git sees through an
//     include neither satisfy required settings nor appear in reads.
//   - A key written without "= value" reads as "", the same as an explicit
//     empty value, rather than git's implicit "true".
package gogitstore
