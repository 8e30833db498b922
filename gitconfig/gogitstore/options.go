/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package gogitstore

import "chainguard.dev/gitmaint/retry"

// Option configures a Store.
type Option func(*Store)

// WithGlobalPaths sets the system and global config files consulted by
// AllScopes reads, lowest precedence first. Missing files are skipped.
func WithGlobalPaths(paths ...string) Option {
	return func(s *Store) {
		s.globalPaths = paths
	}
}

// WithLockRetry sets how writes back off while "<config>.lock" is held by
// another writer. The default is retry.DefaultConfig; a zero Config fails
// on the first conflict.
func WithLockRetry(cfg retry.Config) Option {
	return func(s *Store) {
		s.lockRetry = cfg
	}
}
