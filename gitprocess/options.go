/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package gitprocess

// Option configures a Process.
type Option func(*Process)

// WithGitBinary overrides the git executable, which defaults to "git" on
// the search path.
func WithGitBinary(path string) Option {
	return func(p *Process) {
		p.gitBin = path
	}
}

// WithEnv appends KEY=VALUE entries to the environment of every command.
func WithEnv(env ...string) Option {
	return func(p *Process) {
		p.env = append(p.env, env...)
	}
}
