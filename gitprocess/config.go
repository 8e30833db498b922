/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package gitprocess

import (
	"context"
	"strings"

	"chainguard.dev/gitmaint/gitconfig"
)

// git config exits with 5 when asked to unset a key that does not exist.
const exitKeyNotFound = 5

var _ gitconfig.Store = (*Process)(nil)

// ReadAll implements gitconfig.Store using "git config --list --null".
func (p *Process) ReadAll(ctx context.Context, scope gitconfig.Scope) (gitconfig.Values, error) {
	args := []string{"config", "--list", "--null"}
	if scope == gitconfig.LocalOnly {
		args = append(args, "--local")
	}
	res := p.Run(ctx, args...)
	if err := res.Err(args...); err != nil {
		return nil, err
	}
	return ParseConfigList(res.Stdout), nil
}

// SetLocal implements gitconfig.Store.
func (p *Process) SetLocal(ctx context.Context, key, value string) error {
	args := []string{"config", "--local", "--replace-all", key, value}
	return p.Run(ctx, args...).Err(args...)
}

// UnsetLocal implements gitconfig.Store. Unsetting a key that is not in
// the local configuration succeeds.
func (p *Process) UnsetLocal(ctx context.Context, key string) error {
	args := []string{"config", "--local", "--unset-all", key}
	res := p.Run(ctx, args...)
	if res.ExitCode == exitKeyNotFound {
		return nil
	}
	return res.Err(args...)
}

// ParseConfigList parses the output of "git config --list --null". Each
// entry is "key\nvalue" terminated by NUL; keys without a value (implicit
// booleans) have no newline.
func ParseConfigList(out string) gitconfig.Values {
	values := gitconfig.Values{}
	for entry := range strings.SplitSeq(out, "\x00") {
		if entry == "" {
			continue
		}
		key, value, ok := strings.Cut(entry, "\n")
		if !ok {
			value = "true"
		}
		values.Add(key, value)
	}
	return values
}
