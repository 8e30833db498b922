/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package gitconfig

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// Scope selects which configuration files a read covers.
type Scope int

const (
	// LocalOnly reads only the repository's own configuration.
	LocalOnly Scope = iota
	// AllScopes reads system, global and local configuration.
	AllScopes
)

func (s Scope) String() string {
	switch s {
	case LocalOnly:
		return "local"
	case AllScopes:
		return "all"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// Store reads and writes git configuration for a single repository.
type Store interface {
	// ReadAll enumerates every setting visible in scope.
	ReadAll(ctx context.Context, scope Scope) (Values, error)
	// SetLocal replaces all local values of key with value.
	SetLocal(ctx context.Context, key, value string) error
	// UnsetLocal removes every local value of key.
	UnsetLocal(ctx context.Context, key string) error
}

// Values maps canonical keys to their observed values in file order. A key
// present in more than one scope or set more than once has several values.
type Values map[string][]string

// Add appends value to key.
func (v Values) Add(key, value string) {
	k := CanonicalKey(key)
	v[k] = append(v[k], value)
}

// Get returns all values of key.
func (v Values) Get(key string) []string {
	return v[CanonicalKey(key)]
}

// Present reports whether key has at least one value.
func (v Values) Present(key string) bool {
	_, ok := v[CanonicalKey(key)]
	return ok
}

// Has reports whether value is one of key's observed values.
func (v Values) Has(key, value string) bool {
	return slices.Contains(v[CanonicalKey(key)], value)
}

// CanonicalKey normalizes a "section[.subsection].name" key the way git
// compares them: section and variable names are case-insensitive, the
// subsection is case-sensitive.
func CanonicalKey(key string) string {
	first := strings.IndexByte(key, '.')
	last := strings.LastIndexByte(key, '.')
	if first < 0 {
		return strings.ToLower(key)
	}
	if first == last {
		return strings.ToLower(key)
	}
	return strings.ToLower(key[:first]) + key[first:last] + strings.ToLower(key[last:])
}

// SplitKey splits a key into section, subsection and variable name.
func SplitKey(key string) (section, subsection, name string, err error) {
	first := strings.IndexByte(key, '.')
	last := strings.LastIndexByte(key, '.')
	if first <= 0 || last == len(key)-1 {
		return "", "", "", fmt.Errorf("invalid config key %q", key)
	}
	section = key[:first]
	name = key[last+1:]
	if first != last {
		subsection = key[first+1 : last]
	}
	return section, subsection, name, nil
}
