/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package gitconfigtest

import (
	"context"
	"maps"
	"slices"
	"sync"

	"chainguard.dev/gitmaint/gitconfig"
)

// Write is one recorded write.
type Write struct {
	Op    gitconfig.Op
	Key   string
	Value string
}

// Store is an in-memory gitconfig.Store with separate local and global
// layers. It is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	local  gitconfig.Values
	global gitconfig.Values
	writes []Write
	reads  []gitconfig.Scope

	// ReadErr, when set, is returned by ReadAll.
	ReadErr error
	// FailKeys maps keys to the error their writes return.
	FailKeys map[string]error
}

var _ gitconfig.Store = (*Store)(nil)

// New returns a Store with the given local settings.
func New(local map[string]string) *Store {
	s := &Store{
		local:    gitconfig.Values{},
		global:   gitconfig.Values{},
		FailKeys: map[string]error{},
	}
	for k, v := range local {
		s.local.Add(k, v)
	}
	return s
}

// AddLocal appends a local value, allowing multi-valued keys.
func (s *Store) AddLocal(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.local.Add(key, value)
}

// AddGlobal appends a global value.
func (s *Store) AddGlobal(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.global.Add(key, value)
}

// ReadAll implements gitconfig.Store.
func (s *Store) ReadAll(_ context.Context, scope gitconfig.Scope) (gitconfig.Values, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads = append(s.reads, scope)
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}

	out := gitconfig.Values{}
	if scope == gitconfig.AllScopes {
		for k, vs := range s.global {
			out[k] = append(out[k], vs...)
		}
	}
	for k, vs := range s.local {
		out[k] = append(out[k], vs...)
	}
	return out, nil
}

// SetLocal implements gitconfig.Store.
func (s *Store) SetLocal(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailKeys[key]; err != nil {
		return err
	}
	s.writes = append(s.writes, Write{Op: gitconfig.OpSet, Key: key, Value: value})
	s.local[gitconfig.CanonicalKey(key)] = []string{value}
	return nil
}

// UnsetLocal implements gitconfig.Store.
func (s *Store) UnsetLocal(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailKeys[key]; err != nil {
		return err
	}
	s.writes = append(s.writes, Write{Op: gitconfig.OpUnset, Key: key})
	delete(s.local, gitconfig.CanonicalKey(key))
	return nil
}

// Writes returns the recorded writes in order.
func (s *Store) Writes() []Write {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.writes)
}

// Reads returns the scopes of every ReadAll call in order.
func (s *Store) Reads() []gitconfig.Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.reads)
}

// ResetWrites forgets the recorded writes.
func (s *Store) ResetWrites() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = nil
}

// Local returns a copy of the local layer.
func (s *Store) Local() gitconfig.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(gitconfig.Values, len(s.local))
	for k, vs := range maps.All(s.local) {
		out[k] = slices.Clone(vs)
	}
	return out
}
