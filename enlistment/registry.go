/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package enlistment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is the persisted form of an Enlistment.
type Entry struct {
	Root         string `yaml:"root"`
	ObjectCache  string `yaml:"objectCache,omitempty"`
	GvfsProtocol bool   `yaml:"gvfsProtocol,omitempty"`
}

// Registry lists the enlistments registered on this host.
type Registry struct {
	Entries []Entry `yaml:"enlistments"`
}

// LoadRegistry reads the registry at path. A missing file is an empty
// registry.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Registry{}, nil
		}
		return nil, fmt.Errorf("reading registry: %w", err)
	}

	var r Registry
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing registry %s: %w", path, err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("registry %s: %w", path, err)
	}
	return &r, nil
}

// Validate checks that every entry has a root and that no root is listed
// twice.
func (r *Registry) Validate() error {
	seen := make(map[string]struct{}, len(r.Entries))
	for i, e := range r.Entries {
		if strings.TrimSpace(e.Root) == "" {
			return fmt.Errorf("entry %d: root is required", i)
		}
		root := filepath.Clean(e.Root)
		if _, ok := seen[root]; ok {
			return fmt.Errorf("entry %d: duplicate root %s", i, root)
		}
		seen[root] = struct{}{}
	}
	return nil
}

// Save writes the registry to path, replacing any existing file.
func (r *Registry) Save(path string) error {
	if err := r.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating registry directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".registry-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing registry: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// Add registers e, replacing an existing entry with the same root.
func (r *Registry) Add(e *Enlistment) {
	entry := Entry{Root: e.Root, GvfsProtocol: e.UsesGvfsProtocol}
	if e.ObjectCacheRoot != New(e.Root, "", false).ObjectCacheRoot {
		entry.ObjectCache = e.ObjectCacheRoot
	}
	if i := r.index(e.Root); i >= 0 {
		r.Entries[i] = entry
		return
	}
	r.Entries = append(r.Entries, entry)
}

// Remove unregisters root and reports whether it was registered.
func (r *Registry) Remove(root string) bool {
	i := r.index(root)
	if i < 0 {
		return false
	}
	r.Entries = slices.Delete(r.Entries, i, i+1)
	return true
}

// Enlistments returns the registered enlistments in registry order.
func (r *Registry) Enlistments() []*Enlistment {
	out := make([]*Enlistment, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, New(e.Root, e.ObjectCache, e.GvfsProtocol))
	}
	return out
}

func (r *Registry) index(root string) int {
	root = filepath.Clean(root)
	return slices.IndexFunc(r.Entries, func(e Entry) bool {
		return filepath.Clean(e.Root) == root
	})
}
