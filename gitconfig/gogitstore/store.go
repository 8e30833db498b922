/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package gogitstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"chainguard.dev/gitmaint/gitconfig"
	"chainguard.dev/gitmaint/retry"
	"github.com/chainguard-dev/clog"
	gitcfg "github.com/go-git/go-git/v5/config"
	format "github.com/go-git/go-git/v5/plumbing/format/config"
)

const lockSuffix = ".lock"

// ErrConfigLocked is returned when another writer holds the config lock.
var ErrConfigLocked = errors.New("config file is locked by another writer")

// Store reads the configuration files of one repository.
type Store struct {
	localPath   string
	globalPaths []string
	lockRetry   retry.Config

	mu sync.Mutex
}

var _ gitconfig.Store = (*Store)(nil)

// New returns a Store writing to the config file at localPath.
func New(localPath string, opts ...Option) *Store {
	s := &Store{localPath: localPath, lockRetry: retry.DefaultConfig()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ForRepository returns a Store for the repository whose git directory is
// dotGit, reading system and global configuration from their default
// locations unless overridden.
func ForRepository(dotGit string, opts ...Option) *Store {
	return New(filepath.Join(dotGit, "config"), append([]Option{WithGlobalPaths(DefaultGlobalPaths()...)}, opts...)...)
}

// DefaultGlobalPaths returns the system and global config files in
// increasing precedence, as located by go-git.
func DefaultGlobalPaths() []string {
	var paths []string
	for _, scope := range []gitcfg.Scope{gitcfg.SystemScope, gitcfg.GlobalScope} {
		p, err := gitcfg.Paths(scope)
		if err != nil {
			continue
		}
		paths = append(paths, p...)
	}
	return paths
}

// LocalPath returns the path of the repository config file.
func (s *Store) LocalPath() string {
	return s.localPath
}

// ReadAll implements gitconfig.Store.
func (s *Store) ReadAll(ctx context.Context, scope gitconfig.Scope) (gitconfig.Values, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := gitconfig.Values{}
	if scope == gitconfig.AllScopes {
		for _, p := range s.globalPaths {
			cfg, err := load(p, true)
			if err != nil {
				clog.FromContext(ctx).Warnf("Skipping unreadable config %s: %v", p, err)
				continue
			}
			collect(values, cfg)
		}
	}

	cfg, err := load(s.localPath, false)
	if err != nil {
		return nil, err
	}
	collect(values, cfg)
	return values, nil
}

// SetLocal implements gitconfig.Store.
func (s *Store) SetLocal(ctx context.Context, key, value string) error {
	section, subsection, name, err := gitconfig.SplitKey(key)
	if err != nil {
		return err
	}
	return s.update(ctx, func(cfg *format.Config) {
		sec := cfg.Section(section)
		if subsection == "" {
			sec.SetOption(name, value)
			return
		}
		sec.Subsection(subsection).SetOption(name, value)
	})
}

// UnsetLocal implements gitconfig.Store. Empty sections left behind are
// removed.
func (s *Store) UnsetLocal(ctx context.Context, key string) error {
	section, subsection, name, err := gitconfig.SplitKey(key)
	if err != nil {
		return err
	}
	return s.update(ctx, func(cfg *format.Config) {
		if !cfg.HasSection(section) {
			return
		}
		sec := cfg.Section(section)
		if subsection == "" {
			sec.RemoveOption(name)
		} else if sec.HasSubsection(subsection) {
			sub := sec.Subsection(subsection)
			sub.RemoveOption(name)
			if len(sub.Options) == 0 {
				sec.RemoveSubsection(subsection)
			}
		}
		if len(sec.Options) == 0 && len(sec.Subsections) == 0 {
			cfg.RemoveSection(section)
		}
	})
}

// update retries while another writer holds the lock, then applies mutate
// to a fresh read of the local config.
func (s *Store) update(ctx context.Context, mutate func(*format.Config)) error {
	_, err := retry.Do(ctx, s.lockRetry, "write "+s.localPath, isLocked, func() (struct{}, error) {
		return struct{}{}, s.write(mutate)
	})
	return err
}

func isLocked(err error) bool {
	return errors.Is(err, ErrConfigLocked)
}

func (s *Store) write(mutate func(*format.Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lockPath := s.localPath + lockSuffix
	lock, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s: %w", lockPath, ErrConfigLocked)
		}
		return fmt.Errorf("creating %s: %w", lockPath, err)
	}
	committed := false
	defer func() {
		if !committed {
			lock.Close()
			os.Remove(lockPath)
		}
	}()

	cfg, err := load(s.localPath, false)
	if err != nil {
		return err
	}
	mutate(cfg)

	if err := format.NewEncoder(lock).Encode(cfg); err != nil {
		return fmt.Errorf("encoding %s: %w", s.localPath, err)
	}
	if err := lock.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", lockPath, err)
	}
	if err := os.Rename(lockPath, s.localPath); err != nil {
		os.Remove(lockPath)
		committed = true
		return fmt.Errorf("replacing %s: %w", s.localPath, err)
	}
	committed = true
	return nil
}

// load decodes the config file at path. A missing file is an empty
// configuration when missingOK is set.
func load(path string, missingOK bool) (*format.Config, error) {
	cfg := format.New()
	f, err := os.Open(path)
	if err != nil {
		if missingOK && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if err := format.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return cfg, nil
}

func collect(values gitconfig.Values, cfg *format.Config) {
	for _, sec := range cfg.Sections {
		for _, opt := range sec.Options {
			values.Add(sec.Name+"."+opt.Key, opt.Value)
		}
		for _, sub := range sec.Subsections {
			for _, opt := range sub.Options {
				values.Add(sec.Name+"."+sub.Name+"."+opt.Key, opt.Value)
			}
		}
	}
}
