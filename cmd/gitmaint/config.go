/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"chainguard.dev/gitmaint/enlistment"
	"chainguard.dev/gitmaint/gitconfig"
	"chainguard.dev/gitmaint/gitconfig/gogitstore"
	"chainguard.dev/gitmaint/gitprocess"
	"github.com/sethvargo/go-envconfig"
)

const (
	backendGit   = "git"
	backendGoGit = "go-git"
)

type config struct {
	Registry      string        `env:"GITMAINT_REGISTRY"`
	LockTimeout   time.Duration `env:"GITMAINT_LOCK_TIMEOUT,default=0s"`
	ConfigBackend string        `env:"GITMAINT_CONFIG_BACKEND,default=git"`
	GitBinary     string        `env:"GITMAINT_GIT,default=git"`
	Parallelism   int           `env:"GITMAINT_PARALLELISM,default=4"`
	Interval      time.Duration `env:"GITMAINT_INTERVAL,default=1h"`
	MetricsPort   int           `env:"METRICS_PORT,default=0"`
}

func loadConfig(ctx context.Context, lookuper envconfig.Lookuper) (*config, error) {
	var cfg config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("processing config: %w", err)
	}

	switch cfg.ConfigBackend {
	case backendGit, backendGoGit:
	default:
		return nil, fmt.Errorf("GITMAINT_CONFIG_BACKEND must be %q or %q, got %q", backendGit, backendGoGit, cfg.ConfigBackend)
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("GITMAINT_INTERVAL must be positive, got %v", cfg.Interval)
	}

	if cfg.Registry == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("locating registry: %w", err)
		}
		cfg.Registry = filepath.Join(dir, "gitmaint", "registry.yaml")
	}
	return &cfg, nil
}

// store returns the configuration store for e on the selected backend.
func (c *config) store(e *enlistment.Enlistment) gitconfig.Store {
	if c.ConfigBackend == backendGoGit {
		return gogitstore.ForRepository(e.DotGitRoot)
	}
	return gitprocess.New(e.WorkingDirectoryRoot, gitprocess.WithGitBinary(c.GitBinary))
}
