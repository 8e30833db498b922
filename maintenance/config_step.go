/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package maintenance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"chainguard.dev/gitmaint/gitconfig"
	"github.com/chainguard-dev/clog"
)

const (
	watchmanProgram    = "watchman"
	watchmanSampleHook = "fsmonitor-watchman.sample"
	watchmanQueryHook  = "query-watchman"

	// fsmonitorHookPath is relative to the working directory.
	fsmonitorHookPath = ".git/hooks/" + watchmanQueryHook
)

// ConfigStep keeps the enlistment's git configuration at the settings the
// client relies on.
type ConfigStep struct {
	mc          Context
	useProtocol *bool
}

var _ Step = (*ConfigStep)(nil)

// NewConfigStep returns a ConfigStep for mc.
func NewConfigStep(mc Context, opts ...ConfigOption) *ConfigStep {
	s := &ConfigStep{mc: mc}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ConfigStep) Area() string                  { return "ConfigStep" }
func (s *ConfigStep) ProgressMessage() string       { return "Setting recommended config settings" }
func (s *ConfigStep) RequiresObjectCacheLock() bool { return false }
func (s *ConfigStep) Context() Context              { return s.mc }

// UsesProtocol reports whether the protocol extension settings apply.
func (s *ConfigStep) UsesProtocol() bool {
	if s.useProtocol != nil {
		return *s.useProtocol
	}
	return s.mc.Enlistment != nil && s.mc.Enlistment.UsesGvfsProtocol
}

// RequiredSettings returns the settings the client needs to function.
func (s *ConfigStep) RequiredSettings() []gitconfig.Setting {
	p := s.mc.Platform
	settings := []gitconfig.Setting{
		gitconfig.Set("am.keepcr", "true"),
		gitconfig.Set("core.autocrlf", "false"),
		gitconfig.Set("checkout.optimizenewbranch", "true"),
		gitconfig.Set("core.fscache", "true"),
		gitconfig.Set("core.multiPackIndex", "true"),
		gitconfig.Set("core.preloadIndex", "true"),
		gitconfig.Set("core.safecrlf", "false"),
		gitconfig.Set("core.untrackedCache", strconv.FormatBool(p.SupportsUntrackedCache())),
		gitconfig.Set("core.filemode", strconv.FormatBool(p.SupportsFileMode())),
		gitconfig.Set("core.bare", "false"),
		gitconfig.Set("core.logallrefupdates", "true"),
		gitconfig.Set("core.hookspath", s.mc.Enlistment.HooksPathForConfig()),
		gitconfig.Set("credential.useHttpPath", "true"),
		gitconfig.Set("credential.validate", "false"),
		gitconfig.Set("gc.auto", "0"),
		gitconfig.Set("gui.gcwarning", "false"),
		gitconfig.Set("index.threads", "true"),
		gitconfig.Set("index.version", "4"),
		gitconfig.Set("merge.stat", "false"),
		gitconfig.Set("merge.renames", "false"),
		gitconfig.Set("pack.useBitmaps", "false"),
		gitconfig.Set("pack.useSparse", "true"),
		gitconfig.Set("receive.autogc", "false"),
		gitconfig.Set("reset.quiet", "true"),
		gitconfig.Set("feature.manyFiles", "false"),
		gitconfig.Set("feature.experimental", "false"),
		gitconfig.Set("fetch.writeCommitGraph", "false"),
	}

	if s.UsesProtocol() {
		settings = append(settings,
			gitconfig.Set("core.gvfs", RecommendedProtocolFlags().String()),
			gitconfig.Set("core.useGvfsHelper", "true"),
			gitconfig.Set("http.version", "HTTP/1.1"),
		)
	}

	if p.IsWindows() {
		settings = append(settings, gitconfig.Set("http.sslBackend", "schannel"))
	}
	return settings
}

// OptionalSettings returns settings that improve performance. They are
// only written when the key is not configured in any scope.
func (s *ConfigStep) OptionalSettings() []gitconfig.Setting {
	return []gitconfig.Setting{
		gitconfig.Set("status.aheadbehind", "false"),
	}
}

// Apply reconciles the repository configuration. It can be called outside
// the maintenance lifecycle, e.g. right after a clone.
//
// Required settings overwrite local values only on protocol enlistments;
// elsewhere a configured key is left alone. A required failure is
// returned. An optional failure is logged.
func (s *ConfigStep) Apply(ctx context.Context) error {
	log := clog.FromContext(ctx)
	if err := s.mc.validate(); err != nil {
		return err
	}

	if _, err := gitconfig.Reconcile(ctx, s.mc.Config, s.RequiredSettings(), s.UsesProtocol()); err != nil {
		return fmt.Errorf("failed to set some required settings: %w", err)
	}

	if _, err := gitconfig.Reconcile(ctx, s.mc.Config, s.OptionalSettings(), false); err != nil {
		log.Warnf("Failed to set some optional settings: %v", err)
	}
	return nil
}

// PerformMaintenance implements Step.
func (s *ConfigStep) PerformMaintenance(ctx context.Context) error {
	if err := s.Apply(ctx); err != nil {
		return err
	}
	s.ConfigureWatchman(ctx)
	return nil
}

// ConfigureWatchman enables git's fsmonitor hook when watchman is
// installed. Failures are logged and otherwise ignored.
func (s *ConfigStep) ConfigureWatchman(ctx context.Context) {
	log := clog.FromContext(ctx)

	if s.mc.Platform.LocateProgram(watchmanProgram) == "" {
		log.Warn("Watchman is not installed - skipping Watchman configuration.")
		return
	}

	hooks := s.mc.Enlistment.HooksDir()
	src := filepath.Join(hooks, watchmanSampleHook)
	dst := filepath.Join(hooks, watchmanQueryHook)
	if err := copyNoOverwrite(src, dst); err != nil {
		log.Errorf("Failed to configure Watchman integration: %v", err)
		return
	}

	if err := s.mc.Config.SetLocal(ctx, "core.fsmonitor", fsmonitorHookPath); err != nil {
		log.Errorf("Failed to configure Watchman integration: %v", err)
		return
	}
	log.Info("Watchman configured!")
}

// copyNoOverwrite copies src to dst unless dst already exists.
func copyNoOverwrite(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
