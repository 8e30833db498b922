/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"chainguard.dev/gitmaint/enlistment"
	"chainguard.dev/gitmaint/gitconfig"
	"chainguard.dev/gitmaint/gitprocess"
	"chainguard.dev/gitmaint/gitversion"
	"chainguard.dev/gitmaint/maintenance"
	"chainguard.dev/gitmaint/maintenance/report"
	"chainguard.dev/gitmaint/platform"
	"github.com/chainguard-dev/clog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
)

// app holds what every command shares once the environment is loaded.
type app struct {
	lookuper envconfig.Lookuper
	platform platform.Platform
	cfg      *config
}

func newRootCommand() *cobra.Command {
	return newRootCommandWith(envconfig.OsLookuper(), platform.Current())
}

func newRootCommandWith(lookuper envconfig.Lookuper, p platform.Platform) *cobra.Command {
	a := &app{lookuper: lookuper, platform: p}

	root := &cobra.Command{
		Use:           "gitmaint",
		Short:         "Maintain the git configuration of virtualized enlistments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Context(), a.lookuper)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	root.AddCommand(
		a.configCommand(),
		a.serveCommand(),
		a.registerCommand(),
		a.unregisterCommand(),
		a.listCommand(),
		a.versionCommand(),
	)
	return root
}

func (a *app) runner() *maintenance.Runner {
	return maintenance.NewRunner(maintenance.WithLockTimeout(a.cfg.LockTimeout))
}

func protocolOptions(protocol string) ([]maintenance.ConfigOption, error) {
	switch protocol {
	case "auto":
		return nil, nil
	case "on":
		return []maintenance.ConfigOption{maintenance.WithProtocol(true)}, nil
	case "off":
		return []maintenance.ConfigOption{maintenance.WithProtocol(false)}, nil
	default:
		return nil, fmt.Errorf("--protocol must be auto, on or off, got %q", protocol)
	}
}

func (a *app) factory(opts []maintenance.ConfigOption) maintenance.StepFactory {
	return func(e *enlistment.Enlistment) (maintenance.Step, error) {
		return maintenance.NewConfigStep(maintenance.Context{
			Enlistment: e,
			Platform:   a.platform,
			Config:     a.cfg.store(e),
		}, opts...), nil
	}
}

// enlistments resolves roots against the registry. Without roots every
// registered enlistment is returned.
func (a *app) enlistments(roots []string) ([]*enlistment.Enlistment, error) {
	reg, err := enlistment.LoadRegistry(a.cfg.Registry)
	if err != nil {
		return nil, err
	}
	registered := reg.Enlistments()
	if len(roots) == 0 {
		return registered, nil
	}

	out := make([]*enlistment.Enlistment, 0, len(roots))
	for _, root := range roots {
		e := enlistment.New(root, "", false)
		for _, r := range registered {
			if r.Root == e.Root {
				e = r
				break
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func (a *app) runOnce(cmd *cobra.Command, es []*enlistment.Enlistment, opts []maintenance.ConfigOption) error {
	results := maintenance.RunAll(cmd.Context(), a.runner(), es, a.factory(opts), a.cfg.Parallelism)
	out, failed := report.Markdown(results)
	fmt.Fprint(cmd.OutOrStdout(), out)
	if failed {
		return errors.New("some maintenance steps failed")
	}
	return nil
}

func (a *app) configCommand() *cobra.Command {
	var protocol string
	cmd := &cobra.Command{
		Use:   "config [ROOT...]",
		Short: "Apply the recommended git configuration",
		Long: "Apply the recommended git configuration to the given enlistment roots, " +
			"or to every registered enlistment when no root is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := protocolOptions(protocol)
			if err != nil {
				return err
			}
			es, err := a.enlistments(args)
			if err != nil {
				return err
			}
			return a.runOnce(cmd, es, opts)
		},
	}
	cmd.Flags().StringVar(&protocol, "protocol", "auto", "apply protocol extension settings: auto, on or off")
	return cmd
}

func (a *app) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Periodically maintain every registered enlistment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log := clog.FromContext(ctx)

			if a.cfg.MetricsPort > 0 {
				srv := &http.Server{
					Addr:              ":" + strconv.Itoa(a.cfg.MetricsPort),
					Handler:           promhttp.Handler(),
					ReadHeaderTimeout: 10 * time.Second,
				}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.Errorf("metrics server failed: %v", err)
					}
				}()
				defer srv.Close()
				clog.InfoContextf(ctx, "Serving metrics on port %d", a.cfg.MetricsPort)
			}

			ticker := time.NewTicker(a.cfg.Interval)
			defer ticker.Stop()
			for {
				es, err := a.enlistments(nil)
				if err != nil {
					log.Errorf("Loading registry: %v", err)
				} else {
					clog.InfoContextf(ctx, "Maintaining %d enlistments", len(es))
					if err := a.runOnce(cmd, es, nil); err != nil {
						log.Warnf("Maintenance pass: %v", err)
					}
				}

				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}
}

func (a *app) registerCommand() *cobra.Command {
	var objectCache string
	var gvfs bool
	cmd := &cobra.Command{
		Use:   "register ROOT",
		Short: "Add an enlistment to the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := enlistment.LoadRegistry(a.cfg.Registry)
			if err != nil {
				return err
			}
			e := enlistment.New(args[0], objectCache, gvfs)
			reg.Add(e)
			if err := reg.Save(a.cfg.Registry); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s\n", e.Root)
			return nil
		},
	}
	cmd.Flags().StringVar(&objectCache, "object-cache", "", "shared object cache directory")
	cmd.Flags().BoolVar(&gvfs, "gvfs", false, "the enlistment uses the protocol extension")
	return cmd
}

func (a *app) unregisterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unregister ROOT",
		Short: "Remove an enlistment from the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := enlistment.LoadRegistry(a.cfg.Registry)
			if err != nil {
				return err
			}
			if !reg.Remove(args[0]) {
				return fmt.Errorf("%s is not registered", args[0])
			}
			if err := reg.Save(a.cfg.Registry); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unregistered %s\n", args[0])
			return nil
		},
	}
}

func (a *app) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered enlistments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			es, err := a.enlistments(nil)
			if err != nil {
				return err
			}
			for _, e := range es {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tcache=%s\tgvfs=%t\n", e.Root, e.ObjectCacheRoot, e.UsesGvfsProtocol)
			}
			return nil
		},
	}
}

func (a *app) versionCommand() *cobra.Command {
	var repo string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the installed git version and the features it supports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if repo == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				repo = wd
			}
			p := gitprocess.New(repo, gitprocess.WithGitBinary(a.cfg.GitBinary))
			v, err := p.Version(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "git %s (%s)\nfeatures: %s\ninstaller: %s\n",
				v, a.platform.Name(), v.Features(), gitversion.InstallerName(v, a.platform.InstallerExtension()))

			// Outside a repository there is no core.gvfs to show.
			local, err := p.ReadAll(cmd.Context(), gitconfig.LocalOnly)
			if err != nil {
				clog.FromContext(cmd.Context()).Debugf("Not reading core.gvfs in %s: %v", repo, err)
				return nil
			}
			for _, raw := range local.Get("core.gvfs") {
				n, err := strconv.Atoi(raw)
				if err != nil {
					fmt.Fprintf(w, "core.gvfs: %q (not a number)\n", raw)
					continue
				}
				fmt.Fprintf(w, "core.gvfs: %d (%s)\n", n, strings.Join(maintenance.DecodeProtocolFlags(n).Enabled(), ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&repo, "repo", "", "repository whose core.gvfs flags to show (default: working directory)")
	return cmd
}
