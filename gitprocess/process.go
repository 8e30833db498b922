/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package gitprocess

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"chainguard.dev/gitmaint/gitversion"
	"github.com/chainguard-dev/clog"
)

// Exit codes reported for commands that never ran.
const (
	ExitNotFound = 127
	ExitFailed   = 1
)

// Result is the outcome of a git invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Failed reports a non-zero exit code.
func (r Result) Failed() bool {
	return r.ExitCode != 0
}

// Err returns nil for a successful result, otherwise a *CommandError for
// the command that produced it.
func (r Result) Err(args ...string) error {
	if !r.Failed() {
		return nil
	}
	return &CommandError{Args: args, ExitCode: r.ExitCode, Stderr: r.Stderr}
}

// CommandError reports a git command that exited non-zero. Stderr is kept
// verbatim.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("git %s: exit code %d: %s", strings.Join(e.Args, " "), e.ExitCode, strings.TrimSpace(e.Stderr))
}

// Runner is the synchronous git process collaborator.
type Runner interface {
	Run(ctx context.Context, args ...string) Result
}

// Process runs git in a repository directory.
type Process struct {
	dir    string
	gitBin string
	env    []string
}

var _ Runner = (*Process)(nil)

// New returns a Process for the repository at dir.
func New(dir string, opts ...Option) *Process {
	p := &Process{dir: dir, gitBin: "git"}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Dir returns the repository directory.
func (p *Process) Dir() string {
	return p.dir
}

// Command returns an *exec.Cmd for a git command targeting the repository
// without running it.
func (p *Process) Command(ctx context.Context, args ...string) *exec.Cmd {
	fullArgs := append([]string{"-C", p.dir}, args...)
	cmd := exec.CommandContext(ctx, p.gitBin, fullArgs...)
	if len(p.env) > 0 {
		cmd.Env = append(os.Environ(), p.env...)
	}
	return cmd
}

// Run implements Runner.
func (p *Process) Run(ctx context.Context, args ...string) Result {
	var stdout, stderr bytes.Buffer
	cmd := p.Command(ctx, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res
	}

	var exitErr *exec.ExitError
	var execErr *exec.Error
	switch {
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		if res.ExitCode < 0 {
			// Killed by a signal, e.g. context cancellation.
			res.ExitCode = ExitFailed
			res.Stderr += err.Error()
		}
	case errors.As(err, &execErr):
		res.ExitCode = ExitNotFound
		res.Stderr += err.Error()
	default:
		res.ExitCode = ExitFailed
		res.Stderr += err.Error()
	}
	clog.FromContext(ctx).Debugf("git %s in %s exited %d", strings.Join(args, " "), p.dir, res.ExitCode)
	return res
}

// Version runs "git version" and parses its output.
func (p *Process) Version(ctx context.Context) (gitversion.Version, error) {
	args := []string{"version"}
	res := p.Run(ctx, args...)
	if err := res.Err(args...); err != nil {
		return gitversion.Version{}, err
	}
	return gitversion.ParseCommandOutput(res.Stdout)
}
