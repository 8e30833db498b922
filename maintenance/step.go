/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package maintenance

import (
	"context"
	"errors"
	"time"

	"chainguard.dev/gitmaint/enlistment"
	"chainguard.dev/gitmaint/gitconfig"
	"chainguard.dev/gitmaint/platform"
)

// Step is one maintenance operation on an enlistment.
type Step interface {
	// Area names the step in logs, metrics and reports.
	Area() string
	// ProgressMessage is shown while the step runs.
	ProgressMessage() string
	// RequiresObjectCacheLock reports whether the step must hold the
	// object cache lock while it runs.
	RequiresObjectCacheLock() bool
	// Context returns the enlistment and host the step operates on.
	Context() Context
	// PerformMaintenance does the work. It is only called by a Runner.
	PerformMaintenance(ctx context.Context) error
}

// Context carries the collaborators a step needs. It is passed explicitly
// so that steps never consult process-wide state.
type Context struct {
	Enlistment *enlistment.Enlistment
	Platform   platform.Platform
	Config     gitconfig.Store
}

func (c Context) validate() error {
	var errs []error
	if c.Enlistment == nil {
		errs = append(errs, errors.New("enlistment is required"))
	}
	if c.Platform == nil {
		errs = append(errs, errors.New("platform is required"))
	}
	if c.Config == nil {
		errs = append(errs, errors.New("config store is required"))
	}
	return errors.Join(errs...)
}

// State is a position in the step lifecycle.
type State int

const (
	Idle State = iota
	LockAcquired
	Running
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case LockAcquired:
		return "lock-acquired"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of one step run.
type Result struct {
	Area     string
	Root     string
	Err      error
	Duration time.Duration
}

// Success reports whether the step succeeded.
func (r Result) Success() bool {
	return r.Err == nil
}

// Error returns the failure message, or "" on success.
func (r Result) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
