/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package maintenance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"chainguard.dev/gitmaint/filelock"
	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// DefaultLockTimeout is how long a step waits for the object cache lock
// unless WithLockTimeout is given. Zero means a single attempt.
const DefaultLockTimeout time.Duration = 0

const tracerName = "chainguard.dev/gitmaint/maintenance"

// ErrStopped is returned for a step whose context ended before it started
// running.
var ErrStopped = errors.New("maintenance stopped before the step ran")

// Runner drives steps through their lifecycle. A Runner runs one step at a
// time; concurrent calls to Run are serialized.
type Runner struct {
	lockTimeout    time.Duration
	lockFile       string
	tracerProvider oteltrace.TracerProvider
	observers      []func(State)

	mu    sync.Mutex
	state atomic.Int32
}

// NewRunner returns a Runner configured by opts.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{lockTimeout: DefaultLockTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// clone returns an idle Runner with the same configuration.
func (r *Runner) clone() *Runner {
	return &Runner{
		lockTimeout:    r.lockTimeout,
		lockFile:       r.lockFile,
		tracerProvider: r.tracerProvider,
		observers:      r.observers,
	}
}

// State returns the lifecycle state of the step currently running.
func (r *Runner) State() State {
	return State(r.state.Load())
}

func (r *Runner) setState(s State) {
	r.state.Store(int32(s))
	for _, fn := range r.observers {
		fn(s)
	}
}

func (r *Runner) tracer() oteltrace.Tracer {
	tp := r.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(tracerName, oteltrace.WithInstrumentationVersion("1.0.0"))
}

// Run executes step and reports its outcome. Failures, including a
// panicking step, are returned in the Result rather than propagated.
func (r *Runner) Run(ctx context.Context, step Step) (res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mc := step.Context()
	area := step.Area()
	res.Area = area
	if mc.Enlistment != nil {
		res.Root = mc.Enlistment.Root
	}

	ctx, span := r.tracer().Start(ctx, "maintenance.step", oteltrace.WithAttributes(
		attribute.String("maintenance.step", area),
		attribute.String("enlistment.root", res.Root),
	))
	log := clog.FromContext(ctx).With("step", area).With("enlistment", res.Root)
	ctx = clog.WithLogger(ctx, log)

	start := time.Now()
	outcome := outcomeFailed
	defer func() {
		res.Duration = time.Since(start)
		if res.Err == nil {
			outcome = outcomeSucceeded
			r.setState(Succeeded)
			log.Infof("Step %s succeeded in %v", area, res.Duration)
		} else {
			r.setState(Failed)
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, res.Err.Error())
			log.Errorf("Step %s failed: %v", area, res.Err)
		}
		recordRun(area, outcome, res.Duration.Seconds())
		span.End()
		r.setState(Idle)
	}()

	if err := mc.validate(); err != nil {
		res.Err = fmt.Errorf("invalid maintenance context: %w", err)
		return res
	}

	if step.RequiresObjectCacheLock() {
		lock, err := r.acquire(ctx, mc)
		if err != nil {
			outcome = outcomeLockUnavailable
			res.Err = err
			return res
		}
		defer func() {
			if err := lock.Release(); err != nil {
				log.Warnf("Failed to release %s: %v", lock.Path(), err)
			}
		}()
		r.setState(LockAcquired)
	}

	if err := ctx.Err(); err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrStopped, err)
		return res
	}

	r.setState(Running)
	log.Info(step.ProgressMessage())
	res.Err = perform(ctx, step)
	return res
}

func (r *Runner) acquire(ctx context.Context, mc Context) (*filelock.Lock, error) {
	path := r.lockFile
	if path == "" {
		path = mc.Enlistment.MaintenanceLockPath()
	}
	return filelock.Acquire(ctx, mc.Platform.NewFileLock(path), r.lockTimeout)
}

func perform(ctx context.Context, step Step) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("step %s panicked: %v", step.Area(), p)
		}
	}()
	return step.PerformMaintenance(ctx)
}
