/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package maintenance

import (
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
)

// Option configures a Runner.
type Option func(*Runner)

// WithLockTimeout sets how long a step waits for the object cache lock.
// Zero or less means a single attempt. The default is DefaultLockTimeout.
func WithLockTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.lockTimeout = d
	}
}

// WithLockFile overrides the lock file, which otherwise is the
// enlistment's MaintenanceLockPath.
func WithLockFile(path string) Option {
	return func(r *Runner) {
		r.lockFile = path
	}
}

// WithTracerProvider sets the provider step spans are created with. The
// default is the global provider.
func WithTracerProvider(tp oteltrace.TracerProvider) Option {
	return func(r *Runner) {
		r.tracerProvider = tp
	}
}

// WithStateObserver registers fn to be called on every state transition.
func WithStateObserver(fn func(State)) Option {
	return func(r *Runner) {
		r.observers = append(r.observers, fn)
	}
}

// ConfigOption configures a ConfigStep.
type ConfigOption func(*ConfigStep)

// WithProtocol overrides whether the protocol extension settings are
// applied. By default the enlistment decides.
func WithProtocol(use bool) ConfigOption {
	return func(s *ConfigStep) {
		s.useProtocol = &use
	}
}
