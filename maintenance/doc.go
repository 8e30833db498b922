/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package maintenance runs housekeeping steps against an enlistment.
//
// A Step is one independently schedulable operation. The Runner drives
// every step through the same lifecycle:
//
//	Idle -> LockAcquired -> Running -> Succeeded | Failed -> Idle
//
// LockAcquired is skipped for steps that do not touch the shared object
// cache. When it is required, the lock is keyed on the enlistment's object
// cache so that every process on the host serializes on it, and it is
// released on every exit path, including a panicking step.
//
// ConfigStep is the step that keeps a repository's git configuration at
// the settings the client depends on:
//
//	mc := maintenance.Context{
//		Enlistment: enlistment.New(root, cache, true),
//		Platform:   platform.Current(),
//		Config:     gitprocess.New(workdir),
//	}
//	res := maintenance.NewRunner().Run(ctx, maintenance.NewConfigStep(mc))
//	if !res.Success() {
//		return res.Err
//	}
//
// Each run is counted in the maintenance_step_runs_total and
// maintenance_step_duration_seconds metrics and traced as a
// maintenance.step span.
package maintenance
