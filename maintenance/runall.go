/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package maintenance

import (
	"context"

	"chainguard.dev/gitmaint/enlistment"
	"golang.org/x/sync/errgroup"
)

// StepFactory builds the step to run for one enlistment.
type StepFactory func(*enlistment.Enlistment) (Step, error)

// RunAll runs the step factory builds for each enlistment, at most limit at
// a time (no limit when limit <= 0). Results are returned in enlistment
// order. Each enlistment gets its own copy of runner, so the object cache
// lock still serializes enlistments that share a cache.
func RunAll(ctx context.Context, runner *Runner, enlistments []*enlistment.Enlistment, factory StepFactory, limit int) []Result {
	results := make([]Result, len(enlistments))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, e := range enlistments {
		g.Go(func() error {
			step, err := factory(e)
			if err != nil {
				results[i] = Result{Root: e.Root, Err: err}
				return nil
			}
			results[i] = runner.clone().Run(ctx, step)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
