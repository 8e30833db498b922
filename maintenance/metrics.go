/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package maintenance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSucceeded       = "succeeded"
	outcomeFailed          = "failed"
	outcomeLockUnavailable = "lock_unavailable"
)

var (
	stepRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintenance_step_runs_total",
			Help: "Total number of maintenance step runs by outcome",
		},
		[]string{"step", "outcome"},
	)

	stepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "maintenance_step_duration_seconds",
			Help:    "Wall time of maintenance step runs, including lock wait",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		},
		[]string{"step"},
	)
)

func recordRun(area, outcome string, seconds float64) {
	stepRuns.With(prometheus.Labels{"step": area, "outcome": outcome}).Inc()
	stepDuration.With(prometheus.Labels{"step": area}).Observe(seconds)
}
