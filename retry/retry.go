/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package retry

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/chainguard-dev/clog"
)

// Config configures backoff behavior between attempts.
type Config struct {
	// MaxRetries is the maximum number of retry attempts used by Do.
	// 0 means do not retry at all. Poll ignores it.
	MaxRetries int
	// BaseBackoff is the initial backoff duration.
	BaseBackoff time.Duration
	// MaxBackoff caps the exponential growth.
	MaxBackoff time.Duration
	// MaxJitter is the maximum random jitter added to each backoff.
	MaxJitter time.Duration
}

// Validate reports the first negative field. Do and Poll refuse to run
// with an invalid configuration.
func (c Config) Validate() error {
	if c.MaxRetries < 0 {
		return errors.New("max retries cannot be negative")
	}
	if c.BaseBackoff < 0 {
		return errors.New("base backoff cannot be negative")
	}
	if c.MaxBackoff < 0 {
		return errors.New("max backoff cannot be negative")
	}
	if c.MaxJitter < 0 {
		return errors.New("max jitter cannot be negative")
	}
	return nil
}

// DefaultConfig returns a configuration for short local contention, such
// as another git process briefly holding a lock file. Retries stop after
// roughly four seconds.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  10,
		BaseBackoff: 10 * time.Millisecond,
		MaxBackoff:  time.Second,
		MaxJitter:   10 * time.Millisecond,
	}
}

// Backoff returns the delay before retry number attempt (zero based),
// without jitter.
func (c Config) Backoff(attempt int) time.Duration {
	if c.BaseBackoff <= 0 {
		return 0
	}
	// Guard the shift against overflow for long polls.
	if attempt > 30 {
		attempt = 30
	}
	backoff := c.BaseBackoff << attempt
	if c.MaxBackoff > 0 && (backoff > c.MaxBackoff || backoff <= 0) {
		backoff = c.MaxBackoff
	}
	return backoff
}

func (c Config) jitter() time.Duration {
	if c.MaxJitter <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(c.MaxJitter)))
	if err != nil {
		return 0
	}
	return time.Duration(n.Int64())
}

// Do calls fn until it succeeds, returns an error isRetryable rejects, or
// cfg.MaxRetries retries have been spent.
func Do[T any](ctx context.Context, cfg Config, operation string, isRetryable func(error) bool, fn func() (T, error)) (T, error) {
	return run(ctx, cfg, operation, cfg.MaxRetries, isRetryable, fn)
}

// Poll is Do without a retry limit: it runs until fn succeeds, returns an
// error isRetryable rejects, or ctx is done.
func Poll[T any](ctx context.Context, cfg Config, operation string, isRetryable func(error) bool, fn func() (T, error)) (T, error) {
	return run(ctx, cfg, operation, -1, isRetryable, fn)
}

// run retries up to limit times, or forever when limit is negative. When
// ctx ends the returned error wraps both the context error and the last
// retryable error.
func run[T any](ctx context.Context, cfg Config, operation string, limit int, isRetryable func(error) bool, fn func() (T, error)) (T, error) {
	if err := cfg.Validate(); err != nil {
		var zero T
		return zero, fmt.Errorf("%s: invalid retry config: %w", operation, err)
	}

	for attempt := 0; ; attempt++ {
		result, err := fn()
		switch {
		case err == nil:
			return result, nil
		case !isRetryable(err):
			return result, err
		case limit >= 0 && attempt >= limit:
			return result, fmt.Errorf("%s: giving up after %d retries: %w", operation, limit, err)
		}
		if serr := sleep(ctx, cfg, operation, attempt, err); serr != nil {
			return result, fmt.Errorf("%s: %w", operation, errors.Join(serr, err))
		}
	}
}

func sleep(ctx context.Context, cfg Config, operation string, attempt int, lastErr error) error {
	delay := cfg.Backoff(attempt) + cfg.jitter()

	clog.FromContext(ctx).With("operation", operation).
		With("attempt", attempt+1).
		With("backoff", delay).
		With("error", lastErr.Error()).
		Debug("Operation not ready, retrying")

	if err := ctx.Err(); err != nil {
		return err
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
