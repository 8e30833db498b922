/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package retry provides capped exponential backoff for operations that
// are expected to fail transiently, such as attempting a non-blocking file
// lock that another process currently holds.
//
// Do bounds the number of attempts; Poll keeps trying until the operation
// succeeds, returns a non-retryable error, or the context is done. Callers
// that need a wall-clock bound derive a context with a deadline.
package retry
