/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package gitconfig

import "fmt"

// ReadError reports that the current configuration could not be
// enumerated. No writes are attempted after a ReadError.
type ReadError struct {
	Scope Scope
	Err   error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %s config: %v", e.Scope, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Op is a kind of configuration write.
type Op string

const (
	OpSet   Op = "set"
	OpUnset Op = "unset"
)

// ApplyError reports a single failed write. Writes that happened before it
// are kept; running the reconciliation again is safe.
type ApplyError struct {
	Op  Op
	Key string
	Err error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}
