/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package gitconfigtest provides an in-memory gitconfig.Store that records
// every write and can be told to fail specific operations.
package gitconfigtest
