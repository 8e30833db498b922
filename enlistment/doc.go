/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package enlistment describes a virtualized enlistment on disk and the
// registry of enlistments a maintenance host is responsible for.
//
// An enlistment rooted at R keeps its working tree in R/src and its git
// directory in R/src/.git. Packs and loose objects live in a shared object
// cache which may serve several enlistments, so the maintenance lock is
// keyed on the cache rather than the enlistment:
//
//	e := enlistment.New("/repos/os", "/cache/os", true)
//	e.MaintenanceLockPath() // "/cache/os/maintenance.lock"
//
// The registry is a YAML file listing enlistment roots:
//
//	enlistments:
//	  - root: /repos/os
//	    objectCache: /cache/os
//	    gvfsProtocol: true
package enlistment
