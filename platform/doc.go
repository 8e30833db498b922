/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package platform describes the host operating system to the maintenance
// core. A Platform is constructed explicitly, usually once in main via
// Current, and passed down to the steps that need it; nothing in this
// module consults the running OS on its own. Tests construct a specific
// platform with New or provide their own implementation.
package platform
