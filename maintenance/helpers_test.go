/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package maintenance

import (
	"context"
	"sync"
	"testing"

	"chainguard.dev/gitmaint/enlistment"
	"chainguard.dev/gitmaint/gitconfig/gitconfigtest"
	"chainguard.dev/gitmaint/platform"
)

// fakePlatform behaves like Linux, with overridable capabilities and a
// fixed program search path.
type fakePlatform struct {
	platform.Linux
	windows  bool
	noMode   bool
	programs map[string]string
}

func (p fakePlatform) IsWindows() bool        { return p.windows }
func (p fakePlatform) SupportsFileMode() bool { return !p.noMode }

func (p fakePlatform) LocateProgram(name string) string {
	return p.programs[name]
}

func newContext(t *testing.T, usesGvfs bool, p platform.Platform) (Context, *gitconfigtest.Store) {
	t.Helper()
	store := gitconfigtest.New(nil)
	return Context{
		Enlistment: enlistment.New(t.TempDir(), t.TempDir(), usesGvfs),
		Platform:   p,
		Config:     store,
	}, store
}

type fakeStep struct {
	mc   Context
	area string
	lock bool
	run  func(context.Context) error
}

func (s *fakeStep) Area() string                  { return s.area }
func (s *fakeStep) ProgressMessage() string       { return "Doing " + s.area }
func (s *fakeStep) RequiresObjectCacheLock() bool { return s.lock }
func (s *fakeStep) Context() Context              { return s.mc }

func (s *fakeStep) PerformMaintenance(ctx context.Context) error {
	if s.run == nil {
		return nil
	}
	return s.run(ctx)
}

// stateLog records lifecycle transitions.
type stateLog struct {
	mu     sync.Mutex
	states []State
}

func (l *stateLog) observe(s State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, s)
}

func (l *stateLog) get() []State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]State(nil), l.states...)
}
