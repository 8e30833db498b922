/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package gitconfig

import (
	"context"
	"slices"

	"github.com/chainguard-dev/clog"
)

// Outcome lists the writes a reconciliation performed, in order.
type Outcome struct {
	Set   []string
	Unset []string
}

// Writes is the total number of writes performed.
func (o Outcome) Writes() int {
	return len(o.Set) + len(o.Unset)
}

// ReadCurrent enumerates the configuration visible in scope, wrapping any
// failure in a *ReadError.
func ReadCurrent(ctx context.Context, store Store, scope Scope) (Values, error) {
	values, err := store.ReadAll(ctx, scope)
	if err != nil {
		return nil, &ReadError{Scope: scope, Err: err}
	}
	if values == nil {
		values = Values{}
	}
	return values, nil
}

// ScopeFor returns the read scope used for a batch. Required settings are
// compared against local configuration only, so that they never depend on
// global settings that can change independently of the repository.
func ScopeFor(required bool) Scope {
	if required {
		return LocalOnly
	}
	return AllScopes
}

// Reconcile reads the current configuration and applies the writes needed
// to satisfy desired. See the package documentation for the rules.
func Reconcile(ctx context.Context, store Store, desired []Setting, required bool) (Outcome, error) {
	if err := validate(desired); err != nil {
		return Outcome{}, err
	}
	current, err := ReadCurrent(ctx, store, ScopeFor(required))
	if err != nil {
		return Outcome{}, err
	}
	// Only a local value can be unset locally.
	local := current
	if !required && slices.ContainsFunc(desired, func(s Setting) bool { return s.Delete }) {
		if local, err = ReadCurrent(ctx, store, LocalOnly); err != nil {
			return Outcome{}, err
		}
	}
	return apply(ctx, store, current, local, desired, required)
}

// ReconcileValues applies desired against an already read snapshot of the
// configuration. The snapshot also decides Delete entries, so it should be
// local only when desired removes keys.
func ReconcileValues(ctx context.Context, store Store, current Values, desired []Setting, required bool) (Outcome, error) {
	if err := validate(desired); err != nil {
		return Outcome{}, err
	}
	return apply(ctx, store, current, current, desired, required)
}

// Satisfied reports whether s needs no write given current. Delete entries
// are checked against current as given; pass local values for them.
func Satisfied(s Setting, current Values, required bool) bool {
	if s.Delete {
		return !current.Present(s.Key)
	}
	if !current.Present(s.Key) {
		return false
	}
	return !required || current.Has(s.Key, s.Value)
}

func apply(ctx context.Context, store Store, current, local Values, desired []Setting, required bool) (Outcome, error) {
	log := clog.FromContext(ctx)

	var out Outcome
	for _, s := range desired {
		observed := current
		if s.Delete {
			observed = local
		}
		if Satisfied(s, observed, required) {
			continue
		}

		if s.Delete {
			log.Infof("Removing config value %s", s.Key)
			if err := store.UnsetLocal(ctx, s.Key); err != nil {
				return out, &ApplyError{Op: OpUnset, Key: s.Key, Err: err}
			}
			out.Unset = append(out.Unset, s.Key)
			continue
		}

		log.Infof("Setting config value %s=%s", s.Key, s.Value)
		if err := store.SetLocal(ctx, s.Key, s.Value); err != nil {
			return out, &ApplyError{Op: OpSet, Key: s.Key, Err: err}
		}
		out.Set = append(out.Set, s.Key)
	}
	return out, nil
}
