/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package gitconfig

import "fmt"

// Setting is one desired configuration entry.
type Setting struct {
	Key   string
	Value string
	// Delete marks the key as one that must be absent from the local
	// configuration. Value is ignored.
	Delete bool
}

// Set returns a Setting that requires key to have value.
func Set(key, value string) Setting {
	return Setting{Key: key, Value: value}
}

// Unset returns a Setting that requires key to be absent.
func Unset(key string) Setting {
	return Setting{Key: key, Delete: true}
}

func (s Setting) String() string {
	if s.Delete {
		return fmt.Sprintf("%s (unset)", s.Key)
	}
	return fmt.Sprintf("%s=%s", s.Key, s.Value)
}

func validate(settings []Setting) error {
	seen := make(map[string]struct{}, len(settings))
	for _, s := range settings {
		if _, _, _, err := SplitKey(s.Key); err != nil {
			return err
		}
		k := CanonicalKey(s.Key)
		if _, dup := seen[k]; dup {
			return fmt.Errorf("duplicate config key %q in batch", s.Key)
		}
		seen[k] = struct{}{}
	}
	return nil
}
