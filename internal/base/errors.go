// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"github.com/cockroachdb/errors"
)

// ErrNotFound means that a get or delete call did not find the requested
// key.
var ErrNotFound = errors.New("pebble-versionset: not found")

// ErrCorruption is a marker error returned when on-disk data is found to be
// corrupt. Corruption errors are never retried; the caller that discovers
// them is expected to skip the offending file and continue.
var ErrCorruption = errors.New("pebble-versionset: corruption")

// CorruptionErrorf formats according to a format specifier and returns the
// resulting string as an error value that Is(err, ErrCorruption).
func CorruptionErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrCorruption)
}

// MarkCorruptionError wraps err so that errors.Is(err, ErrCorruption) holds.
func MarkCorruptionError(err error) error {
	if err == nil {
		return nil
	}
	return errors.Mark(err, ErrCorruption)
}

// IsCorruptionError reports whether err (or a cause in its chain) denotes
// corrupted on-disk state.
func IsCorruptionError(err error) bool {
	return errors.Is(err, ErrCorruption)
}
