// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package manifest

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble-versionset/internal/base"
)

// seeksPerByteShift converts a file size to a seek budget: one seek charge
// is amortized over 16KiB, on the theory that an HDD seek costs about 10ms
// and 40KiB of compaction amortizes one seek. Below this, the budget is
// clamped to minFileSeeks so that small files aren't immediately eligible
// for compaction the moment they're touched.
const (
	seeksPerByteShift = 14 // 1 << 14 == 16384
	minFileSeeks      = 100
)

// InitialAllowedSeeks computes the seek budget a freshly minted file starts
// with: max(100, size/16384).
func InitialAllowedSeeks(size uint64) int64 {
	n := int64(size >> seeksPerByteShift)
	if n < minFileSeeks {
		n = minFileSeeks
	}
	return n
}

// FileMetadata describes a single on-disk table. It is reference counted:
// multiple Versions may point at the same FileMetadata (a file that
// survives from one Version to the next isn't recreated), so two of its
// fields -- the reference count and allowedSeeks -- are mutated through
// atomics rather than requiring exclusive ownership. The compaction
// nomination that allowedSeeks feeds is held by the Version, not here.
type FileMetadata struct {
	// FileNum uniquely and monotonically identifies the table.
	FileNum base.FileNum
	// Size is the encoded size of the table, in bytes.
	Size uint64
	// Smallest and Largest are the inclusive internal-key bounds of the
	// table; both are keys that are actually present in the table.
	Smallest base.InternalKey
	Largest  base.InternalKey

	refs atomic.Int32

	// allowedSeeks is the remaining seek budget. It is decremented by
	// UpdateStats and only ever decreases (I4 of the data model).
	allowedSeeks atomic.Int64
}

// NewFileMetadata constructs a FileMetadata, validating the construction
// invariants from ticket 4.B: a positive file number, non-empty endpoints,
// and a seek budget derived from size.
func NewFileMetadata(num base.FileNum, size uint64, smallest, largest base.InternalKey) (*FileMetadata, error) {
	if num == 0 {
		return nil, errors.New("manifest: file number must be > 0")
	}
	if len(smallest.UserKey) == 0 || len(largest.UserKey) == 0 {
		return nil, errors.New("manifest: file endpoints must be non-empty internal keys")
	}
	m := &FileMetadata{
		FileNum:  num,
		Size:     size,
		Smallest: smallest,
		Largest:  largest,
	}
	m.refs.Store(1)
	m.allowedSeeks.Store(InitialAllowedSeeks(size))
	return m, nil
}

// Ref increments the file's reference count. Called whenever a new Version
// is built that retains this file.
func (m *FileMetadata) Ref() {
	m.refs.Add(1)
}

// Unref decrements the file's reference count and reports whether it
// reached zero, at which point the caller (the version-edit subsystem, not
// this package) may schedule the underlying table for physical deletion.
func (m *FileMetadata) Unref() bool {
	return m.refs.Add(-1) == 0
}

// AllowedSeeks returns the current remaining seek budget.
func (m *FileMetadata) AllowedSeeks() int64 {
	return m.allowedSeeks.Load()
}

// chargeSeek decrements the seek budget by one and returns the
// post-decrement value observed by this call, atomically. Taking the
// post-decrement value directly (rather than a separate load) is what
// keeps concurrent callers of UpdateStats from racing to the same
// nomination decision on a stale read of allowedSeeks.
func (m *FileMetadata) chargeSeek() int64 {
	return m.allowedSeeks.Add(-1)
}
