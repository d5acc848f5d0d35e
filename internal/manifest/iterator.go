// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package manifest

import "github.com/cockroachdb/pebble-versionset/internal/base"

// InternalIterator is the capability set shared by every iterator this
// package produces or consumes: per-file table iterators opened through the
// table cache, and the concatenating iterator this package builds on top of
// them. Advance moves forward and reports validity; Prev moves back and
// reports validity; Seek positions at the least key >= key or invalidates;
// Reset returns to the unpositioned state; Current fills the caller's
// buffers and reports validity; Valid reports whether Current would
// succeed.
type InternalIterator interface {
	Seek(key base.InternalKey) bool
	Advance() bool
	Prev() bool
	Reset()
	Current() (base.InternalKey, []byte, bool)
	Valid() bool
}

// TableHandle is the reader surface the table cache hands back for a single
// open table. It is consumed, not implemented, by this package; the block
// format and bloom-filter machinery behind it are out of scope.
type TableHandle interface {
	InternalIterator
}

// TableCache is the external collaborator that maps file numbers to opened,
// memoised table readers. Version consults it for point lookups and for
// opening per-file iterators; it never manages the underlying files
// directly.
type TableCache interface {
	// Get returns the smallest entry with an internal key >= ikey in the
	// table identified by fileNum, or ok == false if the table contains no
	// such entry. Errors propagate unchanged; a corruption discovered while
	// parsing an entry is reported via err and is not a found/not-found
	// signal.
	Get(fileNum base.FileNum, ikey base.InternalKey) (key base.InternalKey, value []byte, ok bool, err error)
	// GetTable returns a (possibly cached) reader for fileNum.
	GetTable(fileNum base.FileNum) (TableHandle, error)
}
