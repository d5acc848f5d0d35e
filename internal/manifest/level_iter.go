// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package manifest

import "github.com/cockroachdb/pebble-versionset/internal/base"

// levelIter treats a disjoint, ascending level (any level >= 1) as the
// concatenation of its per-file iterators. It opens a file's table lazily,
// only when iteration actually transitions onto it, and never holds more
// than one table open at a time.
type levelIter struct {
	cmp   base.InternalKeyCmp
	cache TableCache
	files []*FileMetadata

	// index is the position of the currently open file in files, or -1 if
	// unpositioned.
	index int
	// iter is the iterator for files[index], or nil if unpositioned or if
	// opening files[index] failed -- a failed open is end-of-iteration, not
	// a propagated error (see openAt).
	iter InternalIterator
}

// newLevelIter builds a concatenating iterator over files, which must be
// the file list for some level >= 1 of a Version.
func newLevelIter(cmp base.InternalKeyCmp, cache TableCache, files []*FileMetadata) *levelIter {
	return &levelIter{cmp: cmp, cache: cache, files: files, index: -1}
}

func (l *levelIter) openAt(index int) bool {
	l.index = index
	l.iter = nil
	if index < 0 || index >= len(l.files) {
		return false
	}
	h, err := l.cache.GetTable(l.files[index].FileNum)
	if err != nil {
		// Opening failed; treat it as exhaustion of this position. The
		// error itself was already surfaced through the cache's own error
		// channel when it tried to open the file.
		return false
	}
	l.iter = h
	return true
}

// Seek positions the iterator at the least key >= key across the whole
// level, or invalidates it if no such key exists.
func (l *levelIter) Seek(key base.InternalKey) bool {
	i := FindFile(l.cmp, l.files, key)
	if !l.openAt(i) {
		l.Reset()
		return false
	}
	if !l.iter.Seek(key) {
		l.Reset()
		return false
	}
	return true
}

// Advance moves to the next key in the level, opening the next file's
// table when the current one is exhausted.
func (l *levelIter) Advance() bool {
	if l.iter != nil {
		if l.iter.Advance() {
			return true
		}
	}
	if l.index < 0 {
		return l.openAtBeginning()
	}
	if l.index >= len(l.files)-1 {
		l.Reset()
		return false
	}
	if !l.openAt(l.index + 1) {
		l.Reset()
		return false
	}
	return l.iter.Seek(base.InternalKey{})
}

func (l *levelIter) openAtBeginning() bool {
	if !l.openAt(0) {
		l.Reset()
		return false
	}
	return l.iter.Advance()
}

// Prev moves to the previous key in the level, opening the previous file's
// table -- positioned at its Largest key, which is guaranteed present --
// when the current one is exhausted backwards.
func (l *levelIter) Prev() bool {
	if l.iter != nil {
		if l.iter.Prev() {
			return true
		}
	}
	if l.index <= 0 {
		l.Reset()
		return false
	}
	if !l.openAt(l.index - 1) {
		l.Reset()
		return false
	}
	return l.iter.Seek(l.files[l.index].Largest)
}

// Reset drops the current position, returning the iterator to unpositioned.
func (l *levelIter) Reset() {
	l.index = -1
	l.iter = nil
}

// Valid delegates to the current file's iterator, if any.
func (l *levelIter) Valid() bool {
	return l.iter != nil && l.iter.Valid()
}

// Current delegates to the current file's iterator, if any.
func (l *levelIter) Current() (base.InternalKey, []byte, bool) {
	if l.iter == nil {
		return base.InternalKey{}, nil, false
	}
	return l.iter.Current()
}
