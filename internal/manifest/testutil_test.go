// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package manifest_test

import (
	"sort"

	"github.com/cockroachdb/pebble-versionset/internal/base"
	"github.com/cockroachdb/pebble-versionset/internal/manifest"
)

// memEntry is one (internal key, value) pair living in a memTable.
type memEntry struct {
	key   base.InternalKey
	value []byte
}

// memTable is an in-memory, sorted stand-in for an opened table, used by
// tests so they can pin down exact fixtures without round-tripping through
// the on-disk format in internal/cache.
type memTable struct {
	cmp     base.InternalKeyCmp
	entries []memEntry
}

func newMemTable(cmp base.InternalKeyCmp, entries []memEntry) *memTable {
	sorted := append([]memEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		return cmp.Cmp(sorted[i].key, sorted[j].key) < 0
	})
	return &memTable{cmp: cmp, entries: sorted}
}

func (t *memTable) get(ikey base.InternalKey) (base.InternalKey, []byte, bool) {
	i := sort.Search(len(t.entries), func(i int) bool {
		return t.cmp.Cmp(t.entries[i].key, ikey) >= 0
	})
	if i >= len(t.entries) {
		return base.InternalKey{}, nil, false
	}
	return t.entries[i].key, t.entries[i].value, true
}

// memCache is an in-memory manifest.TableCache over a fixed set of
// memTables, keyed by file number. It also records every fileNum it was
// asked to Get, for assertions about which files a lookup actually probed.
type memCache struct {
	cmp    base.InternalKeyCmp
	tables map[base.FileNum]*memTable
	probed []base.FileNum
	// corrupt makes Get for a file number that exists but
	// whose entry parse is being simulated as corrupt return a corruption
	// error instead of ok=false, exercising the core's skip-and-continue
	// path.
	corrupt map[base.FileNum]bool
}

func newMemCache(cmp base.Compare) *memCache {
	return &memCache{
		cmp:     base.MakeInternalKeyCmp(cmp),
		tables:  make(map[base.FileNum]*memTable),
		corrupt: make(map[base.FileNum]bool),
	}
}

func (c *memCache) addFile(num base.FileNum, entries []memEntry) {
	c.tables[num] = newMemTable(c.cmp, entries)
}

func (c *memCache) Get(fileNum base.FileNum, ikey base.InternalKey) (base.InternalKey, []byte, bool, error) {
	c.probed = append(c.probed, fileNum)
	if c.corrupt[fileNum] {
		return base.InternalKey{}, nil, false, base.CorruptionErrorf("simulated corruption in file %s", fileNum)
	}
	t, ok := c.tables[fileNum]
	if !ok {
		return base.InternalKey{}, nil, false, nil
	}
	k, v, ok := t.get(ikey)
	return k, v, ok, nil
}

type memHandle struct {
	t   *memTable
	pos int
}

func (c *memCache) GetTable(fileNum base.FileNum) (manifest.TableHandle, error) {
	t, ok := c.tables[fileNum]
	if !ok {
		return nil, base.CorruptionErrorf("no such file %s", fileNum)
	}
	return &memHandle{t: t, pos: -1}, nil
}

func (h *memHandle) Seek(key base.InternalKey) bool {
	i := sort.Search(len(h.t.entries), func(i int) bool {
		return h.t.cmp.Cmp(h.t.entries[i].key, key) >= 0
	})
	h.pos = i
	return i < len(h.t.entries)
}

func (h *memHandle) Advance() bool {
	if h.pos < len(h.t.entries) {
		h.pos++
	}
	return h.pos < len(h.t.entries)
}

func (h *memHandle) Prev() bool {
	if h.pos <= 0 {
		h.pos = -1
		return false
	}
	h.pos--
	return true
}

func (h *memHandle) Reset() {
	h.pos = -1
}

func (h *memHandle) Valid() bool {
	return h.pos >= 0 && h.pos < len(h.t.entries)
}

func (h *memHandle) Current() (base.InternalKey, []byte, bool) {
	if !h.Valid() {
		return base.InternalKey{}, nil, false
	}
	e := h.t.entries[h.pos]
	return e.key, e.value, true
}

func mk(userKey string, seq uint64) base.InternalKey {
	return base.MakeInternalKey([]byte(userKey), seq, base.InternalKeyKindSet)
}

func mustFile(num base.FileNum, smallest, largest base.InternalKey) *manifest.FileMetadata {
	f, err := manifest.NewFileMetadata(num, 4096, smallest, largest)
	if err != nil {
		panic(err)
	}
	return f
}
