// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cache

import (
	"container/list"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble-versionset/internal/base"
	"github.com/cockroachdb/pebble-versionset/internal/manifest"
	"github.com/cockroachdb/pebble-versionset/internal/metrics"
	"github.com/cockroachdb/pebble-versionset/internal/vfs"
	"golang.org/x/exp/mmap"
	"golang.org/x/sync/singleflight"
)

// TableCache is the default manifest.TableCache implementation: an
// LRU-bounded set of opened tableReaders, backed by mmap'd files. Real
// pebble doesn't reach for a third-party LRU here either -- it hand-rolls
// a clock-style cache -- so this does the same rather than pulling in a
// dependency the rest of the stack doesn't use.
type TableCache struct {
	fs       vfs.FS
	dir      string
	cmp      base.InternalKeyCmp
	capacity int
	metrics  *metrics.Collector

	group singleflight.Group

	mu      sync.Mutex
	ll      *list.List // of *cacheEntry, front = most recently used
	entries map[base.FileNum]*list.Element
}

type cacheEntry struct {
	fileNum base.FileNum
	reader  *tableReader
	mapping *mmap.ReaderAt
}

// NewTableCache returns a TableCache that opens tables named "%06d.sst"
// under dir via fs, keeping up to capacity of them open at once.
func NewTableCache(fs vfs.FS, dir string, ucmp base.Compare, capacity int, m *metrics.Collector) *TableCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &TableCache{
		fs:       fs,
		dir:      dir,
		cmp:      base.MakeInternalKeyCmp(ucmp),
		capacity: capacity,
		metrics:  m,
		ll:       list.New(),
		entries:  make(map[base.FileNum]*list.Element),
	}
}

func (c *TableCache) tableName(num base.FileNum) string {
	return c.fs.PathJoin(c.dir, num.String()+".sst")
}

// GetTable returns a (possibly cached) reader for fileNum. Concurrent
// callers racing to open the same, not-yet-cached file are collapsed onto
// a single open via singleflight, so a burst of lookups against a newly
// written file doesn't mmap it N times over.
func (c *TableCache) GetTable(fileNum base.FileNum) (manifest.TableHandle, error) {
	if r := c.lookup(fileNum); r != nil {
		return r, nil
	}
	v, err, _ := c.group.Do(fileNum.String(), func() (interface{}, error) {
		if r := c.lookup(fileNum); r != nil {
			return r, nil
		}
		return c.open(fileNum)
	})
	if err != nil {
		c.metrics.RecordTableOpenError()
		return nil, err
	}
	return v.(*tableReader), nil
}

func (c *TableCache) lookup(fileNum base.FileNum) *tableReader {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[fileNum]
	if !ok {
		return nil
	}
	c.ll.MoveToFront(el)
	return el.Value.(*cacheEntry).reader
}

func (c *TableCache) open(fileNum base.FileNum) (*tableReader, error) {
	name := c.tableName(fileNum)
	ra, err := mmap.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "cache: opening table %s", fileNum)
	}
	raw := make([]byte, ra.Len())
	if _, err := ra.ReadAt(raw, 0); err != nil {
		ra.Close()
		return nil, errors.Wrapf(err, "cache: reading table %s", fileNum)
	}
	reader, err := newTableReader(c.cmp, raw)
	if err != nil {
		ra.Close()
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[fileNum]; ok {
		// Lost a race with another opener between lookup and here.
		ra.Close()
		c.ll.MoveToFront(el)
		return el.Value.(*cacheEntry).reader, nil
	}
	ce := &cacheEntry{fileNum: fileNum, reader: reader, mapping: ra}
	el := c.ll.PushFront(ce)
	c.entries[fileNum] = el
	c.evictLocked()
	c.metrics.RecordTableCacheOpen()
	return reader, nil
}

func (c *TableCache) evictLocked() {
	for c.ll.Len() > c.capacity {
		back := c.ll.Back()
		if back == nil {
			return
		}
		ce := back.Value.(*cacheEntry)
		c.ll.Remove(back)
		delete(c.entries, ce.fileNum)
		ce.mapping.Close()
		c.metrics.RecordTableCacheEviction()
	}
}

// Get returns the smallest entry with an internal key >= ikey from the
// table identified by fileNum.
func (c *TableCache) Get(fileNum base.FileNum, ikey base.InternalKey) (base.InternalKey, []byte, bool, error) {
	h, err := c.GetTable(fileNum)
	if err != nil {
		return base.InternalKey{}, nil, false, err
	}
	r := h.(*tableReader)
	k, v, ok := r.get(ikey)
	return k, v, ok, nil
}
