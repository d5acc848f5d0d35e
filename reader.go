// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package versionset wires the Version core (internal/manifest) to a
// concrete table cache (internal/cache) and a metrics collector
// (internal/metrics), the way a full storage engine's read path would.
// Everything the spec calls out as external to the core -- the table
// cache, the environment, the comparator -- is a collaborator this package
// assembles rather than something the core package builds itself.
package versionset

import (
	"time"

	"github.com/cockroachdb/pebble-versionset/internal/base"
	"github.com/cockroachdb/pebble-versionset/internal/cache"
	"github.com/cockroachdb/pebble-versionset/internal/manifest"
	"github.com/cockroachdb/pebble-versionset/internal/metrics"
	"github.com/cockroachdb/pebble-versionset/internal/vfs"
)

// Reader is a read-only handle onto one Version, instrumented with
// metrics. It is the thing a read path actually holds; Version itself
// stays a plain data structure so that internal/manifest has no
// dependency on internal/metrics.
type Reader struct {
	version *manifest.Version
	metrics *metrics.Collector
}

// Open builds a TableCache rooted at dir, constructs a Version from files,
// and returns a Reader over it.
func Open(
	fs vfs.FS, dir string, ucmp base.Compare, cacheCapacity int,
	files [manifest.NumLevels][]*manifest.FileMetadata,
) (*Reader, error) {
	m := metrics.NewCollector(nil)
	tc := cache.NewTableCache(fs, dir, ucmp, cacheCapacity, m)
	v, err := manifest.NewVersion(ucmp, tc, files)
	if err != nil {
		return nil, err
	}
	return &Reader{version: v, metrics: m}, nil
}

// NewReader wraps an already-constructed Version, for callers (tests,
// compaction planners) that build their own table cache or an in-memory
// fake of one.
func NewReader(v *manifest.Version, m *metrics.Collector) *Reader {
	return &Reader{version: v, metrics: m}
}

// Version returns the underlying snapshot, for callers that need the raw
// overlap/iterator surface rather than the instrumented Get.
func (r *Reader) Version() *manifest.Version {
	return r.version
}

// Get performs a point lookup, charging the wasted-seek file (if any) via
// UpdateStats and recording the outcome in metrics. When the lookup
// consulted more than one file, the elapsed time of the whole call is
// recorded as a seek latency sample -- the cost a wasted seek actually
// imposed, not just the fact that one was charged.
func (r *Reader) Get(userKey []byte, seqNum uint64) ([]byte, bool, error) {
	start := time.Now()
	key := base.MakeLookupKey(userKey, seqNum)
	value, stats, found, err := r.version.Get(key)
	if err != nil {
		return nil, false, err
	}
	if stats.File != nil {
		r.metrics.RecordSeekLatencyMicros(time.Since(start).Microseconds())
		if r.version.UpdateStats(stats) {
			r.metrics.RecordFileNominated()
		}
	}
	return value, found, nil
}

// GetValue wraps Get in the single-error-return idiom the teacher
// lineage's own DB.Get uses: a miss is reported as base.ErrNotFound
// rather than a second return value, for callers that want to propagate
// a lookup miss through an ordinary error chain (errors.Is(err,
// base.ErrNotFound)) instead of branching on a bool.
func (r *Reader) GetValue(userKey []byte, seqNum uint64) ([]byte, error) {
	value, found, err := r.Get(userKey, seqNum)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, base.ErrNotFound
	}
	return value, nil
}

// RecordReadSample forwards to the Version, tracking whether it resulted
// in a fresh compaction nomination.
func (r *Reader) RecordReadSample(userKey []byte, seqNum uint64) bool {
	nominated := r.version.RecordReadSample(base.MakeLookupKey(userKey, seqNum))
	if nominated {
		r.metrics.RecordFileNominated()
	}
	return nominated
}

// Metrics returns a point-in-time snapshot of this Reader's counters.
func (r *Reader) Metrics() metrics.Snapshot {
	return r.metrics.Snapshot()
}
