// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package manifest

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble-versionset/internal/base"
)

// NumLevels is the fixed number of levels a Version tracks. It is part of
// the system's compile-time configuration, not something a Version
// negotiates at construction time.
const NumLevels = 7

// ReadSampleStats records the "wasted seek" a Get or RecordReadSample
// attributes to a single file: the earliest file that was consulted and
// came up empty even though its range contained the queried key. It is the
// unit of work UpdateStats consumes to decide whether to nominate a file
// for compaction.
type ReadSampleStats struct {
	File  *FileMetadata
	Level int
}

// Version is an immutable snapshot of the on-disk level layout, save for
// two fields -- the per-file seek budget and the single compaction
// nomination -- which mutate in place under the rules of I4 and I5. All
// other state is fixed at construction and safe to read from multiple
// goroutines without synchronization.
type Version struct {
	files [NumLevels][]*FileMetadata

	cache   TableCache
	ucmp    base.Compare
	ikeyCmp base.InternalKeyCmp

	mu                 sync.Mutex
	fileToCompact      *FileMetadata
	fileToCompactLevel int
}

// NewVersion constructs a Version from a fully populated per-level file
// layout. It validates invariants I1-I3 eagerly: this package treats a
// Version as constructed-fully-populated, so catching a violation here
// beats discovering it mid-lookup.
func NewVersion(ucmp base.Compare, cache TableCache, files [NumLevels][]*FileMetadata) (*Version, error) {
	v := &Version{
		files:   files,
		cache:   cache,
		ucmp:    ucmp,
		ikeyCmp: base.MakeInternalKeyCmp(ucmp),
	}
	if err := v.checkOrdering(); err != nil {
		return nil, err
	}
	return v, nil
}

// checkOrdering verifies I1 (endpoint consistency) for every file and, for
// level >= 1, I2 (disjointness) and I3 (ascending order by Smallest).
// Level 0 has no ordering requirement among its files.
func (v *Version) checkOrdering() error {
	for level, files := range v.files {
		var prevLargest base.InternalKey
		for i, f := range files {
			if v.ikeyCmp.Cmp(f.Smallest, f.Largest) > 0 {
				return errors.Newf("manifest: level %d file %s has inverted bounds %s > %s",
					level, f.FileNum, f.Smallest, f.Largest)
			}
			if level == 0 {
				continue
			}
			if i != 0 && v.ikeyCmp.Cmp(prevLargest, f.Smallest) >= 0 {
				return errors.Newf("manifest: level %d files are not disjoint and ascending: %s >= %s",
					level, prevLargest, f.Smallest)
			}
			prevLargest = f.Largest
		}
	}
	return nil
}

// String renders the level layout as "<level>: <smallest>-<largest> ...",
// one line per non-empty level, for test and debug output.
func (v *Version) String() string {
	var buf bytes.Buffer
	for level := 0; level < NumLevels; level++ {
		if len(v.files[level]) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "%d:", level)
		for _, f := range v.files[level] {
			fmt.Fprintf(&buf, " %s-%s", f.Smallest.UserKey, f.Largest.UserKey)
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}

// Files returns the file list for level, for callers (compaction planners,
// tests) that need direct read access to the layout.
func (v *Version) Files(level int) []*FileMetadata {
	return v.files[level]
}

// FileToCompact returns the file most recently nominated by a seek-charge
// overflow, if any, and the level it lives in.
func (v *Version) FileToCompact() (*FileMetadata, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fileToCompact, v.fileToCompactLevel
}

// containingFiles returns the files at level whose user-key range contains
// ukey. At level 0, the result is sorted descending by FileNum (newest
// first); at level >= 1 there is at most one result, found by binary
// search.
func (v *Version) containingFiles(level int, ukey []byte) []*FileMetadata {
	files := v.files[level]
	if level == 0 {
		var out []*FileMetadata
		for _, f := range files {
			if v.ucmp(ukey, f.Smallest.UserKey) >= 0 && v.ucmp(ukey, f.Largest.UserKey) <= 0 {
				out = append(out, f)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].FileNum > out[j].FileNum })
		return out
	}
	ikey := base.MakeInternalKey(ukey, base.InternalKeySeqNumMax, base.InternalKeyKindMax)
	i := FindFile(v.ikeyCmp, files, ikey)
	if i >= len(files) {
		return nil
	}
	if v.ucmp(ukey, files[i].Smallest.UserKey) >= 0 {
		return files[i : i+1 : i+1]
	}
	return nil
}

// GetOverlapping returns, for every level, the files whose range contains
// key.UserKey: every matching level-0 file (descending by FileNum), and at
// most one matching file at each level >= 1 (levels are disjoint).
func (v *Version) GetOverlapping(key base.LookupKey) [NumLevels][]*FileMetadata {
	var out [NumLevels][]*FileMetadata
	for level := 0; level < NumLevels; level++ {
		out[level] = v.containingFiles(level, key.UserKey)
	}
	return out
}

// Get performs a point lookup for key, consulting the table cache level by
// level, top-down, and within level 0 newest-file-first. It returns the
// value on a hit, and in all cases returns ReadSampleStats describing the
// first "wasted" probe -- a file whose range contained the key but which
// turned out not to hold it -- for the caller to feed to UpdateStats.
//
// The wasted-seek charge is attributed to the first file probed, and only
// once a second file has to be consulted; when the first probe satisfies
// the lookup, or it is the only candidate, nothing is charged. The charge
// never goes to the file that satisfies or exhausts the search (unless
// that is also the first file probed). This is deliberate: the
// charged file is the one whose presence forced an extra table
// consultation, and it is the one compaction should be biased to collapse.
func (v *Version) Get(key base.LookupKey) ([]byte, ReadSampleStats, bool, error) {
	levels := v.GetOverlapping(key)

	var stats ReadSampleStats
	var lastRead *FileMetadata
	lastReadLevel := -1

	for level := 0; level < NumLevels; level++ {
		for _, f := range levels[level] {
			if lastRead != nil && stats.File == nil {
				stats.File = lastRead
				stats.Level = lastReadLevel
			}
			lastRead = f
			lastReadLevel = level

			ikey, value, ok, err := v.cache.Get(f.FileNum, key.Ikey)
			if err != nil {
				if base.IsCorruptionError(err) {
					continue
				}
				return nil, stats, false, err
			}
			if !ok {
				continue
			}
			if v.ucmp(ikey.UserKey, key.UserKey) == 0 {
				return value, stats, true, nil
			}
		}
	}
	return nil, stats, false, nil
}

// OverlapInLevel reports whether any file at level overlaps the user-key
// range [smallest, largest].
func (v *Version) OverlapInLevel(level int, smallest, largest []byte) bool {
	if level == 0 {
		return SomeFileOverlapsRange(v.ucmp, v.files[0], smallest, largest)
	}
	return SomeFileOverlapsRangeDisjoint(v.ikeyCmp, v.files[level], smallest, largest)
}

// OverlappingInputs returns every file at level whose user-key range
// intersects [begin, end]. An empty begin or end disables that bound. At
// level 0 the range is expanded iteratively to the union of every
// overlapping file found so far, since level-0 files may themselves
// overlap files outside the original range; levels >= 1 are disjoint and
// need only a single binary-searched pass.
func (v *Version) OverlappingInputs(level int, begin, end []byte) []*FileMetadata {
	if level == 0 {
		return v.overlappingInputsL0(begin, end)
	}

	files := v.files[level]
	beginSet := len(begin) != 0
	endSet := len(end) != 0

	lower := sort.Search(len(files), func(i int) bool {
		return !beginSet || v.ucmp(files[i].Largest.UserKey, begin) >= 0
	})
	upper := sort.Search(len(files), func(i int) bool {
		return endSet && v.ucmp(files[i].Smallest.UserKey, end) > 0
	})
	if lower >= upper {
		return nil
	}
	out := make([]*FileMetadata, upper-lower)
	copy(out, files[lower:upper])
	return out
}

func (v *Version) overlappingInputsL0(begin, end []byte) []*FileMetadata {
	files := v.files[0]
	beginSet := len(begin) != 0
	endSet := len(end) != 0

restart:
	for {
		var result []*FileMetadata
		for _, f := range files {
			fsmall, flarge := f.Smallest.UserKey, f.Largest.UserKey
			if beginSet && v.ucmp(flarge, begin) < 0 {
				continue
			}
			if endSet && v.ucmp(fsmall, end) > 0 {
				continue
			}
			result = append(result, f)

			widened := false
			if beginSet && v.ucmp(fsmall, begin) < 0 {
				begin = fsmall
				widened = true
			}
			if endSet && v.ucmp(flarge, end) > 0 {
				end = flarge
				widened = true
			}
			if widened {
				continue restart
			}
		}
		return result
	}
}

// RecordReadSample counts the files across all levels whose range contains
// key.UserKey. If more than one file was touched, the first file in the
// first non-empty level is charged a seek via UpdateStats -- the
// cooperative, statistical analogue of the wasted-seek charge Get computes
// directly, used by read paths that don't want to pay for a full Get just
// to drive compaction heuristics. It returns true iff this charge is what
// newly nominated a file for compaction.
func (v *Version) RecordReadSample(key base.LookupKey) bool {
	var stats ReadSampleStats
	matches := 0
	for level := 0; level < NumLevels; level++ {
		files := v.containingFiles(level, key.UserKey)
		if len(files) == 0 {
			continue
		}
		if stats.File == nil {
			stats.File = files[0]
			stats.Level = level
		}
		matches += len(files)
		if matches > 1 {
			break
		}
	}
	if matches <= 1 {
		return false
	}
	return v.UpdateStats(stats)
}

// UpdateStats charges stats.File one seek. If the file's remaining budget
// drops below one and no file is currently nominated, stats.File becomes
// the Version's FileToCompact and UpdateStats returns true. The
// compare-and-nominate step is serialized by v.mu so that two concurrent
// callers charging the same exhausted file can't both believe they won the
// nomination (I5).
func (v *Version) UpdateStats(stats ReadSampleStats) bool {
	if stats.File == nil {
		return false
	}
	if stats.File.chargeSeek() >= 1 {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.fileToCompact != nil {
		return false
	}
	v.fileToCompact = stats.File
	v.fileToCompactLevel = stats.Level
	return true
}
