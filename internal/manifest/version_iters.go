// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package manifest

import "github.com/cockroachdb/errors"

// NewIters returns the set of iterators a merging scan needs to see every
// key in the Version: one iterator per level-0 file, since those may
// overlap and so can't be concatenated, followed by one concatenating
// levelIter per non-empty level >= 1, in ascending level order. The caller
// (an external merge iterator) is responsible for heap-merging these.
//
// Opening a level-0 file's table can fail even at this stage, since unlike
// levelIter's per-file opens, there's no lazy fallback: every level-0 file
// is a candidate from the start. Such a failure is returned to the caller
// rather than silently dropped, matching the iterator contract's
// distinction between an open-time error (surfaced) and an in-flight
// exhaustion (silent).
func (v *Version) NewIters() ([]InternalIterator, error) {
	iters := make([]InternalIterator, 0, len(v.files[0])+NumLevels-1)
	for _, f := range v.files[0] {
		h, err := v.cache.GetTable(f.FileNum)
		if err != nil {
			return nil, errors.Wrapf(err, "opening level-0 file %s", f.FileNum)
		}
		iters = append(iters, h)
	}
	for level := 1; level < NumLevels; level++ {
		if len(v.files[level]) == 0 {
			continue
		}
		iters = append(iters, newLevelIter(v.ikeyCmp, v.cache, v.files[level]))
	}
	return iters, nil
}
