// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package manifest

import (
	"sort"

	"github.com/cockroachdb/pebble-versionset/internal/base"
)

// FindFile returns the least index i such that files[i].Largest >= key,
// under the internal-key comparator, or len(files) if no such file exists.
// files must be disjoint and ordered by Largest ascending, which holds for
// any level >= 1 per invariant I3. This is the classical lower-bound binary
// search over a half-open [lo, hi) window; sort.Search is used rather than
// a hand-rolled loop because that's the idiom the rest of this codebase's
// lineage (including its own predecessor, version.go's overlaps method)
// already reaches for.
func FindFile(cmp base.InternalKeyCmp, files []*FileMetadata, key base.InternalKey) int {
	return sort.Search(len(files), func(i int) bool {
		return cmp.Cmp(files[i].Largest, key) >= 0
	})
}

// KeyIsBeforeFile reports whether ukey is non-empty and strictly less than
// the user-key projection of f.Smallest. An empty ukey is treated as
// open-ended: it is never before any file.
func KeyIsBeforeFile(ucmp base.Compare, ukey []byte, f *FileMetadata) bool {
	return len(ukey) > 0 && ucmp(ukey, f.Smallest.UserKey) < 0
}

// KeyIsAfterFile reports whether ukey is non-empty and strictly greater
// than the user-key projection of f.Largest. An empty ukey is treated as
// open-ended: it is never after any file.
func KeyIsAfterFile(ucmp base.Compare, ukey []byte, f *FileMetadata) bool {
	return len(ukey) > 0 && ucmp(ukey, f.Largest.UserKey) > 0
}
