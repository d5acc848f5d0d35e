// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package manifest

import "github.com/cockroachdb/pebble-versionset/internal/base"

// SomeFileOverlapsRangeDisjoint reports whether any file in files (assumed
// pairwise disjoint and sorted by Smallest, i.e. a level >= 1) overlaps the
// user-key range [smallest, largest]. It probes FindFile with an internal
// key built from smallest at the maximum sequence number -- the "first
// internal key that could possibly belong to smallest" -- and then checks
// only whether the file FindFile lands on starts at or before largest; it
// doesn't need to also check the file doesn't end before smallest, because
// FindFile's postcondition already guarantees files[i].Largest >= key.
func SomeFileOverlapsRangeDisjoint(cmp base.InternalKeyCmp, files []*FileMetadata, smallest, largest []byte) bool {
	ikey := base.MakeInternalKey(smallest, base.InternalKeySeqNumMax, base.InternalKeyKindMax)
	i := FindFile(cmp, files, ikey)
	if i >= len(files) {
		return false
	}
	return !KeyIsBeforeFile(cmp.UserKeyCompare, largest, files[i])
}

// SomeFileOverlapsRange reports whether any file in files (a level 0,
// where ranges may overlap) overlaps the user-key range [smallest,
// largest]. Level 0 has no useful ordering to binary-search over, so this
// is a linear scan.
func SomeFileOverlapsRange(ucmp base.Compare, files []*FileMetadata, smallest, largest []byte) bool {
	for _, f := range files {
		if KeyIsAfterFile(ucmp, smallest, f) || KeyIsBeforeFile(ucmp, largest, f) {
			continue
		}
		return true
	}
	return false
}
