// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

// LookupKey is the query carrier passed into a point lookup. It exposes
// both the user-key view needed for range-containment tests and the
// internal-key view needed to probe a table, without requiring the caller
// to re-derive one from the other at every call site.
type LookupKey struct {
	UserKey []byte
	Ikey    InternalKey
}

// MakeLookupKey builds a LookupKey for userKey as of seqNum. The internal
// key uses InternalKeyKindMax so that it sorts before any real entry for
// userKey at seqNum, which is what a "find the first entry >= ikey" probe
// requires to see entries written at exactly seqNum.
func MakeLookupKey(userKey []byte, seqNum uint64) LookupKey {
	return LookupKey{
		UserKey: userKey,
		Ikey:    MakeInternalKey(userKey, seqNum, InternalKeyKindMax),
	}
}
