// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"encoding/binary"
	"fmt"
)

// InternalKeyKind enumerates the kind of a single internal key. Only the
// handful of kinds that matter to ordering and to the point-lookup path are
// represented here; table readers are free to define more.
type InternalKeyKind uint8

// The ordering of these constants matters: when two internal keys share a
// user key and a sequence number, ties are broken by kind, descending.
const (
	InternalKeyKindDelete InternalKeyKind = 0
	InternalKeyKindSet    InternalKeyKind = 1
	InternalKeyKindMerge  InternalKeyKind = 2
	InternalKeyKindMax    InternalKeyKind = 1<<8 - 1
	// InternalKeyKindInvalid marks a kind that cannot be decoded; it shares
	// its value with InternalKeyKindMax. DecodeInternalKey does not produce
	// it: a buffer shorter than the trailer decodes to the zero InternalKey.
	InternalKeyKindInvalid InternalKeyKind = InternalKeyKindMax
)

// InternalKeySeqNumMax is the largest valid sequence number: 2^56 - 1. The
// top byte of the trailer is reserved for the kind.
const InternalKeySeqNumMax = uint64(1)<<56 - 1

// InternalKeyTrailer packs a 56-bit sequence number and an 8-bit kind into a
// single little-endian uint64, stored as the last 8 bytes of an internal
// key. Sequence occupies the high 56 bits, kind the low 8 bits, so that an
// unsigned numeric compare of two trailers orders by sequence descending
// and, for equal sequences, by kind descending -- exactly the tie-break the
// comparator needs.
type InternalKeyTrailer uint64

// MakeTrailer packs seqNum and kind into a trailer.
func MakeTrailer(seqNum uint64, kind InternalKeyKind) InternalKeyTrailer {
	return InternalKeyTrailer(seqNum&InternalKeySeqNumMax)<<8 | InternalKeyTrailer(kind)
}

// SeqNum returns the sequence number packed into the trailer.
func (t InternalKeyTrailer) SeqNum() uint64 {
	return uint64(t>>8) & InternalKeySeqNumMax
}

// Kind returns the kind packed into the trailer.
func (t InternalKeyTrailer) Kind() InternalKeyKind {
	return InternalKeyKind(t)
}

// InternalKey is a user key extended with a trailer encoding a sequence
// number and a kind. InternalKeys sort by user key ascending, then by
// trailer descending (newer sequence numbers, and among those higher
// kinds, sort first).
type InternalKey struct {
	UserKey []byte
	Trailer InternalKeyTrailer
}

// MakeInternalKey builds an InternalKey from its parts.
func MakeInternalKey(userKey []byte, seqNum uint64, kind InternalKeyKind) InternalKey {
	return InternalKey{UserKey: userKey, Trailer: MakeTrailer(seqNum, kind)}
}

// SeqNum returns the key's sequence number.
func (k InternalKey) SeqNum() uint64 {
	return k.Trailer.SeqNum()
}

// Kind returns the key's kind.
func (k InternalKey) Kind() InternalKeyKind {
	return k.Trailer.Kind()
}

// Empty returns true for the zero InternalKey.
func (k InternalKey) Empty() bool {
	return len(k.UserKey) == 0 && k.Trailer == 0
}

// String implements fmt.Stringer, primarily for test diagnostics.
func (k InternalKey) String() string {
	return fmt.Sprintf("%s#%d,%d", k.UserKey, k.SeqNum(), k.Kind())
}

// Encode appends the 8-byte trailer to userKey and returns the combined
// on-disk representation of an internal key.
func Encode(userKey []byte, seqNum uint64, kind InternalKeyKind) []byte {
	buf := make([]byte, len(userKey)+8)
	n := copy(buf, userKey)
	binary.LittleEndian.PutUint64(buf[n:], uint64(MakeTrailer(seqNum, kind)))
	return buf
}

// DecodeInternalKey decodes the on-disk encoding produced by Encode (or a
// table's key column) back into an InternalKey. This is the Go analogue of
// the reference system's parse_internal_key: per the contract, a buffer
// shorter than the 8-byte trailer is not an error -- it yields a zeroed
// trailer and an empty user key so that callers can treat the result as an
// unconditionally "smallest possible" key rather than propagating a panic
// into a hot read path.
func DecodeInternalKey(buf []byte) InternalKey {
	if len(buf) < 8 {
		return InternalKey{}
	}
	n := len(buf) - 8
	return InternalKey{
		UserKey: buf[:n:n],
		Trailer: InternalKeyTrailer(binary.LittleEndian.Uint64(buf[n:])),
	}
}

// InternalCompare orders two internal keys: user key ascending per ucmp,
// then trailer descending as an unsigned 64-bit compare (sequence number
// descending, ties broken by kind descending).
func InternalCompare(ucmp Compare, a, b InternalKey) int {
	if c := ucmp(a.UserKey, b.UserKey); c != 0 {
		return c
	}
	switch {
	case a.Trailer > b.Trailer:
		return -1
	case a.Trailer < b.Trailer:
		return +1
	default:
		return 0
	}
}

// InternalKeyCmp bundles the derived internal-key ordering together with
// the plain user-key comparator it was built from, so that call sites
// needing only user-key comparisons (range containment, file overlap
// predicates) don't have to reconstruct it.
type InternalKeyCmp struct {
	// Cmp orders two internal keys.
	Cmp func(a, b InternalKey) int
	// UserKeyCompare is the user comparator this InternalKeyCmp was derived
	// from.
	UserKeyCompare Compare
}

// MakeInternalKeyCmp derives an InternalKeyCmp from a user comparator.
func MakeInternalKeyCmp(ucmp Compare) InternalKeyCmp {
	return InternalKeyCmp{
		Cmp: func(a, b InternalKey) int {
			return InternalCompare(ucmp, a, b)
		},
		UserKeyCompare: ucmp,
	}
}
