// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cache

import (
	"encoding/binary"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble-versionset/internal/base"
	"github.com/cockroachdb/pebble-versionset/internal/manifest"
)

// This package's table format is a deliberately minimal stand-in for the
// block-and-bloom-filter format real sstables use -- building that reader
// and writer is explicitly out of scope for the version-set core (see
// spec section 1's "out of scope" list). What it needs to provide is just
// enough to let Version's Get and iterator plumbing be exercised against
// real files: a sorted run of (internal key, value) pairs, written once,
// read many times, with a checksum and a pluggable codec so the table
// cache has something concrete to decompress and verify.
//
// On disk: [compressed payload][8-byte xxhash64 of the compressed
// payload][1-byte codec][entry count varint]. The whole file is read in
// one shot by tableReader.load; an index-free single-block layout is
// acceptable at this scope because nothing here is optimizing for large
// files.

type entry struct {
	key   base.InternalKey
	value []byte
}

// Writer assembles one table's entries and flushes them to a vfs.File in
// sorted order. Entries must be added in ascending internal-key order,
// matching how a real sstable builder is driven by its caller.
type Writer struct {
	compression Compression
	entries     []entry
}

// NewWriter returns a Writer that will compress its payload with c.
func NewWriter(c Compression) *Writer {
	return &Writer{compression: c}
}

// Add appends an entry. The caller is responsible for ascending order.
func (w *Writer) Add(key base.InternalKey, value []byte) {
	// Copy, since callers are free to reuse their buffers afterward.
	k := base.InternalKey{UserKey: append([]byte(nil), key.UserKey...), Trailer: key.Trailer}
	v := append([]byte(nil), value...)
	w.entries = append(w.entries, entry{key: k, value: v})
}

// Finish serializes the accumulated entries and writes them to out, the
// caller-provided destination (typically a vfs.File). It returns the
// number of bytes written.
func (w *Writer) Finish(out writerSink) (uint64, error) {
	var payload []byte
	for _, e := range w.entries {
		var lenBuf [binary.MaxVarintLen64 * 3]byte
		n := binary.PutUvarint(lenBuf[:], uint64(len(e.key.UserKey)))
		n += binary.PutUvarint(lenBuf[n:], uint64(e.key.Trailer))
		n += binary.PutUvarint(lenBuf[n:], uint64(len(e.value)))
		payload = append(payload, lenBuf[:n]...)
		payload = append(payload, e.key.UserKey...)
		payload = append(payload, e.value...)
	}
	compressed, err := compress(w.compression, nil, payload)
	if err != nil {
		return 0, err
	}

	checksum := xxhash.Sum64(compressed)
	var footer [9]byte
	binary.LittleEndian.PutUint64(footer[:8], checksum)
	footer[8] = byte(w.compression)
	var countBuf [binary.MaxVarintLen64]byte
	cn := binary.PutUvarint(countBuf[:], uint64(len(w.entries)))

	buf := make([]byte, 0, len(compressed)+len(footer)+cn)
	buf = append(buf, compressed...)
	buf = append(buf, footer[:]...)
	buf = append(buf, countBuf[:cn]...)

	n, err := out.Write(buf)
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// writerSink is the minimal destination Finish needs; vfs.File satisfies
// it.
type writerSink interface {
	Write(p []byte) (int, error)
}

// tableReader is an opened, fully decoded table. Decoding the whole
// payload up front (rather than block-by-block) is the corner this format
// cuts relative to a real sstable reader; what remains -- checksum
// verification, codec dispatch, and a binary-searchable sorted entry list
// feeding the InternalIterator contract -- is the part this package
// exists to exercise.
type tableReader struct {
	cmp     base.InternalKeyCmp
	entries []entry

	pos int // -1 when unpositioned
}

func newTableReader(cmp base.InternalKeyCmp, raw []byte) (*tableReader, error) {
	if len(raw) < 10 {
		return nil, base.CorruptionErrorf("cache: table truncated (%d bytes)", len(raw))
	}
	// The count varint trails the fixed footer; its own length isn't
	// recorded, so walk backward from the end to find where it starts:
	// every byte of a varint but its last has the continuation bit set, and
	// the codec byte before it never does.
	start := len(raw) - 1
	for start > 0 && raw[start-1]&0x80 != 0 && len(raw)-start < binary.MaxVarintLen64 {
		start--
	}
	count, countLen := binary.Uvarint(raw[start:])
	if countLen != len(raw)-start {
		return nil, base.CorruptionErrorf("cache: table footer corrupt")
	}
	footerEnd := len(raw) - countLen
	if footerEnd < 9 {
		return nil, base.CorruptionErrorf("cache: table footer corrupt")
	}
	codec := Compression(raw[footerEnd-1])
	checksum := binary.LittleEndian.Uint64(raw[footerEnd-9 : footerEnd-1])
	compressed := raw[:footerEnd-9]

	if xxhash.Sum64(compressed) != checksum {
		return nil, base.CorruptionErrorf("cache: table checksum mismatch")
	}
	payload, err := decompress(codec, compressed)
	if err != nil {
		return nil, err
	}

	entries := make([]entry, 0, count)
	for off := 0; off < len(payload); {
		keyLen, n1 := binary.Uvarint(payload[off:])
		off += n1
		trailer, n2 := binary.Uvarint(payload[off:])
		off += n2
		valLen, n3 := binary.Uvarint(payload[off:])
		off += n3
		if off+int(keyLen)+int(valLen) > len(payload) {
			return nil, base.CorruptionErrorf("cache: table entry overruns payload")
		}
		userKey := payload[off : off+int(keyLen)]
		off += int(keyLen)
		value := payload[off : off+int(valLen)]
		off += int(valLen)
		entries = append(entries, entry{
			key:   base.InternalKey{UserKey: userKey, Trailer: base.InternalKeyTrailer(trailer)},
			value: value,
		})
	}
	if uint64(len(entries)) != count {
		return nil, base.CorruptionErrorf("cache: table entry count mismatch")
	}
	return &tableReader{cmp: cmp, entries: entries, pos: -1}, nil
}

var _ manifest.TableHandle = (*tableReader)(nil)

func (r *tableReader) Seek(key base.InternalKey) bool {
	i := sort.Search(len(r.entries), func(i int) bool {
		return r.cmp.Cmp(r.entries[i].key, key) >= 0
	})
	if i >= len(r.entries) {
		r.pos = len(r.entries)
		return false
	}
	r.pos = i
	return true
}

func (r *tableReader) Advance() bool {
	if r.pos < -1 || r.pos >= len(r.entries) {
		r.pos = len(r.entries)
		return false
	}
	r.pos++
	return r.pos < len(r.entries)
}

func (r *tableReader) Prev() bool {
	if r.pos <= 0 {
		r.pos = -1
		return false
	}
	r.pos--
	return true
}

func (r *tableReader) Reset() {
	r.pos = -1
}

func (r *tableReader) Valid() bool {
	return r.pos >= 0 && r.pos < len(r.entries)
}

func (r *tableReader) Current() (base.InternalKey, []byte, bool) {
	if !r.Valid() {
		return base.InternalKey{}, nil, false
	}
	e := r.entries[r.pos]
	return e.key, e.value, true
}

// get returns the first entry with an internal key >= ikey, mirroring the
// table cache's Get contract.
func (r *tableReader) get(ikey base.InternalKey) (base.InternalKey, []byte, bool) {
	i := sort.Search(len(r.entries), func(i int) bool {
		return r.cmp.Cmp(r.entries[i].key, ikey) >= 0
	})
	if i >= len(r.entries) {
		return base.InternalKey{}, nil, false
	}
	return r.entries[i].key, r.entries[i].value, true
}

var errEmptyTable = errors.New("cache: table has no entries")
