// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cache

import (
	"github.com/DataDog/zstd"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble-versionset/internal/base"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/s2"
)

// Compression identifies the codec a table's single data block was written
// with. It's stored in the table footer so a reader opened long after the
// writer doesn't need to be told out of band.
type Compression uint8

const (
	NoCompression Compression = iota
	SnappyCompression
	ZstdCompression
	// S2Compression selects klauspost/compress's snappy-compatible, faster
	// S2 format -- an alternative to SnappyCompression for callers willing
	// to trade the reference snappy implementation for better throughput.
	S2Compression
)

// compress encodes src with c, appending to (and returning) dst.
func compress(c Compression, dst, src []byte) ([]byte, error) {
	switch c {
	case NoCompression:
		return append(dst, src...), nil
	case SnappyCompression:
		return snappy.Encode(nil, src), nil
	case ZstdCompression:
		out, err := zstd.Compress(nil, src)
		if err != nil {
			return nil, errors.Wrap(err, "cache: zstd compress")
		}
		return out, nil
	case S2Compression:
		return s2.Encode(nil, src), nil
	default:
		return nil, errors.Newf("cache: unknown compression codec %d", c)
	}
}

// decompress is the inverse of compress.
func decompress(c Compression, src []byte) ([]byte, error) {
	switch c {
	case NoCompression:
		return src, nil
	case SnappyCompression:
		out, err := snappy.Decode(nil, src)
		if err != nil {
			return nil, base.MarkCorruptionError(err)
		}
		return out, nil
	case ZstdCompression:
		out, err := zstd.Decompress(nil, src)
		if err != nil {
			return nil, base.MarkCorruptionError(err)
		}
		return out, nil
	case S2Compression:
		out, err := s2.Decode(nil, src)
		if err != nil {
			return nil, base.MarkCorruptionError(err)
		}
		return out, nil
	default:
		return nil, errors.Newf("cache: unknown compression codec %d", c)
	}
}
