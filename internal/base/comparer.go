// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import "bytes"

// Compare returns -1, 0, or +1 depending on whether a is less than, equal
// to, or greater than b. A Compare function must be a total order over the
// user-key space and must not change behavior across the lifetime of a
// Version.
type Compare func(a, b []byte) int

// DefaultCompare is the default user-key comparator: plain byte-wise order.
func DefaultCompare(a, b []byte) int {
	return bytes.Compare(a, b)
}
