// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import "fmt"

// FileNum is a monotonically increasing identifier for on-disk tables.
type FileNum uint64

// String implements fmt.Stringer.
func (fn FileNum) String() string {
	return fmt.Sprintf("%06d", uint64(fn))
}
