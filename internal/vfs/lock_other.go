// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

//go:build !unix

package vfs

import (
	"io"
	"os"
)

// Lock provides a best-effort, non-advisory lock on platforms without
// flock: create-exclusive semantics via O_EXCL. None of this package's
// dependencies ship a cross-platform advisory lock, so this falls back to
// the standard library rather than reaching for one outside the stack.
func (osFS) Lock(name string) (io.Closer, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, err
	}
	return fileLock{f: f}, nil
}
