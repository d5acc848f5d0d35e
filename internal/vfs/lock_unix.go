// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

//go:build unix

package vfs

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Lock acquires an exclusive, non-blocking advisory lock on name, creating
// it if necessary. It's used to guard a database directory against being
// opened by two processes at once; the version-set core never calls it
// directly, only a table cache's backing Env does.
func (osFS) Lock(name string) (io.Closer, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, err
	}
	return fileLock{f: f}, nil
}
