// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package vfs defines the environment abstraction the version-set core
// consumes only indirectly, through the table cache: file open and random
// read operations, a monotonic clock, and a sleep primitive, all behind a
// uniform error type. The core itself never imports this package.
package vfs

import (
	"io"
	"os"
	"time"
)

// File is the subset of os.File behavior the table cache needs to read a
// table and, on the write side, to let the version-edit subsystem persist
// one: a table is read sequentially and by offset, and occasionally synced
// to disk.
type File interface {
	io.Reader
	io.ReaderAt
	io.Writer
	io.Closer
	Stat() (os.FileInfo, error)
	Sync() error
}

// FS is the filesystem environment. Default is an os-backed FS, used by
// the tests and by cmd/vsdump alike; a cloud-backed FS can wrap it to
// mirror writes to object storage.
type FS interface {
	Create(name string) (File, error)
	Open(name string) (File, error)
	OpenDir(name string) (File, error)
	Remove(name string) error
	RemoveAll(name string) error
	Rename(oldname, newname string) error
	MkdirAll(dir string, perm os.FileMode) error
	Lock(name string) (io.Closer, error)
	List(dir string) ([]string, error)
	Stat(name string) (os.FileInfo, error)
	PathBase(path string) string
	PathJoin(elems ...string) string
	PathDir(path string) string
}

// Clock is the monotonic microsecond clock the environment exposes; the
// core never calls it directly, but a table cache's read-sampling plumbing
// may use it to time probes.
type Clock interface {
	NowMicros() int64
}

// Sleeper exposes the environment's sleep primitive as a substitutable
// method rather than a direct time.Sleep call. The table cache has no
// retry or backoff logic and does not call it.
type Sleeper interface {
	Sleep(d time.Duration)
}

// Env bundles the filesystem, clock, and sleep primitives consumed,
// indirectly, by the core.
type Env interface {
	FS
	Clock
	Sleeper
}
