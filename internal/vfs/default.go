// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package vfs

import (
	"io"
	"os"
	"path/filepath"
	"time"
)

type osFS struct{}

// Default is the os-backed Env used outside of tests.
var Default Env = osFS{}

func (osFS) Create(name string) (File, error) {
	return os.Create(name)
}

func (osFS) Open(name string) (File, error) {
	return os.Open(name)
}

func (osFS) OpenDir(name string) (File, error) {
	return os.Open(name)
}

func (osFS) Remove(name string) error {
	return os.Remove(name)
}

func (osFS) RemoveAll(name string) error {
	return os.RemoveAll(name)
}

func (osFS) Rename(oldname, newname string) error {
	return os.Rename(oldname, newname)
}

func (osFS) MkdirAll(dir string, perm os.FileMode) error {
	return os.MkdirAll(dir, perm)
}

func (osFS) List(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Readdirnames(-1)
}

func (osFS) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (osFS) PathBase(path string) string {
	return filepath.Base(path)
}

func (osFS) PathJoin(elems ...string) string {
	return filepath.Join(elems...)
}

func (osFS) PathDir(path string) string {
	return filepath.Dir(path)
}

func (osFS) NowMicros() int64 {
	return time.Now().UnixNano() / int64(time.Microsecond)
}

func (osFS) Sleep(d time.Duration) {
	time.Sleep(d)
}

// fileLock adapts a lock implementation (platform-specific, see
// lock_unix.go) to io.Closer.
type fileLock struct {
	f io.Closer
}

func (l fileLock) Close() error {
	return l.f.Close()
}
