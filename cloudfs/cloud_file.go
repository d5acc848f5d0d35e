// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cloudfs

import (
	"os"

	"github.com/cockroachdb/pebble-versionset/internal/vfs"
)

// cloudFile wraps a local vfs.File, mirroring its contents to S3 whenever
// it's synced or closed.
type cloudFile struct {
	file   vfs.File
	name   string
	helper *s3Helper
}

func newCloudFile(base vfs.File, name string, helper *s3Helper) *cloudFile {
	return &cloudFile{file: base, name: name, helper: helper}
}

func (c *cloudFile) Close() error {
	uploadErr := c.uploadIfDue()
	if err := c.file.Close(); err != nil {
		return err
	}
	return uploadErr
}

func (c *cloudFile) uploadIfDue() error {
	if skipUpload(c.name) {
		return nil
	}
	return c.helper.uploadFile(c.file, c.name)
}

func (c *cloudFile) Read(p []byte) (int, error) {
	return c.file.Read(p)
}

func (c *cloudFile) ReadAt(p []byte, off int64) (int, error) {
	return c.file.ReadAt(p, off)
}

func (c *cloudFile) Write(p []byte) (int, error) {
	return c.file.Write(p)
}

func (c *cloudFile) Stat() (os.FileInfo, error) {
	return c.file.Stat()
}

func (c *cloudFile) Sync() error {
	if err := c.file.Sync(); err != nil {
		return err
	}
	return c.uploadIfDue()
}

var _ vfs.File = (*cloudFile)(nil)
