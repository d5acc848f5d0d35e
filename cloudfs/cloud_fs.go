// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package cloudfs wraps a vfs.FS so that table and manifest files are
// mirrored to S3 as they're written, the way a deployment that wants
// durability independent of local disk would configure its table cache's
// backing environment. None of this is reachable from the version-set
// core itself -- Version only ever sees the TableCache interface -- but it
// gives the table cache a production-shaped Env to sit on top of.
package cloudfs

import (
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/cockroachdb/pebble-versionset/internal/vfs"
)

// Options configures a cloud-backed FS.
type Options struct {
	// Bucket is the S3 bucket files are mirrored to.
	Bucket string
	// BasePath prefixes every object key written to Bucket.
	BasePath string
	// Region is the AWS region the bucket lives in.
	Region string
}

// FS wraps a local vfs.FS, mirroring every Create'd file to S3 on Close
// and Sync, and deleting the mirrored object when the local file is
// removed. Files named *.log or *.dbtmp are neither mirrored nor deleted
// from S3.
type FS struct {
	base     vfs.FS
	opts     Options
	s3Client *s3.S3
	helper   *s3Helper
}

// New wraps base, mirroring writes under opts to S3.
func New(base vfs.FS, opts Options) (*FS, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(opts.Region)})
	if err != nil {
		return nil, err
	}
	helper, err := newS3Helper(sess, opts)
	if err != nil {
		return nil, err
	}
	return &FS{
		base:     base,
		opts:     opts,
		s3Client: s3.New(sess),
		helper:   helper,
	}, nil
}

func skipUpload(name string) bool {
	return strings.HasSuffix(name, ".log") || strings.HasSuffix(name, ".dbtmp")
}

func (c *FS) Create(name string) (vfs.File, error) {
	f, err := c.base.Create(name)
	if err != nil {
		return nil, err
	}
	return newCloudFile(f, name, c.helper), nil
}

func (c *FS) Open(name string) (vfs.File, error) {
	return c.base.Open(name)
}

func (c *FS) OpenDir(name string) (vfs.File, error) {
	return c.base.OpenDir(name)
}

func (c *FS) Remove(name string) error {
	if !skipUpload(name) {
		_ = c.helper.deleteObject(name)
	}
	return c.base.Remove(name)
}

func (c *FS) RemoveAll(name string) error {
	return c.base.RemoveAll(name)
}

func (c *FS) Rename(oldname, newname string) error {
	return c.base.Rename(oldname, newname)
}

func (c *FS) MkdirAll(dir string, perm os.FileMode) error {
	return c.base.MkdirAll(dir, perm)
}

func (c *FS) Lock(name string) (io.Closer, error) {
	return c.base.Lock(name)
}

func (c *FS) List(dir string) ([]string, error) {
	return c.base.List(dir)
}

func (c *FS) Stat(name string) (os.FileInfo, error) {
	return c.base.Stat(name)
}

func (c *FS) PathBase(path string) string {
	return c.base.PathBase(path)
}

func (c *FS) PathJoin(elems ...string) string {
	return c.base.PathJoin(elems...)
}

func (c *FS) PathDir(path string) string {
	return c.base.PathDir(path)
}

var _ vfs.FS = (*FS)(nil)
