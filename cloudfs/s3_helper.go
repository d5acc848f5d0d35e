// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cloudfs

import (
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/cockroachdb/pebble-versionset/internal/vfs"
)

// s3Helper does the actual S3 calls on behalf of FS and cloudFile.
type s3Helper struct {
	bucket     string
	filePrefix string
	uploader   *s3manager.Uploader
	client     *s3.S3
}

func newS3Helper(sess *session.Session, opts Options) (*s3Helper, error) {
	return &s3Helper{
		bucket:     opts.Bucket,
		filePrefix: opts.BasePath,
		uploader:   s3manager.NewUploader(sess),
		client:     s3.New(sess),
	}, nil
}

func (s *s3Helper) key(name string) string {
	if s.filePrefix == "" {
		return name
	}
	return s.filePrefix + "/" + name
}

func (s *s3Helper) uploadFile(f vfs.File, name string) error {
	// Read from offset 0: after writing, the file's own offset is at its end.
	info, err := f.Stat()
	if err != nil {
		return err
	}
	_, err = s.uploader.Upload(&s3manager.UploadInput{
		Body:   io.NewSectionReader(f, 0, info.Size()),
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	return err
}

func (s *s3Helper) deleteObject(name string) error {
	_, err := s.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	return err
}
