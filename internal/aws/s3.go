// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrInvalidS3URL is returned for destinations that are not s3://bucket[/prefix].
var ErrInvalidS3URL = errors.New("invalid s3 url")

// PutObjectAPI is the slice of the S3 client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3v2.PutObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error)
}

// Location is a parsed s3://bucket/prefix destination.
type Location struct {
	Bucket string
	Prefix string
}

// ParseS3URL parses s3://bucket[/prefix]. The prefix never has leading or
// trailing slashes.
func ParseS3URL(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("%s: %w", raw, ErrInvalidS3URL)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return Location{}, fmt.Errorf("%s: %w", raw, ErrInvalidS3URL)
	}
	return Location{
		Bucket: u.Host,
		Prefix: strings.Trim(u.Path, "/"),
	}, nil
}

// Key is the object key for name under the location's prefix.
func (l Location) Key(name string) string {
	if l.Prefix == "" {
		return name
	}
	return path.Join(l.Prefix, name)
}

func (l Location) String() string {
	return "s3://" + l.Bucket + "/" + l.Prefix
}

// Upload writes data to loc under name and returns the object's s3:// URL.
func Upload(ctx context.Context, client PutObjectAPI, loc Location, name, contentType string, data []byte) (string, error) {
	key := loc.Key(name)
	in := &s3v2.PutObjectInput{
		Bucket:        awsv2.String(loc.Bucket),
		Key:           awsv2.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: awsv2.Int64(int64(len(data))),
	}
	if contentType != "" {
		in.ContentType = awsv2.String(contentType)
	}

	if _, err := client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("failed to upload %s to bucket %s: %w", key, loc.Bucket, err)
	}

	dest := "s3://" + loc.Bucket + "/" + key
	log.Debugf("uploaded %d bytes to %s", len(data), dest)
	return dest, nil
}
