// Copyright © 2019 Microsoft <wastore@microsoft.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cloud

import (
	"bytes"
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3ContainerOptions configures NewS3Container.
type S3ContainerOptions struct {
	Endpoint        string // e.g. s3.amazonaws.com, or a MinIO host:port
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Insecure        bool // plain HTTP, for local MinIO instances
}

// s3Container adapts an S3 bucket. The low-level minio Core client is used
// for listing because it exposes the raw marker-paged GET Bucket call, and
// for GetObject; the regular client covers everything else.
type s3Container struct {
	client *minio.Client
	core   *minio.Core
	bucket string
	region string
}

var _ Container = (*s3Container)(nil)

func NewS3Container(bucket string, opts S3ContainerOptions) (Container, error) {
	core, err := minio.NewCore(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure: !opts.Insecure,
		Region: opts.Region,
	})
	if err != nil {
		return nil, err
	}
	return &s3Container{client: core.Client, core: core, bucket: bucket, region: opts.Region}, nil
}

// asS3ServiceError converts minio's typed error response into a ServiceError.
// Errors with no HTTP response (network failures and the like) pass through
// unchanged; those are not the retry wrapper's business.
func asS3ServiceError(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode == 0 {
		return err
	}
	return &ServiceError{StatusCode: resp.StatusCode, Reason: resp.Code, Body: resp.Message}
}

func (s *s3Container) Create(ctx context.Context) error {
	return asS3ServiceError(s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}))
}

func (s *s3Container) Delete(ctx context.Context) error {
	return asS3ServiceError(s.client.RemoveBucket(ctx, s.bucket))
}

func (s *s3Container) ListSomeObjects(ctx context.Context, prefix, marker string) (*ContainerListing, error) {
	result, err := s.core.ListObjects(s.bucket, prefix, marker, "", MaxKeysPerListing)
	if err != nil {
		return nil, asS3ServiceError(err)
	}

	contents := make([]ObjectEntry, len(result.Contents))
	for i, obj := range result.Contents {
		contents[i] = ObjectEntry{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified, ETag: obj.ETag}
	}
	return &ContainerListing{
		Name:        result.Name,
		Prefix:      prefix,
		Marker:      marker,
		MaxKeys:     MaxKeysPerListing,
		IsTruncated: result.IsTruncated,
		Contents:    contents,
	}, nil
}

func (s *s3Container) GetObject(ctx context.Context, key string) ([]byte, error) {
	body, _, _, err := s.core.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, asS3ServiceError(err)
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, asS3ServiceError(err)
	}
	return data, nil
}

func (s *s3Container) HeadObject(ctx context.Context, key string) (*ObjectMetadata, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, asS3ServiceError(err)
	}
	metadata := make(map[string]string, len(info.UserMetadata))
	for k, v := range info.UserMetadata {
		metadata[k] = v
	}
	return &ObjectMetadata{
		Size:         info.Size,
		LastModified: info.LastModified,
		ETag:         info.ETag,
		ContentType:  info.ContentType,
		Metadata:     metadata,
	}, nil
}

func (s *s3Container) PutObject(ctx context.Context, key string, data []byte, opts *PutOptions) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  opts.contentType(),
		UserMetadata: opts.metadata(),
	})
	return asS3ServiceError(err)
}

func (s *s3Container) DeleteObject(ctx context.Context, key string) error {
	return asS3ServiceError(s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}))
}
