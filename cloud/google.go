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
	"context"
	"io"

	gcs "cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

// GoogleContainerOptions configures NewGoogleContainer. Credentials come
// from the environment (GOOGLE_APPLICATION_CREDENTIALS), which is the SDK's
// own convention.
type GoogleContainerOptions struct {
	ProjectID string // required only for Create
}

type googleContainer struct {
	client    *gcs.Client
	bucket    string
	projectID string
}

var _ Container = (*googleContainer)(nil)

func NewGoogleContainer(ctx context.Context, bucket string, opts GoogleContainerOptions) (Container, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &googleContainer{client: client, bucket: bucket, projectID: opts.ProjectID}, nil
}

func asGoogleServiceError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gcs.ErrObjectNotExist) || errors.Is(err, gcs.ErrBucketNotExist) {
		return &ServiceError{StatusCode: 404, Reason: "NotFound"}
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return &ServiceError{StatusCode: gErr.Code, Reason: gErr.Message, Body: gErr.Body}
	}
	return err
}

func (g *googleContainer) Create(ctx context.Context) error {
	return asGoogleServiceError(g.client.Bucket(g.bucket).Create(ctx, g.projectID, nil))
}

func (g *googleContainer) Delete(ctx context.Context) error {
	return asGoogleServiceError(g.client.Bucket(g.bucket).Delete(ctx))
}

func (g *googleContainer) ListSomeObjects(ctx context.Context, prefix, marker string) (*ContainerListing, error) {
	// GCS has no exclusive marker parameter; StartOffset is inclusive, so we
	// start at the marker and drop it if the service hands it back.
	query := &gcs.Query{Prefix: prefix}
	if marker != "" {
		query.StartOffset = marker
	}
	it := g.client.Bucket(g.bucket).Objects(ctx, query)

	contents := make([]ObjectEntry, 0, MaxKeysPerListing)
	truncated := false
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, asGoogleServiceError(err)
		}
		if attrs.Name == marker {
			continue
		}
		if len(contents) == MaxKeysPerListing {
			truncated = true
			break
		}
		contents = append(contents, ObjectEntry{
			Key:          attrs.Name,
			Size:         attrs.Size,
			LastModified: attrs.Updated,
			ETag:         attrs.Etag,
		})
	}

	return &ContainerListing{
		Name:        g.bucket,
		Prefix:      prefix,
		Marker:      marker,
		MaxKeys:     MaxKeysPerListing,
		IsTruncated: truncated,
		Contents:    contents,
	}, nil
}

func (g *googleContainer) GetObject(ctx context.Context, key string) ([]byte, error) {
	r, err := g.client.Bucket(g.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, asGoogleServiceError(err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, asGoogleServiceError(err)
	}
	return data, nil
}

func (g *googleContainer) HeadObject(ctx context.Context, key string) (*ObjectMetadata, error) {
	attrs, err := g.client.Bucket(g.bucket).Object(key).Attrs(ctx)
	if err != nil {
		return nil, asGoogleServiceError(err)
	}
	return &ObjectMetadata{
		Size:         attrs.Size,
		LastModified: attrs.Updated,
		ETag:         attrs.Etag,
		ContentType:  attrs.ContentType,
		Metadata:     attrs.Metadata,
	}, nil
}

func (g *googleContainer) PutObject(ctx context.Context, key string, data []byte, opts *PutOptions) error {
	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	w.ContentType = opts.contentType()
	w.Metadata = opts.metadata()
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return asGoogleServiceError(err)
	}
	// upload errors surface at Close
	return asGoogleServiceError(w.Close())
}

func (g *googleContainer) DeleteObject(ctx context.Context, key string) error {
	return asGoogleServiceError(g.client.Bucket(g.bucket).Object(key).Delete(ctx))
}
