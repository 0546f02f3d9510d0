// Copyright © 2017 Microsoft <wastore@microsoft.com>
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

// Package cloud adapts S3-style object stores (flat key/value blob stores
// with LIST/GET/HEAD/PUT/DELETE and HTTP-like status codes) behind one
// Container interface, and layers retry handling and full-keyspace listing
// on top of it.
package cloud

import (
	"context"
	"time"
)

// MaxKeysPerListing is the page cap every supported service applies to a
// single list request.
const MaxKeysPerListing = 1000

// Container is the thinnest possible handle over a remote object container.
// Implementations do not retry; they translate each call into exactly one
// service request, and report failures as *ServiceError so that callers can
// dispatch on the status code. Wrap with WithRetry to get retry behavior.
//
// DeleteObject on a key that does not exist may fail with a 404 ServiceError,
// depending on the service. Callers that treat missing-as-success (such as
// share deletion) must suppress that status themselves.
type Container interface {
	// Create creates the container.
	Create(ctx context.Context) error

	// Delete deletes the container.
	// The cloud service may require the container to be empty before it can be deleted.
	Delete(ctx context.Context) error

	// ListSomeObjects returns a single page of keys starting lexicographically
	// after marker, limited to those starting with prefix. IsTruncated is set
	// when more keys exist beyond the returned page. Use ListAllObjects for a
	// complete listing.
	ListSomeObjects(ctx context.Context, prefix, marker string) (*ContainerListing, error)

	// GetObject fetches an object's full contents.
	GetObject(ctx context.Context, key string) ([]byte, error)

	// HeadObject retrieves object metadata only.
	HeadObject(ctx context.Context, key string) (*ObjectMetadata, error)

	// PutObject stores an object. Any existing object of the same key is replaced.
	PutObject(ctx context.Context, key string, data []byte, opts *PutOptions) error

	// DeleteObject deletes an object. Once deleted, there is no method to
	// restore or undelete an object.
	DeleteObject(ctx context.Context, key string) error
}

// ObjectEntry is one row of a listing.
type ObjectEntry struct {
	Key          string
	Size         int64
	LastModified time.Time
	ETag         string
}

// ContainerListing is the result of one or more list requests. Contents are
// sorted lexicographically by key; Marker is the marker the (first) request
// was made with.
type ContainerListing struct {
	Name        string
	Prefix      string
	Marker      string
	MaxKeys     int
	IsTruncated bool
	Contents    []ObjectEntry
}

// ObjectMetadata is what HeadObject returns.
type ObjectMetadata struct {
	Size         int64
	LastModified time.Time
	ETag         string
	ContentType  string
	Metadata     map[string]string
}

// PutOptions carries the optional parts of PutObject.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

func (o *PutOptions) contentType() string {
	if o == nil || o.ContentType == "" {
		return "application/octet-stream"
	}
	return o.ContentType
}

func (o *PutOptions) metadata() map[string]string {
	if o == nil {
		return nil
	}
	return o.Metadata
}
