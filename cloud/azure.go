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
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/pkg/errors"
)

// AzureContainerOptions configures NewAzureContainer.
type AzureContainerOptions struct {
	AccountName string
	AccountKey  string
	// ServiceURL overrides the default https://<account>.blob.core.windows.net/
	// (for Azurite and sovereign clouds).
	ServiceURL string
}

type azureContainer struct {
	client    *azblob.Client
	container string
}

var _ Container = (*azureContainer)(nil)

func NewAzureContainer(containerName string, opts AzureContainerOptions) (Container, error) {
	cred, err := azblob.NewSharedKeyCredential(opts.AccountName, opts.AccountKey)
	if err != nil {
		return nil, err
	}
	serviceURL := opts.ServiceURL
	if serviceURL == "" {
		serviceURL = fmt.Sprintf("https://%s.blob.core.windows.net/", opts.AccountName)
	}
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, err
	}
	return &azureContainer{client: client, container: containerName}, nil
}

// asAzureServiceError maps the SDK's ResponseError onto ServiceError.
// Anything without an HTTP response passes through unchanged.
func asAzureServiceError(err error) error {
	if err == nil {
		return nil
	}
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return &ServiceError{StatusCode: respErr.StatusCode, Reason: respErr.ErrorCode}
	}
	return err
}

func (a *azureContainer) Create(ctx context.Context) error {
	_, err := a.client.CreateContainer(ctx, a.container, nil)
	return asAzureServiceError(err)
}

func (a *azureContainer) Delete(ctx context.Context) error {
	_, err := a.client.DeleteContainer(ctx, a.container, nil)
	return asAzureServiceError(err)
}

func (a *azureContainer) ListSomeObjects(ctx context.Context, prefix, marker string) (*ContainerListing, error) {
	opts := &azblob.ListBlobsFlatOptions{
		Prefix:     &prefix,
		MaxResults: to.Ptr(int32(MaxKeysPerListing)),
	}
	if marker != "" {
		opts.Marker = &marker
	}
	// one page only; the full-listing loop lives in ListAllObjects
	pager := a.client.NewListBlobsFlatPager(a.container, opts)
	resp, err := pager.NextPage(ctx)
	if err != nil {
		return nil, asAzureServiceError(err)
	}

	contents := make([]ObjectEntry, 0, len(resp.Segment.BlobItems))
	for _, item := range resp.Segment.BlobItems {
		entry := ObjectEntry{Key: *item.Name}
		if props := item.Properties; props != nil {
			if props.ContentLength != nil {
				entry.Size = *props.ContentLength
			}
			if props.LastModified != nil {
				entry.LastModified = *props.LastModified
			}
			if props.ETag != nil {
				entry.ETag = string(*props.ETag)
			}
		}
		contents = append(contents, entry)
	}

	return &ContainerListing{
		Name:        a.container,
		Prefix:      prefix,
		Marker:      marker,
		MaxKeys:     MaxKeysPerListing,
		IsTruncated: resp.NextMarker != nil && *resp.NextMarker != "",
		Contents:    contents,
	}, nil
}

func (a *azureContainer) GetObject(ctx context.Context, key string) ([]byte, error) {
	resp, err := a.client.DownloadStream(ctx, a.container, key, nil)
	if err != nil {
		return nil, asAzureServiceError(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, asAzureServiceError(err)
	}
	return data, nil
}

func (a *azureContainer) HeadObject(ctx context.Context, key string) (*ObjectMetadata, error) {
	blobClient := a.client.ServiceClient().NewContainerClient(a.container).NewBlobClient(key)
	props, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		return nil, asAzureServiceError(err)
	}
	md := &ObjectMetadata{Metadata: make(map[string]string, len(props.Metadata))}
	if props.ContentLength != nil {
		md.Size = *props.ContentLength
	}
	if props.LastModified != nil {
		md.LastModified = *props.LastModified
	}
	if props.ETag != nil {
		md.ETag = string(*props.ETag)
	}
	if props.ContentType != nil {
		md.ContentType = *props.ContentType
	}
	for k, v := range props.Metadata {
		if v != nil {
			md.Metadata[k] = *v
		}
	}
	return md, nil
}

func (a *azureContainer) PutObject(ctx context.Context, key string, data []byte, opts *PutOptions) error {
	metadata := make(map[string]*string, len(opts.metadata()))
	for k, v := range opts.metadata() {
		metadata[k] = to.Ptr(v)
	}
	_, err := a.client.UploadBuffer(ctx, a.container, key, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: to.Ptr(opts.contentType())},
		Metadata:    metadata,
	})
	return asAzureServiceError(err)
}

func (a *azureContainer) DeleteObject(ctx context.Context, key string) error {
	_, err := a.client.DeleteBlob(ctx, a.container, key, nil)
	return asAzureServiceError(err)
}
