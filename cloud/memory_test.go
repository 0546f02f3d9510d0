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

package cloud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryContainerObjectLifecycle(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	container := NewMemoryContainer("test")

	_, err := container.GetObject(ctx, "missing")
	a.True(HasStatusCode(err, 404))
	_, err = container.HeadObject(ctx, "missing")
	a.True(HasStatusCode(err, 404))
	a.True(HasStatusCode(container.DeleteObject(ctx, "missing"), 404))

	a.NoError(container.PutObject(ctx, "k", []byte("hello"), &PutOptions{
		ContentType: "text/plain",
		Metadata:    map[string]string{"owner": "tests"},
	}))

	data, err := container.GetObject(ctx, "k")
	a.NoError(err)
	a.Equal("hello", string(data))

	// mutating the returned slice must not corrupt the stored object
	data[0] = 'X'
	again, err := container.GetObject(ctx, "k")
	a.NoError(err)
	a.Equal("hello", string(again))

	md, err := container.HeadObject(ctx, "k")
	a.NoError(err)
	a.Equal(int64(5), md.Size)
	a.Equal("text/plain", md.ContentType)
	a.Equal("tests", md.Metadata["owner"])
	a.NotEmpty(md.ETag)

	a.NoError(container.DeleteObject(ctx, "k"))
	a.Equal(0, container.ObjectCount())
}

func TestMemoryContainerListingIsMarkerExclusive(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	container := NewMemoryContainer("test")
	for _, key := range []string{"p/a", "p/b", "p/c"} {
		a.NoError(container.PutObject(ctx, key, []byte("x"), nil))
	}

	listing, err := container.ListSomeObjects(ctx, "p/", "p/a")
	a.NoError(err)
	a.Len(listing.Contents, 2)
	a.Equal("p/b", listing.Contents[0].Key, "keys strictly after the marker, in order")
	a.Equal("p/c", listing.Contents[1].Key)
}
