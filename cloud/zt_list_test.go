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
	"fmt"
	"sort"
	"testing"

	chk "gopkg.in/check.v1"
)

// Hook up gocheck into the "go test" runner.
func Test(t *testing.T) { chk.TestingT(t) }

type listSuite struct{}

var _ = chk.Suite(&listSuite{})

func populated(c *chk.C, n int) *MemoryContainer {
	container := NewMemoryContainer("test")
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("shares/aa/aaa/0.%03d", i+1)
		err := container.PutObject(context.Background(), key, []byte("x"), nil)
		c.Assert(err, chk.IsNil)
	}
	return container
}

func (s *listSuite) TestListAllObjectsSinglePage(c *chk.C) {
	container := populated(c, 5)

	listing, err := ListAllObjects(context.Background(), container, "shares/")
	c.Assert(err, chk.IsNil)
	c.Assert(listing.IsTruncated, chk.Equals, false)
	c.Assert(listing.Contents, chk.HasLen, 5)
}

func (s *listSuite) TestListAllObjectsConcatenatesPages(c *chk.C) {
	container := populated(c, 25)
	container.SetMaxKeys(10) // force three pages

	listing, err := ListAllObjects(context.Background(), container, "shares/")
	c.Assert(err, chk.IsNil)
	c.Assert(listing.Contents, chk.HasLen, 25)
	c.Assert(listing.IsTruncated, chk.Equals, false)

	keys := make([]string, len(listing.Contents))
	for i, entry := range listing.Contents {
		keys[i] = entry.Key
	}
	c.Assert(sort.StringsAreSorted(keys), chk.Equals, true)
	for i := 1; i < len(keys); i++ {
		c.Assert(keys[i] > keys[i-1], chk.Equals, true) // no duplicates across page seams
	}
}

func (s *listSuite) TestListAllObjectsHonorsPrefix(c *chk.C) {
	container := populated(c, 5)
	err := container.PutObject(context.Background(), "other/key", []byte("x"), nil)
	c.Assert(err, chk.IsNil)

	listing, err := ListAllObjects(context.Background(), container, "shares/aa/")
	c.Assert(err, chk.IsNil)
	c.Assert(listing.Contents, chk.HasLen, 5)
	c.Assert(listing.Prefix, chk.Equals, "shares/aa/")
}

func (s *listSuite) TestListAllObjectsEmptyPrefix(c *chk.C) {
	container := NewMemoryContainer("test")
	listing, err := ListAllObjects(context.Background(), container, "shares/")
	c.Assert(err, chk.IsNil)
	c.Assert(listing.Contents, chk.HasLen, 0)
}

// loopingContainer simulates a store that ignores the marker and serves the
// same truncated page forever.
type loopingContainer struct {
	*MemoryContainer
}

func (lc *loopingContainer) ListSomeObjects(ctx context.Context, prefix, marker string) (*ContainerListing, error) {
	listing, err := lc.MemoryContainer.ListSomeObjects(ctx, prefix, "")
	if err != nil {
		return nil, err
	}
	listing.Marker = marker
	listing.IsTruncated = true
	return listing, nil
}

func (s *listSuite) TestListAllObjectsDetectsLoopingStore(c *chk.C) {
	container := populated(c, 5)
	container.SetMaxKeys(2)

	_, err := ListAllObjects(context.Background(), &loopingContainer{container}, "shares/")
	c.Assert(err, chk.NotNil)
	_, isProtocol := err.(*ProtocolError)
	c.Assert(isProtocol, chk.Equals, true)
	c.Assert(err, chk.ErrorMatches, ".*not making progress.*")
}

func (s *listSuite) TestListErrorsPropagate(c *chk.C) {
	container := populated(c, 5)
	container.SetFaultHook(func(op, key string) error {
		if op == "LIST" {
			return &ServiceError{StatusCode: 500, Reason: "InternalError"}
		}
		return nil
	})

	_, err := ListAllObjects(context.Background(), container, "shares/")
	c.Assert(err, chk.NotNil)
	c.Assert(HasStatusCode(err, 500), chk.Equals, true)
}
