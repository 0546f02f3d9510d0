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

import "context"

// ListAllObjects repeats ListSomeObjects as many times as necessary to get a
// full listing, threading the continuation marker until the truncation flag
// clears. The container is assumed to be reliable; wrap it with WithRetry if
// retries are wanted, since one lost page fails the whole listing.
//
// The 'delimiter' style of hierarchical listing is not supported.
func ListAllObjects(ctx context.Context, c Container, prefix string) (*ContainerListing, error) {
	var pages []*ContainerListing
	total := 0
	marker := ""

	for {
		page, err := c.ListSomeObjects(ctx, prefix, marker)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
		total += len(page.Contents)

		if !page.IsTruncated {
			break
		}
		if len(page.Contents) == 0 {
			return nil, newProtocolError("list of %q: truncated page with no contents", prefix)
		}
		newMarker := page.Contents[len(page.Contents)-1].Key
		if marker != "" && newMarker <= marker {
			// a non-advancing marker means the store would hand us the same
			// page forever
			return nil, newProtocolError("list of %q: not making progress (marker %q -> %q)", prefix, marker, newMarker)
		}
		marker = newMarker
	}

	// one pre-sized copy rather than a quadratic append chain
	contents := make([]ObjectEntry, 0, total)
	for _, page := range pages {
		contents = append(contents, page.Contents...)
	}

	first := pages[0]
	return &ContainerListing{
		Name:        first.Name,
		Prefix:      first.Prefix,
		Marker:      first.Marker,
		MaxKeys:     first.MaxKeys,
		IsTruncated: false,
		Contents:    contents,
	}, nil
}
