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

package share

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/wastore/cloudshare/cloud"
)

var chunkNumberRE = regexp.MustCompile(`^[0-9]+$`)

// DeleteChunks removes every chunk object of the share stored under shareKey
// whose chunk number is at least fromChunknum. Deletions are serialized; a
// 404 means the object was already gone, which is a success for a delete.
// Any other failure halts further deletes and is surfaced.
func DeleteChunks(ctx context.Context, container cloud.Container, shareKey string, fromChunknum int) error {
	listing, err := cloud.ListAllObjects(ctx, container, shareKey)
	if err != nil {
		return err
	}

	shnumStr := shareKey[strings.LastIndex(shareKey, "/")+1:]

	for _, item := range listing.Contents {
		if !strings.HasPrefix(item.Key, shareKey) {
			panic(fmt.Sprintf("listed key %q does not start with share key %q", item.Key, shareKey))
		}
		path := strings.Split(item.Key, "/")
		if len(path) != 4 {
			continue
		}
		// "<shnum>" is chunk 0; "<shnum>.<c>" is chunk c. The base must match
		// exactly: the prefix listing for share 1 also returns shares 10-19.
		base, chunknumStr, _ := strings.Cut(path[3], ".")
		if base != shnumStr {
			continue
		}
		if chunknumStr == "" {
			chunknumStr = "0"
		}
		if !chunkNumberRE.MatchString(chunknumStr) {
			continue
		}
		chunknum, err := strconv.Atoi(chunknumStr)
		if err != nil || chunknum < fromChunknum {
			continue
		}

		if err := container.DeleteObject(ctx, item.Key); err != nil {
			if cloud.HasStatusCode(err, 404) {
				continue
			}
			return err
		}
	}
	return nil
}
