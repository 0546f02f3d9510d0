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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wastore/cloudshare/cloud"
)

func TestDeleteChunksRemovesWholeShare(t *testing.T) {
	a := assert.New(t)
	container, key := makeChunkedShare(t, []string{"aaaaaaaaaa", "bbbbbbbbbb", "ccccc"})

	a.NoError(DeleteChunks(context.Background(), container, key, 0))
	a.Equal(0, container.ObjectCount())
}

func TestDeleteChunksFromChunknum(t *testing.T) {
	a := assert.New(t)
	container, key := makeChunkedShare(t, []string{"aaaaaaaaaa", "bbbbbbbbbb", "ccccc", "ddddd"})

	// truncation: drop chunks 2 and up, keep 0 and 1
	a.NoError(DeleteChunks(context.Background(), container, key, 2))
	a.Equal(2, container.ObjectCount())

	for chunknum, want := range map[int]bool{0: true, 1: true, 2: false, 3: false} {
		_, err := container.GetObject(context.Background(), ChunkKey(key, chunknum))
		if want {
			a.NoError(err, "chunk %d should survive", chunknum)
		} else {
			a.True(cloud.HasStatusCode(err, 404), "chunk %d should be gone", chunknum)
		}
	}
}

func TestDeleteChunksSuppresses404(t *testing.T) {
	a := assert.New(t)
	container, key := makeChunkedShare(t, []string{"aaaaaaaaaa", "bbbbbbbbbb", "ccccc"})

	// a concurrent deleter already removed chunk 1; its 404 is a success
	raced := ChunkKey(key, 1)
	container.SetFaultHook(func(op, k string) error {
		if op == "DELETEOBJ" && k == raced {
			return &cloud.ServiceError{StatusCode: 404, Reason: "NoSuchKey"}
		}
		return nil
	})

	a.NoError(DeleteChunks(context.Background(), container, key, 0))
	container.SetFaultHook(nil)
	a.Equal(1, container.ObjectCount()) // only the 404'd key remains stored
}

func TestDeleteChunksHaltsOnError(t *testing.T) {
	a := assert.New(t)
	container, key := makeChunkedShare(t, []string{"aaaaaaaaaa", "bbbbbbbbbb", "ccccc"})

	poison := ChunkKey(key, 1)
	container.SetFaultHook(func(op, k string) error {
		if op == "DELETEOBJ" && k == poison {
			return &cloud.ServiceError{StatusCode: 403, Reason: "AccessDenied"}
		}
		return nil
	})

	err := DeleteChunks(context.Background(), container, key, 0)
	a.True(cloud.HasStatusCode(err, 403))

	// chunk 0 went first (keys list in order); chunk 2 was never attempted
	container.SetFaultHook(nil)
	_, err = container.GetObject(context.Background(), ChunkKey(key, 2))
	a.NoError(err)
}

func TestDeleteChunksLeavesSiblingShares(t *testing.T) {
	a := assert.New(t)
	container, key := makeChunkedShare(t, []string{"aaaaaaaaaa", "bbbbbbbbbb"})

	// share 10's keys begin with share 1's key prefix; they must survive an
	// unlink of share 1
	si := testStorageIndex(1)
	key1 := ShareKey(si, 1)
	key10 := ShareKey(si, 10)
	ctx := context.Background()
	a.NoError(container.PutObject(ctx, key1, []byte("share-1"), nil))
	a.NoError(container.PutObject(ctx, ChunkKey(key1, 1), []byte("share-1.1"), nil))
	a.NoError(container.PutObject(ctx, key10, []byte("share-10"), nil))
	a.NoError(container.PutObject(ctx, ChunkKey(key10, 3), []byte("share-10.3"), nil))

	a.NoError(DeleteChunks(ctx, container, key1, 0))

	_, err := container.GetObject(ctx, key10)
	a.NoError(err)
	_, err = container.GetObject(ctx, ChunkKey(key10, 3))
	a.NoError(err)
	_, err = container.GetObject(ctx, key1)
	a.True(cloud.HasStatusCode(err, 404))

	// the share from makeChunkedShare (shnum 0) is untouched as well
	_, err = container.GetObject(ctx, key)
	a.NoError(err)
}

func TestDeleteChunksIgnoresForeignSuffixes(t *testing.T) {
	a := assert.New(t)
	container, key := makeChunkedShare(t, []string{"aaaaaaaaaa"})

	ctx := context.Background()
	stray := key + ".backup"
	a.NoError(container.PutObject(ctx, stray, []byte("not a chunk"), nil))

	a.NoError(DeleteChunks(ctx, container, key, 0))
	_, err := container.GetObject(ctx, stray)
	a.NoError(err, "non-numeric suffixes are not chunks and are left alone")
}
