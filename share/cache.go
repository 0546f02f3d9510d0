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
	"sync"

	"github.com/wastore/cloudshare/cloud"
)

// PipelineDepth is how many container requests a single share keeps in
// flight. Throughput is roughly the container's request latency divided by
// this; 4 keeps a share busy without monopolizing the connection pool.
var PipelineDepth = int64(4)

// minCachedChunks is the floor below which the retention pass stops evicting,
// so a reader alternating between adjacent chunks doesn't thrash.
const minCachedChunks = 3

// ChunkData is the handle for one chunk's bytes. It may be handed to many
// readers while the single underlying GET is still in flight; every holder
// unblocks when that fetch resolves, with the bytes or with the fault.
type ChunkData struct {
	resolveOnce sync.Once
	done        chan struct{}
	data        []byte
	err         error
}

func newChunkData() *ChunkData {
	return &ChunkData{done: make(chan struct{})}
}

func (cd *ChunkData) resolve(data []byte, err error) {
	cd.resolveOnce.Do(func() {
		cd.data = data
		cd.err = err
		close(cd.done)
	})
}

// Wait blocks until the chunk's fetch completes. The returned slice is shared
// between all holders of the handle; callers must not write into it.
func (cd *ChunkData) Wait(ctx context.Context) ([]byte, error) {
	select {
	case <-cd.done:
		return cd.data, cd.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ChunkCache caches chunks for a specific share object. It multiplexes
// concurrent readers of one chunknum onto a single GET, and bounds memory
// with a retention policy tuned for both streaming and random access: once
// more than three entries are cached, chunks other than the first (which
// carries the share header and is re-read on seeks), the final two (hot
// during tail recovery after partial writes) and the one just admitted are
// evicted until three entries remain. A generic LRU would discard exactly those hot chunks under a
// sequential scan, which is why this is bespoke.
type ChunkCache struct {
	mu        sync.Mutex
	ctx       context.Context // governs background fetches
	container cloud.Container
	shareKey  string
	nchunks   int
	cachemap  map[int]*ChunkData
	pipeline  *BackpressurePipeline
}

// NewChunkCache makes a cache for the share stored under shareKey. nchunks
// may be a placeholder (1) until the share header has been read; update it
// with SetNChunks so the retention set lands on the real final chunks.
func NewChunkCache(ctx context.Context, container cloud.Container, shareKey string, nchunks int) *ChunkCache {
	return &ChunkCache{
		ctx:       ctx,
		container: container,
		shareKey:  shareKey,
		nchunks:   nchunks,
		cachemap:  make(map[int]*ChunkData),
		pipeline:  NewBackpressurePipeline(PipelineDepth),
	}
}

func (c *ChunkCache) SetNChunks(nchunks int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nchunks = nchunks
}

// Get returns the admission channel and the data handle for one chunk. A
// cache hit never stalls: the admission is already resolved and the handle
// may already carry bytes. On a miss the fetch is submitted to the pipeline,
// and the caller must wait on the admission before requesting further chunks;
// that is how backpressure reaches sequential readers. The data handle
// resolves whenever the GET lands, in any order relative to other chunks.
func (c *ChunkCache) Get(chunknum int) (admission <-chan error, data *ChunkData) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cd, ok := c.cachemap[chunknum]; ok {
		return resolvedAdmission, cd
	}

	cd := newChunkData()
	key := ChunkKey(c.shareKey, chunknum)
	admission = c.pipeline.Add(1, func() error {
		body, err := c.container.GetObject(c.ctx, key)
		cd.resolve(body, err)
		return err
	})

	select {
	case err := <-admission:
		if err != nil {
			// the pipeline refused the submission, so the fetch will never
			// run; resolve the handle with the refusal rather than caching an
			// entry that can't complete
			cd.resolve(nil, err)
			refused := make(chan error, 1)
			refused <- err
			return refused, cd
		}
		c.cachemap[chunknum] = cd
		c.evictLocked(chunknum)
		return resolvedAdmission, cd
	default:
		c.cachemap[chunknum] = cd
		c.evictLocked(chunknum)
		return admission, cd
	}
}

// evictLocked is the retention pass: evict any chunks other than the first,
// the last two, and the one just admitted, until there are three or fewer
// chunks left cached.
func (c *ChunkCache) evictLocked(justAdmitted int) {
	for candidate := range c.cachemap {
		if len(c.cachemap) <= minCachedChunks {
			break
		}
		if candidate == justAdmitted || candidate == 0 ||
			candidate == c.nchunks-2 || candidate == c.nchunks-1 {
			continue
		}
		delete(c.cachemap, candidate)
	}
}

// FlushChunk drops one entry. Readers already holding the handle are not
// disturbed; an in-flight fetch still resolves for them.
func (c *ChunkCache) FlushChunk(chunknum int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cachemap, chunknum)
}

// Close drops the cache contents and closes the pipeline. The returned
// channel resolves when no fetches remain in flight.
func (c *ChunkCache) Close() <-chan error {
	c.mu.Lock()
	c.cachemap = make(map[int]*ChunkData)
	c.mu.Unlock()
	return c.pipeline.Close()
}

// cachedChunks reports which chunknums are currently held. Test helper.
func (c *ChunkCache) cachedChunks() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	chunks := make([]int, 0, len(c.cachemap))
	for chunknum := range c.cachemap {
		chunks = append(chunks, chunknum)
	}
	return chunks
}
