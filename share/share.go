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
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/wastore/cloudshare/cloud"
)

// IShareBase is what the share I/O core exposes upward to the accounting and
// retrieval layers.
type IShareBase interface {
	GetStorageIndex() StorageIndex
	GetStorageIndexString() string
	GetShnum() int
	GetDataLength() int64
	GetSize() int64
	GetUsedSpace() int64
	Unlink(ctx context.Context) error
}

// ByteRange is one element of a scatter-gather read vector.
type ByteRange struct {
	Offset int64
	Length int64
}

// ShareParams is the geometry the layer above derives from the share header.
type ShareParams struct {
	// DataLength is the length of data excluding headers and leases.
	DataLength int64
	// TotalSize is the total size of the share file across all chunks.
	TotalSize int64
	// ChunkSize is the chunk size chosen when the share was created.
	ChunkSize int64
	// DataOffset is where the data begins inside the share file, i.e. the
	// header length. Opaque to this package.
	DataOffset int64
}

// CloudShare is one share stored as a sequence of chunk objects in a cloud
// container. Reads go through a per-share chunk cache and feel the cache's
// pipeline backpressure; writes go through a separate pipeline of the same
// depth. Shares do not share any state with each other.
type CloudShare struct {
	container     cloud.Container
	storageIndex  StorageIndex
	shnum         int
	key           string
	dataLength    int64
	totalSize     int64
	chunksize     int64
	dataOffset    int64
	nchunks       int
	cache         *ChunkCache
	writePipeline *BackpressurePipeline
	ctx           context.Context
}

var _ IShareBase = (*CloudShare)(nil)

// OpenCloudShare makes a handle onto an existing share whose geometry is
// already known. ctx governs the share's background container traffic.
func OpenCloudShare(ctx context.Context, container cloud.Container, si StorageIndex, shnum int, params ShareParams) (*CloudShare, error) {
	if params.ChunkSize <= 0 {
		return nil, errors.Errorf("invalid chunk size %d", params.ChunkSize)
	}
	nchunks := int((params.TotalSize + params.ChunkSize - 1) / params.ChunkSize)
	if nchunks < 1 {
		nchunks = 1
	}
	key := ShareKey(si, shnum)
	return &CloudShare{
		container:     container,
		storageIndex:  si,
		shnum:         shnum,
		key:           key,
		dataLength:    params.DataLength,
		totalSize:     params.TotalSize,
		chunksize:     params.ChunkSize,
		dataOffset:    params.DataOffset,
		nchunks:       nchunks,
		cache:         NewChunkCache(ctx, container, key, nchunks),
		writePipeline: NewBackpressurePipeline(PipelineDepth),
		ctx:           ctx,
	}, nil
}

// CreateCloudShare makes a handle for a share that does not exist yet.
// Nothing is written to the container until WriteChunk is called.
func CreateCloudShare(ctx context.Context, container cloud.Container, si StorageIndex, shnum int, params ShareParams) (*CloudShare, error) {
	return OpenCloudShare(ctx, container, si, shnum, params)
}

func (s *CloudShare) String() string {
	return fmt.Sprintf("<CloudShare at %q>", s.key)
}

func (s *CloudShare) GetStorageIndex() StorageIndex   { return s.storageIndex }
func (s *CloudShare) GetStorageIndexString() string   { return s.storageIndex.String() }
func (s *CloudShare) GetShnum() int                   { return s.shnum }
func (s *CloudShare) GetDataLength() int64            { return s.dataLength }
func (s *CloudShare) GetSize() int64                  { return s.totalSize }

// GetUsedSpace equals GetSize: we're not charged for any per-object overheads
// in supported cloud services, so total object data sizes are what matter for
// statistics and accounting.
func (s *CloudShare) GetUsedSpace() int64 { return s.totalSize }

// Key is the share's key prefix in the container (chunk 0's object key).
func (s *CloudShare) Key() string { return s.key }

// ChunkCount is how many chunk objects the share occupies.
func (s *CloudShare) ChunkCount() int { return s.nchunks }

// SetNChunks updates the chunk count once the share header has been parsed.
func (s *CloudShare) SetNChunks(nchunks int) {
	s.nchunks = nchunks
	s.cache.SetNChunks(nchunks)
}

// Read returns up to length bytes of share data starting at offset. Reads
// beyond the end of the data are truncated; reads that start beyond the end
// return an empty slice.
//
// Chunks are admitted to the fetch pipeline strictly in ascending order, so a
// sequential reader feels backpressure chunk by chunk; the chunk bodies are
// allowed to arrive in any order and are concatenated in order afterwards.
func (s *CloudShare) Read(ctx context.Context, offset, length int64) ([]byte, error) {
	if offset < 0 {
		panic(fmt.Sprintf("negative read offset %d", offset))
	}

	actual := length
	if remaining := s.dataLength - offset; remaining < actual {
		actual = remaining
	}
	if actual <= 0 {
		return []byte{}, nil
	}

	seekpos := s.dataOffset + offset
	lastpos := seekpos + actual - 1
	startChunk := seekpos / s.chunksize
	startOffset := seekpos % s.chunksize
	lastChunk := lastpos / s.chunksize
	lastOffset := lastpos % s.chunksize

	type piece struct {
		data       *ChunkData
		start, end int64
	}
	pieces := make([]piece, 0, lastChunk-startChunk+1)

	for chunknum := startChunk; chunknum <= lastChunk; chunknum++ {
		start, end := int64(0), s.chunksize
		if chunknum == startChunk {
			start = startOffset
		}
		if chunknum == lastChunk {
			end = lastOffset + 1
		}

		admission, cd := s.cache.Get(int(chunknum))
		select {
		case err := <-admission:
			if err != nil {
				return nil, err
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		pieces = append(pieces, piece{data: cd, start: start, end: end})
	}

	buf := make([]byte, 0, actual)
	for i, p := range pieces {
		chunk, err := p.data.Wait(ctx)
		if err != nil {
			return nil, err
		}
		if p.end > int64(len(chunk)) {
			return nil, errors.Errorf("share %s: chunk %d is %d bytes, expected at least %d",
				s.key, startChunk+int64(i), len(chunk), p.end)
		}
		buf = append(buf, chunk[p.start:p.end]...)
	}
	return buf, nil
}

// ReadV services a scatter-gather read vector. The vector is dispatched in
// (offset, length) order so that adjacent ranges coalesce onto the same
// cached chunks, but the results come back in the caller's original order.
func (s *CloudShare) ReadV(ctx context.Context, readv []ByteRange) ([][]byte, error) {
	type indexedRange struct {
		r ByteRange
		i int
	}
	ordered := make([]indexedRange, len(readv))
	for i, r := range readv {
		ordered[i] = indexedRange{r: r, i: i}
	}
	sort.Slice(ordered, func(a, b int) bool {
		if ordered[a].r.Offset != ordered[b].r.Offset {
			return ordered[a].r.Offset < ordered[b].r.Offset
		}
		return ordered[a].r.Length < ordered[b].r.Length
	})

	results := make([][]byte, len(readv))
	group, gctx := errgroup.WithContext(ctx)
	for _, iv := range ordered {
		group.Go(func() error {
			data, err := s.Read(gctx, iv.r.Offset, iv.r.Length)
			results[iv.i] = data
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// WriteChunk stores one chunk object through the share's write pipeline. The
// call blocks only when the pipeline is full; that is the backpressure an
// unbounded producer of writes is expected to feel. The call returns once the
// write is admitted, which may be before its PUT completes. A failed PUT
// poisons the pipeline; the fault surfaces on every later call and on
// FlushWrites.
func (s *CloudShare) WriteChunk(ctx context.Context, chunknum int, data []byte) error {
	key := ChunkKey(s.key, chunknum)
	admission := s.writePipeline.Add(1, func() error {
		return s.container.PutObject(s.ctx, key, data, nil)
	})
	select {
	case err := <-admission:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FlushWrites drains the write pipeline and reports the first fault, if any
// write failed since the last flush. The pipeline is reopened afterwards.
func (s *CloudShare) FlushWrites(ctx context.Context) error {
	select {
	case err := <-s.writePipeline.Flush():
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unlink deletes every chunk object of the share. The share object must not
// be used afterwards.
func (s *CloudShare) Unlink(ctx context.Context) error {
	s.discard(ctx)
	return DeleteChunks(ctx, s.container, s.key, 0)
}

// Close releases the share's pipelines, waiting for in-flight work to land.
func (s *CloudShare) Close(ctx context.Context) error {
	writeErr := s.FlushWrites(ctx)
	s.discard(ctx)
	return writeErr
}

// discard drops references to potentially large cached data.
func (s *CloudShare) discard(ctx context.Context) {
	select {
	case <-s.cache.Close():
	case <-ctx.Done():
	}
}
