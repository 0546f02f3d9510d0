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

// Package share implements chunked share I/O against a cloud container:
// the object keyspace, a backpressure pipeline for in-flight requests, a
// chunk cache with a streaming-friendly retention policy, and the share
// read/write/delete operations built on those.
//
// The container has keys of the form shares/$PREFIX/$STORAGEINDEX/$SHNUM.$CHUNK
package share

import (
	"encoding/base32"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// StorageIndex identifies a share group. Its ASCII rendering doubles as the
// keyspace directory name; the first two characters form the prefix bucket
// that spreads groups across the keyspace.
type StorageIndex [16]byte

// The rendering alphabet is the z-base-32 one the original storage format
// settled on; all-lowercase so rendered indices sort and compare bytewise.
var storageIndexEncoding = base32.NewEncoding("ybndrfg8ejkmcpqxot1uwisza345h769").WithPadding(base32.NoPadding)

func (si StorageIndex) String() string {
	return storageIndexEncoding.EncodeToString(si[:])
}

// ParseStorageIndexString decodes the ASCII rendering back into a StorageIndex.
func ParseStorageIndexString(s string) (StorageIndex, error) {
	var si StorageIndex
	decoded, err := storageIndexEncoding.DecodeString(s)
	if err != nil {
		return si, errors.Wrapf(err, "invalid storage index %q", s)
	}
	if len(decoded) != len(si) {
		return si, errors.Errorf("invalid storage index %q: got %d bytes, need %d", s, len(decoded), len(si))
	}
	copy(si[:], decoded)
	return si, nil
}

// ShareGroupPrefix is the key prefix under which every share of the group is
// stored: "shares/<P>/<SI>/".
func ShareGroupPrefix(si StorageIndex) string {
	sistr := si.String()
	return fmt.Sprintf("shares/%s/%s/", sistr[:2], sistr)
}

// ShareKey is the key prefix of one share (no chunk suffix). It is also the
// object key of chunk 0.
func ShareKey(si StorageIndex, shnum int) string {
	if shnum < 0 {
		panic(fmt.Sprintf("negative shnum %d", shnum))
	}
	sistr := si.String()
	return fmt.Sprintf("shares/%s/%s/%d", sistr[:2], sistr, shnum)
}

// ChunkKey is the object key of one chunk of a share. Chunk 0 lives at the
// bare share key, so shares written before chunking existed read back without
// rewrites; later chunks get a ".<chunknum>" suffix. The suffix-0 form is
// never produced.
func ChunkKey(shareKey string, chunknum int) string {
	if chunknum < 0 {
		panic(fmt.Sprintf("negative chunknum %d", chunknum))
	}
	if chunknum == 0 {
		return shareKey
	}
	return shareKey + "." + strconv.Itoa(chunknum)
}
