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
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testStorageIndex(seed byte) StorageIndex {
	var si StorageIndex
	for i := range si {
		si[i] = seed + byte(i)
	}
	return si
}

func TestStorageIndexStringRoundTrip(t *testing.T) {
	a := assert.New(t)

	for _, seed := range []byte{0, 1, 0x7f, 0xff} {
		si := testStorageIndex(seed)
		rendered := si.String()
		a.Len(rendered, 26) // 128 bits in base32, unpadded
		a.Equal(strings.ToLower(rendered), rendered)

		parsed, err := ParseStorageIndexString(rendered)
		a.NoError(err)
		a.Equal(si, parsed)
	}

	_, err := ParseStorageIndexString("not-a-storage-index!")
	a.Error(err)
	_, err = ParseStorageIndexString("yyyy") // valid alphabet, wrong length
	a.Error(err)
}

func TestShareKeyLayout(t *testing.T) {
	a := assert.New(t)
	si := testStorageIndex(7)
	sistr := si.String()

	a.Equal(fmt.Sprintf("shares/%s/%s/", sistr[:2], sistr), ShareGroupPrefix(si))
	a.Equal(fmt.Sprintf("shares/%s/%s/3", sistr[:2], sistr), ShareKey(si, 3))
	a.True(strings.HasPrefix(ShareKey(si, 3), ShareGroupPrefix(si)))
}

func TestChunkKeyZeroIsShareKey(t *testing.T) {
	a := assert.New(t)
	for shnum := 0; shnum < 12; shnum++ {
		key := ShareKey(testStorageIndex(9), shnum)
		// chunk 0 carries no suffix, so pre-chunked stores interoperate
		a.Equal(key, ChunkKey(key, 0))
	}
}

func TestChunkKeySuffix(t *testing.T) {
	a := assert.New(t)
	key := ShareKey(testStorageIndex(3), 5)
	for _, chunknum := range []int{1, 2, 9, 10, 117} {
		chunkKey := ChunkKey(key, chunknum)
		a.Equal(fmt.Sprintf("%s.%d", key, chunknum), chunkKey)

		// and it parses back
		_, suffix, found := strings.Cut(chunkKey[strings.LastIndex(chunkKey, "/")+1:], ".")
		a.True(found)
		a.Equal(fmt.Sprintf("%d", chunknum), suffix)
	}
}

func TestKeyConstructorsRejectNegatives(t *testing.T) {
	a := assert.New(t)
	a.Panics(func() { ShareKey(testStorageIndex(1), -1) })
	a.Panics(func() { ChunkKey("shares/aa/aaa/0", -1) })
}
