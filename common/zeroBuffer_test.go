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

package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetZeroChunkData(t *testing.T) {
	a := assert.New(t)

	small := GetZeroChunkData(1000)
	a.Len(small, 1000)
	for _, b := range small {
		a.Zero(b)
	}

	// small requests share the process-wide buffer
	other := GetZeroChunkData(10)
	a.Same(&small[0], &other[0])

	full := GetZeroChunkData(PreferredChunkSize)
	a.Len(full, PreferredChunkSize)

	// oversize requests get their own allocation
	big := GetZeroChunkData(PreferredChunkSize + 1)
	a.Len(big, PreferredChunkSize+1)
	a.NotSame(&small[0], &big[0])
	for _, b := range big[PreferredChunkSize-1:] {
		a.Zero(b)
	}
}
