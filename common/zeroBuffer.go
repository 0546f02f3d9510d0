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

// PreferredChunkSize is the size of the process-wide zero buffer below. Share
// creation takes its chunk size from the caller and does not read this value.
const PreferredChunkSize = 512 * 1024

// zeroChunkData is allocated once and handed out, sliced, to every caller that
// needs zero padding for a short last chunk. Callers must not write into the
// returned slices.
var zeroChunkData = make([]byte, PreferredChunkSize)

// GetZeroChunkData returns size zero bytes. Requests up to PreferredChunkSize
// share one buffer; larger requests get a one-shot allocation.
func GetZeroChunkData(size int64) []byte {
	if size <= PreferredChunkSize {
		return zeroChunkData[:size]
	}
	return make([]byte, size)
}
