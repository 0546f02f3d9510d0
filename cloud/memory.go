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
	"crypto/md5"
	"encoding/hex"
	"sort"
	"sync"
	"time"
)

// FaultHook lets tests and fault-injection harnesses fail individual
// operations of a MemoryContainer. op is one of CREATE, DELETE, LIST, GET,
// HEAD, PUT, DELETEOBJ; a non-nil return is surfaced instead of performing
// the operation.
type FaultHook func(op string, key string) error

// MemoryContainer is an in-process Container. It exists for development and
// for tests: listings page like S3 does (sorted keys, strictly after the
// marker, capped page size), missing objects fail with 404, and a FaultHook
// can script arbitrary failures.
type MemoryContainer struct {
	mu      sync.Mutex
	name    string
	created bool
	objects map[string]memoryObject
	maxKeys int
	hook    FaultHook
}

type memoryObject struct {
	data        []byte
	modified    time.Time
	etag        string
	contentType string
	metadata    map[string]string
}

var _ Container = (*MemoryContainer)(nil)

func NewMemoryContainer(name string) *MemoryContainer {
	return &MemoryContainer{
		name:    name,
		objects: make(map[string]memoryObject),
		maxKeys: MaxKeysPerListing,
	}
}

// SetMaxKeys overrides the listing page size. Tests use small pages to
// exercise pagination without thousands of objects.
func (mc *MemoryContainer) SetMaxKeys(n int) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.maxKeys = n
}

// SetFaultHook installs (or, with nil, removes) the fault-injection hook.
func (mc *MemoryContainer) SetFaultHook(hook FaultHook) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.hook = hook
}

// ObjectCount reports how many objects are stored. Test helper.
func (mc *MemoryContainer) ObjectCount() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return len(mc.objects)
}

func (mc *MemoryContainer) checkHook(op, key string) error {
	if mc.hook != nil {
		return mc.hook(op, key)
	}
	return nil
}

func (mc *MemoryContainer) Create(ctx context.Context) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if err := mc.checkHook("CREATE", ""); err != nil {
		return err
	}
	mc.created = true
	return nil
}

func (mc *MemoryContainer) Delete(ctx context.Context) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if err := mc.checkHook("DELETE", ""); err != nil {
		return err
	}
	if len(mc.objects) > 0 {
		return &ServiceError{StatusCode: 409, Reason: "BucketNotEmpty"}
	}
	mc.created = false
	return nil
}

func (mc *MemoryContainer) ListSomeObjects(ctx context.Context, prefix, marker string) (*ContainerListing, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if err := mc.checkHook("LIST", prefix); err != nil {
		return nil, err
	}

	matching := make([]string, 0, len(mc.objects))
	for key := range mc.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix && key > marker {
			matching = append(matching, key)
		}
	}
	sort.Strings(matching)

	truncated := false
	if len(matching) > mc.maxKeys {
		matching = matching[:mc.maxKeys]
		truncated = true
	}

	contents := make([]ObjectEntry, len(matching))
	for i, key := range matching {
		obj := mc.objects[key]
		contents[i] = ObjectEntry{Key: key, Size: int64(len(obj.data)), LastModified: obj.modified, ETag: obj.etag}
	}

	return &ContainerListing{
		Name:        mc.name,
		Prefix:      prefix,
		Marker:      marker,
		MaxKeys:     mc.maxKeys,
		IsTruncated: truncated,
		Contents:    contents,
	}, nil
}

func (mc *MemoryContainer) GetObject(ctx context.Context, key string) ([]byte, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if err := mc.checkHook("GET", key); err != nil {
		return nil, err
	}
	obj, ok := mc.objects[key]
	if !ok {
		return nil, &ServiceError{StatusCode: 404, Reason: "NoSuchKey"}
	}
	// hand out a copy; callers slice and hold onto chunk data
	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	return data, nil
}

func (mc *MemoryContainer) HeadObject(ctx context.Context, key string) (*ObjectMetadata, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if err := mc.checkHook("HEAD", key); err != nil {
		return nil, err
	}
	obj, ok := mc.objects[key]
	if !ok {
		return nil, &ServiceError{StatusCode: 404, Reason: "NoSuchKey"}
	}
	return &ObjectMetadata{
		Size:         int64(len(obj.data)),
		LastModified: obj.modified,
		ETag:         obj.etag,
		ContentType:  obj.contentType,
		Metadata:     obj.metadata,
	}, nil
}

func (mc *MemoryContainer) PutObject(ctx context.Context, key string, data []byte, opts *PutOptions) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if err := mc.checkHook("PUT", key); err != nil {
		return err
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	sum := md5.Sum(stored)
	mc.objects[key] = memoryObject{
		data:        stored,
		modified:    time.Now().UTC(),
		etag:        hex.EncodeToString(sum[:]),
		contentType: opts.contentType(),
		metadata:    opts.metadata(),
	}
	return nil
}

func (mc *MemoryContainer) DeleteObject(ctx context.Context, key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if err := mc.checkHook("DELETEOBJ", key); err != nil {
		return err
	}
	if _, ok := mc.objects[key]; !ok {
		return &ServiceError{StatusCode: 404, Reason: "NoSuchKey"}
	}
	delete(mc.objects, key)
	return nil
}
