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
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/wastore/cloudshare/common"
)

// recordingLogger captures log lines so tests can count incident records.
type recordingLogger struct {
	mu      sync.Mutex
	entries []struct {
		level common.LogLevel
		msg   string
	}
}

func (rl *recordingLogger) ShouldLog(common.LogLevel) bool { return true }
func (rl *recordingLogger) Panic(err error)                { panic(err) }

func (rl *recordingLogger) Log(level common.LogLevel, msg string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.entries = append(rl.entries, struct {
		level common.LogLevel
		msg   string
	}{level, msg})
}

func (rl *recordingLogger) incidents() []string {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	var out []string
	for _, e := range rl.entries {
		if e.level == common.LogError && strings.Contains(e.msg, "incident") {
			out = append(out, e.msg)
		}
	}
	return out
}

// instantBackoff collapses the 5xx schedule so retry tests run in
// microseconds; the restore runs at test cleanup.
func instantBackoff(t *testing.T) {
	t.Helper()
	old := BackoffSchedule5xx
	BackoffSchedule5xx = []time.Duration{0, 0, 0}
	t.Cleanup(func() { BackoffSchedule5xx = old })
}

func failingContainer(statuses ...int) (*MemoryContainer, *int) {
	container := NewMemoryContainer("test")
	attempts := new(int)
	container.SetFaultHook(func(op, key string) error {
		if op != "GET" {
			return nil
		}
		*attempts++
		if *attempts <= len(statuses) && statuses[*attempts-1] != 0 {
			return &ServiceError{
				StatusCode: statuses[*attempts-1],
				Reason:     fmt.Sprintf("InternalError-try-%d", *attempts),
			}
		}
		return nil
	})
	return container, attempts
}

func TestRetrySucceedsAfter5xx(t *testing.T) {
	a := assert.New(t)
	instantBackoff(t)

	container, attempts := failingContainer(503, 503, 0)
	a.NoError(container.PutObject(context.Background(), "key", []byte("payload"), nil))

	logger := &recordingLogger{}
	wrapped := WithRetry(container, logger)

	data, err := wrapped.GetObject(context.Background(), "key")
	a.NoError(err)
	a.Equal("payload", string(data))
	a.Equal(3, *attempts)
	a.Len(logger.incidents(), 1, "a retried-then-successful call emits exactly one incident")
}

func TestRetryExhaustedSurfacesFirstError(t *testing.T) {
	a := assert.New(t)
	instantBackoff(t)

	container, attempts := failingContainer(503, 503, 503, 503, 503)
	logger := &recordingLogger{}
	wrapped := WithRetry(container, logger)

	_, err := wrapped.GetObject(context.Background(), "key")
	a.Error(err)
	a.Equal(4, *attempts, "initial try plus one retry per backoff slot")

	var cloudErr *CloudError
	a.ErrorAs(err, &cloudErr)
	a.Contains(err.Error(), "try 1 failed")
	a.Contains(err.Error(), "InternalError-try-1", "the FIRST failure is the one surfaced")
	a.NotContains(err.Error(), "InternalError-try-4")

	a.Len(logger.incidents(), 1)
}

func TestRetryNon5xxEscalatesImmediately(t *testing.T) {
	a := assert.New(t)
	instantBackoff(t)

	container, attempts := failingContainer(403)
	logger := &recordingLogger{}
	wrapped := WithRetry(container, logger)

	_, err := wrapped.GetObject(context.Background(), "key")
	a.Error(err)
	a.Equal(1, *attempts, "client errors are not retried")
	a.True(HasStatusCode(err, 403))
	a.Len(logger.incidents(), 1)
}

func TestRetryNon5xxOnRetryStillEscalates(t *testing.T) {
	a := assert.New(t)
	instantBackoff(t)

	container, attempts := failingContainer(503, 404)
	logger := &recordingLogger{}
	wrapped := WithRetry(container, logger)

	_, err := wrapped.GetObject(context.Background(), "key")
	a.Error(err)
	a.Equal(2, *attempts)
	// the non-5xx error is raised even though it came on a retry
	a.True(HasStatusCode(err, 404))
}

func TestRetryCleanCallEmitsNothing(t *testing.T) {
	a := assert.New(t)
	container := NewMemoryContainer("test")
	a.NoError(container.PutObject(context.Background(), "key", []byte("x"), nil))

	logger := &recordingLogger{}
	wrapped := WithRetry(container, logger)

	_, err := wrapped.GetObject(context.Background(), "key")
	a.NoError(err)
	a.Empty(logger.entries)
}

func TestRetryDoesNotTouchNonServiceErrors(t *testing.T) {
	a := assert.New(t)
	instantBackoff(t)

	container := NewMemoryContainer("test")
	plain := errors.New("socket fell out")
	calls := 0
	container.SetFaultHook(func(op, key string) error {
		if op == "GET" {
			calls++
			return plain
		}
		return nil
	})

	wrapped := WithRetry(container, &recordingLogger{})
	_, err := wrapped.GetObject(context.Background(), "key")
	a.ErrorIs(err, plain)
	a.Equal(1, calls)
}

func TestRetryRedactsSignatureResponses(t *testing.T) {
	a := assert.New(t)
	instantBackoff(t)

	container := NewMemoryContainer("test")
	container.SetFaultHook(func(op, key string) error {
		if op == "GET" {
			return &ServiceError{
				StatusCode: 403,
				Reason:     "SignatureDoesNotMatch",
				Body:       "<Error><Code>SignatureDoesNotMatch</Code><StringToSign>AWS4 secret material</StringToSign></Error>",
			}
		}
		return nil
	})

	logger := &recordingLogger{}
	wrapped := WithRetry(container, logger)

	_, err := wrapped.GetObject(context.Background(), "key")
	a.Error(err)

	se, ok := AsServiceError(err)
	a.True(ok)
	a.Equal(common.SignatureDoesNotMatchRedacted, se.Body)
	a.NotContains(err.Error(), "StringToSign")
	for _, entry := range logger.entries {
		a.NotContains(entry.msg, "secret material")
	}
}

func TestServiceErrorClassification(t *testing.T) {
	a := assert.New(t)
	a.True((&ServiceError{StatusCode: 500}).IsServerError())
	a.True((&ServiceError{StatusCode: 599}).IsServerError())
	a.False((&ServiceError{StatusCode: 404}).IsServerError())
	a.False((&ServiceError{StatusCode: 600}).IsServerError())

	wrapped := newCloudError("try 1 failed", &ServiceError{StatusCode: 503, Reason: "SlowDown"})
	a.True(HasStatusCode(wrapped, 503))
	a.False(HasStatusCode(wrapped, 404))
	a.False(HasStatusCode(errors.New("other"), 503))
}
