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
	"time"

	"github.com/google/uuid"

	"github.com/wastore/cloudshare/common"
)

// BackoffSchedule5xx is how long we wait before each retry of a request that
// failed with a 5xx status. Requests get at most len(BackoffSchedule5xx)
// retries beyond the initial try.
var BackoffSchedule5xx = []time.Duration{0, 2 * time.Second, 10 * time.Second}

// WithRetry wraps a container so that every operation retries 5xx failures on
// the fixed backoff schedule, escalates everything else immediately, and
// emits exactly one incident log record for any call that had at least one
// failed attempt, whether or not it eventually succeeded.
//
// When retries are exhausted the error surfaced wraps the FIRST failure, not
// the last one.
func WithRetry(c Container, logger common.ILogger) Container {
	if logger == nil {
		logger = common.NewNullLogger()
	}
	return &retryingContainer{inner: c, logger: logger}
}

type retryingContainer struct {
	inner  Container
	logger common.ILogger
}

var _ Container = (*retryingContainer)(nil)

func (rc *retryingContainer) Create(ctx context.Context) error {
	return rc.doRequest(ctx, "create container", nil, func() error {
		return rc.inner.Create(ctx)
	})
}

func (rc *retryingContainer) Delete(ctx context.Context) error {
	return rc.doRequest(ctx, "delete container", nil, func() error {
		return rc.inner.Delete(ctx)
	})
}

func (rc *retryingContainer) ListSomeObjects(ctx context.Context, prefix, marker string) (listing *ContainerListing, err error) {
	err = rc.doRequest(ctx, "list some objects", []string{prefix, marker}, func() (opErr error) {
		listing, opErr = rc.inner.ListSomeObjects(ctx, prefix, marker)
		return opErr
	})
	return listing, err
}

func (rc *retryingContainer) GetObject(ctx context.Context, key string) (data []byte, err error) {
	err = rc.doRequest(ctx, "GET object", []string{key}, func() (opErr error) {
		data, opErr = rc.inner.GetObject(ctx, key)
		return opErr
	})
	return data, err
}

func (rc *retryingContainer) HeadObject(ctx context.Context, key string) (metadata *ObjectMetadata, err error) {
	err = rc.doRequest(ctx, "HEAD object", []string{key}, func() (opErr error) {
		metadata, opErr = rc.inner.HeadObject(ctx, key)
		return opErr
	})
	return metadata, err
}

func (rc *retryingContainer) PutObject(ctx context.Context, key string, data []byte, opts *PutOptions) error {
	// the payload is deliberately absent from the logged arguments
	return rc.doRequest(ctx, "PUT object", []string{key, opts.contentType()}, func() error {
		return rc.inner.PutObject(ctx, key, data, opts)
	})
}

func (rc *retryingContainer) DeleteObject(ctx context.Context, key string) error {
	return rc.doRequest(ctx, "DELETE object", []string{key}, func() error {
		return rc.inner.DeleteObject(ctx, key)
	})
}

// doRequest performs op, retrying per the 5xx schedule. loggedArgs is the
// request's identifying arguments; only the first two ever reach a log line,
// and request payloads must not be among them.
func (rc *retryingContainer) doRequest(ctx context.Context, description string, loggedArgs []string, op func() error) error {
	if len(loggedArgs) > 2 {
		loggedArgs = loggedArgs[:2]
	}

	err := op()
	if err == nil {
		return nil
	}

	finalErr := rc.retryLoop(ctx, description, loggedArgs, op, err)

	// Exactly one incident per request that had a failed attempt, success or not.
	incidentID := uuid.New().String()
	outcome := "succeeded after retry"
	if finalErr != nil {
		outcome = fmt.Sprintf("failed: %v", finalErr)
	}
	rc.logger.Log(common.LogError, fmt.Sprintf("incident %s: error(s) on cloud container operation: %s %v %s",
		incidentID, description, loggedArgs, outcome))

	return finalErr
}

func (rc *retryingContainer) retryLoop(ctx context.Context, description string, loggedArgs []string, op func() error, err error) error {
	var firstErr error

	for try := 1; ; try++ {
		se, ok := AsServiceError(err)
		if !ok {
			// Not a service response at all (ProtocolError, ctx cancellation, ...).
			// Nothing a retry can fix.
			return err
		}

		cloudErr := newCloudError(
			fmt.Sprintf("try %d failed: %s %v", try, description, loggedArgs),
			se.Redacted())
		rc.logger.Log(common.LogInfo, cloudErr.Error())

		if firstErr == nil {
			firstErr = cloudErr
		}

		if try > len(BackoffSchedule5xx) {
			// Out of tries: surface the error from the first try, which may
			// carry more useful context than the last one.
			return firstErr
		}

		if !se.IsServerError() {
			// Non-5xx responses are not transient; escalate even on a retry.
			return cloudErr
		}

		if waitErr := sleepCtx(ctx, BackoffSchedule5xx[try-1]); waitErr != nil {
			return waitErr
		}

		err = op()
		if err == nil {
			return nil
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
