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
	"fmt"

	"github.com/pkg/errors"

	"github.com/wastore/cloudshare/common"
)

// ServiceError is how container implementations report a failed service
// request: a numeric HTTP-style status, a short human reason, and (sometimes)
// the response body. The body can quote back parts of the signed request, so
// it must never be logged raw; see Redacted.
type ServiceError struct {
	StatusCode int
	Reason     string
	Body       string
}

func (e *ServiceError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("service error %d", e.StatusCode)
	}
	return fmt.Sprintf("service error %d: %s", e.StatusCode, e.Reason)
}

// IsServerError reports whether the status is in [500, 600), i.e. the class
// of transient failures worth retrying.
func (e *ServiceError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// Redacted returns a copy safe to surface and log. SignatureDoesNotMatch
// responses include the string-to-sign, so their bodies are dropped wholesale.
func (e *ServiceError) Redacted() *ServiceError {
	if common.ContainsSignatureDoesNotMatch(e.Body) {
		redacted := *e
		redacted.Body = common.SignatureDoesNotMatchRedacted
		return &redacted
	}
	return e
}

// AsServiceError unwraps err down to a *ServiceError, if there is one.
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	ok := errors.As(err, &se)
	return se, ok
}

// HasStatusCode reports whether err is (or wraps) a ServiceError with the
// given status.
func HasStatusCode(err error, status int) bool {
	se, ok := AsServiceError(err)
	return ok && se.StatusCode == status
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// CloudError is what the retry wrapper surfaces when a container operation
// finally fails with a service error. When the 5xx retries are exhausted it
// wraps the ServiceError of the first failed attempt, since early errors
// frequently carry more diagnostic context than whatever the last retry
// happened to hit; a non-5xx failure wraps the ServiceError of the attempt
// that hit it.
type CloudError struct {
	msg   string
	cause error
}

func newCloudError(msg string, cause error) *CloudError {
	return &CloudError{msg: msg, cause: cause}
}

func (e *CloudError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *CloudError) Unwrap() error { return e.cause }

// Cause supports github.com/pkg/errors traversal.
func (e *CloudError) Cause() error { return e.cause }

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// ProtocolError means the service violated its own listing contract (e.g. a
// non-advancing continuation marker). Never retried: the store is looping,
// and asking again gets the same answer.
type ProtocolError struct {
	msg string
}

func newProtocolError(format string, args ...interface{}) *ProtocolError {
	return &ProtocolError{msg: fmt.Sprintf(format, args...)}
}

func (e *ProtocolError) Error() string { return e.msg }
