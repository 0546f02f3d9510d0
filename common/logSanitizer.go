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
	"strings"
)

type LogSanitizer interface {
	SanitizeLogMessage(raw string) string
}

// cloudShareLogSanitizer performs string-replacement based log redaction.
// This serves as a backstop, to help make sure that secrets don't get logged.
// We already avoid logging request bodies and credential arguments at the
// call sites, but service error responses can quote back parts of the signed
// request, and if those errors are logged then those secrets will leak into
// the logs if we don't have this type to filter them out.
type cloudShareLogSanitizer struct {
}

func NewCloudShareLogSanitizer() LogSanitizer {
	return &cloudShareLogSanitizer{}
}

const SigRedactedPlaceholder = "sig-REDACTED"

// SignatureDoesNotMatchRedacted replaces a SignatureDoesNotMatch response
// body. Those responses quote the string-to-sign, which includes material an
// attacker could use to forge requests, so the whole body goes.
const SignatureDoesNotMatchRedacted = "SignatureDoesNotMatch response redacted"

// SanitizeLogMessage removes credentials and credential-like strings that are
// expected to exist in material logged by this application: signature values
// of the type found in SAS tokens and AWS presigned URLs, and
// SignatureDoesNotMatch response bodies.
// The implementation uses a 'to lower' of the raw string, because the
// alternative (of using case-insensitive regexs) was surprisingly measured as
// 36 times slower in testing.
func (s *cloudShareLogSanitizer) SanitizeLogMessage(raw string) string {
	raw = s.redactQueryParam(raw, "sig=")             // SAS signatures
	raw = s.redactQueryParam(raw, "x-amz-signature=") // AWS presigned URLs
	if ContainsSignatureDoesNotMatch(raw) {
		// too hard to safely pick apart the body, redact the whole line
		return SignatureDoesNotMatchRedacted
	}
	return raw
}

// ContainsSignatureDoesNotMatch reports whether a response body quotes a
// SignatureDoesNotMatch error, in any casing.
func ContainsSignatureDoesNotMatch(body string) bool {
	return strings.Contains(strings.ToLower(body), "signaturedoesnotmatch")
}

func (s *cloudShareLogSanitizer) redactQueryParam(raw string, paramName string) string {
	lower := strings.ToLower(raw)
	out := strings.Builder{}
	start := 0
	for {
		i := strings.Index(lower[start:], paramName)
		if i < 0 {
			out.WriteString(raw[start:])
			return out.String()
		}
		i += start + len(paramName)
		out.WriteString(raw[start:i])
		out.WriteString(SigRedactedPlaceholder)
		// skip the original value, which runs to the next separator
		end := strings.IndexAny(lower[i:], "&\"' \n")
		if end < 0 {
			return out.String()
		}
		start = i + end
	}
}
