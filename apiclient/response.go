package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/apitests/reqres-contract-tests/framework"
)

const maxBodyInErrorMessage = 200

// Response is the result of one request. It is not modified after Request returns it.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// Text returns the raw body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// JSON parses the body. It returns an error if the body is empty or is not well-formed JSON,
// so that a malformed body is never confused with a JSON null.
func (r *Response) JSON() (ldvalue.Value, error) {
	if !json.Valid(r.Body) {
		return ldvalue.Null(), fmt.Errorf("response body is not valid JSON: %q", truncate(r.Text(), maxBodyInErrorMessage))
	}
	return ldvalue.Parse(r.Body), nil
}

func (r *Response) String() string {
	return fmt.Sprintf("HTTP %d (%s): %s", r.StatusCode, r.ContentType(), truncate(r.Text(), maxBodyInErrorMessage))
}

// truncate shortens s to at most limit bytes without splitting a UTF-8 sequence.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// responseBodyAttachment describes the body in whatever form is most readable for its
// declared content type.
func responseBodyAttachment(r *Response) framework.Attachment {
	contentType := r.ContentType()
	switch {
	case len(r.Body) == 0:
		return framework.TextAttachment("Empty Response", []byte("empty response"))
	case strings.Contains(contentType, "text/html"):
		return framework.TextAttachment("Text/HTML Response", r.Body)
	case strings.Contains(contentType, "application/json"):
		var buf bytes.Buffer
		if err := json.Indent(&buf, r.Body, "", "    "); err == nil {
			return framework.JSONAttachment("Response Json", buf.Bytes())
		}
	}
	return framework.TextAttachment("Response Text", r.Body)
}
