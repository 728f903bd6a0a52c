package fetch

import (
	"fmt"
	"net/http"
)

// Outcome is the result of a single fetch. The concrete type is always one
// of Success, SkippedNonHTML, HTTPError or NetworkError.
//
// Design decision: outcomes are a closed set behind an unexported method
// rather than a (body, error) pair. A non-HTML page or a 404 is an
// expected result, not a failure, and callers switch on the type.
type Outcome interface {
	// Describe returns a short human readable summary of the outcome.
	Describe() string

	outcome()
}

// Success is an HTML page that was retrieved with a 2xx status.
type Success struct {
	// Body is the response body decoded to UTF-8.
	Body string

	// ContentType is the raw Content-Type header value.
	ContentType string
}

// SkippedNonHTML is a 2xx response whose content type is not text/html.
// The body is never read.
type SkippedNonHTML struct {
	ContentType string
}

// HTTPError is a response with a non-2xx status code.
type HTTPError struct {
	StatusCode int
}

// NetworkError is a transport level failure: DNS, refused connection,
// timeout, cancelled context or a broken body stream.
type NetworkError struct {
	Message string
}

func (Success) outcome()        {}
func (SkippedNonHTML) outcome() {}
func (HTTPError) outcome()      {}
func (NetworkError) outcome()   {}

// Describe implements Outcome.
func (s Success) Describe() string {
	return fmt.Sprintf("html page (%d bytes)", len(s.Body))
}

// Describe implements Outcome.
func (s SkippedNonHTML) Describe() string {
	ct := s.ContentType
	if ct == "" {
		ct = "unknown"
	}
	return "non-HTML content (type: " + ct + ")"
}

// Describe implements Outcome.
func (e HTTPError) Describe() string {
	text := http.StatusText(e.StatusCode)
	if text == "" {
		return fmt.Sprintf("HTTP status %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP status %d %s", e.StatusCode, text)
}

// Describe implements Outcome.
func (e NetworkError) Describe() string {
	return "network error: " + e.Message
}
