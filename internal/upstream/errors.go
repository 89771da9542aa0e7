package upstream

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody caps how much of an upstream error body is kept.
const maxErrorBody = 64 << 10

// Error is a non-2xx upstream response. The gateway reports it as 502 and
// carries the upstream status and raw body along.
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream http error: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("upstream http error: %d %s: %s", e.Status, http.StatusText(e.Status), e.Body)
}

// StatusCode is the status the gateway answers with.
func (e *Error) StatusCode() int { return http.StatusBadGateway }

// UpstreamStatus is the status the upstream answered with.
func (e *Error) UpstreamStatus() int { return e.Status }

// TransportError is a failure to reach the upstream or read its response
// (DNS, TCP, TLS, deadline).
type TransportError struct {
	Err     error
	Timeout bool
}

func (e *TransportError) Error() string { return "upstream unreachable: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// StatusCode maps timeouts to 504 and everything else to 502.
func (e *TransportError) StatusCode() int {
	if e.Timeout {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

// TooLargeError is a buffered upstream body exceeding the read limit.
type TooLargeError struct {
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("upstream response too large (over %d bytes)", e.Limit)
}

// StatusCode is always 502.
func (e *TooLargeError) StatusCode() int { return http.StatusBadGateway }

// IsUpstreamError reports whether err came from the upstream in any form.
func IsUpstreamError(err error) bool {
	var he *Error
	var te *TransportError
	var le *TooLargeError
	return errors.As(err, &he) || errors.As(err, &te) || errors.As(err, &le)
}

func readHTTPError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &Error{Status: resp.StatusCode, Body: string(b)}
}
