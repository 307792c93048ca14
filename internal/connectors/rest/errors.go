package rest

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrPageLimitExceeded indicates a listing hit its MaxPages bound without
// reaching a termination condition.
var ErrPageLimitExceeded = errors.New("rest: page limit exceeded")

// ErrorKind separates failures with no response from non-2xx responses.
type ErrorKind int

const (
	// KindTransport means no response was received.
	KindTransport ErrorKind = iota + 1
	// KindHTTPStatus means the service answered with a non-2xx status.
	KindHTTPStatus
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindHTTPStatus:
		return "http status"
	default:
		return "unknown"
	}
}

// RequestError reports a failed endpoint call.
type RequestError struct {
	Kind       ErrorKind
	StatusCode int
	Method     string
	URL        string
	Err        error
}

func (e *RequestError) Error() string {
	if e.Kind == KindHTTPStatus {
		return fmt.Sprintf("request failed: %s %s: status %d: %v", e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("request failed: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// FailureKind names the failure for failure records.
func (e *RequestError) FailureKind() string { return "RequestError" }

func statusError(code int) error {
	return errors.New(http.StatusText(code))
}

// IsNotFound checks if the error is a 404 from the service.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden checks if the error indicates a forbidden resource.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsTransport checks if the call never produced a response.
func IsTransport(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind == KindTransport
	}
	return false
}

func hasStatus(err error, code int) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind == KindHTTPStatus && reqErr.StatusCode == code
	}
	return false
}
