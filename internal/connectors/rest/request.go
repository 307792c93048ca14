package rest

import (
	"net/http"
	"sort"
	"strings"
)

// Method is the closed set of HTTP methods endpoints use.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
)

// IsValid returns true if the method is one of the supported four.
func (m Method) IsValid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodDelete:
		return true
	default:
		return false
	}
}

// Request is one logical endpoint call. It is an immutable value: the With*
// methods return modified copies, so one shape can be reused across pages.
type Request struct {
	method Method
	path   string
	query  map[string]string
	body   any
}

// NewRequest starts a request for a path relative to the service home.
func NewRequest(method Method, path string) Request {
	return Request{method: method, path: path}
}

// Get is shorthand for NewRequest(MethodGet, path).
func Get(path string) Request {
	return NewRequest(MethodGet, path)
}

// Post is shorthand for NewRequest(MethodPost, path).
func Post(path string) Request {
	return NewRequest(MethodPost, path)
}

// WithParam sets one query parameter. Empty values are not serialised.
func (r Request) WithParam(key, value string) Request {
	q := make(map[string]string, len(r.query)+1)
	for k, v := range r.query {
		q[k] = v
	}
	if value == "" {
		delete(q, key)
	} else {
		q[key] = value
	}
	r.query = q
	return r
}

// WithParams sets several query parameters at once.
func (r Request) WithParams(params map[string]string) Request {
	for k, v := range params {
		r = r.WithParam(k, v)
	}
	return r
}

// WithBody attaches a value to be sent as JSON.
func (r Request) WithBody(body any) Request {
	r.body = body
	return r
}

// Method returns the HTTP method.
func (r Request) Method() Method { return r.method }

// Path returns the path relative to home.
func (r Request) Path() string { return r.path }

// Body returns the JSON body value, or nil.
func (r Request) Body() any { return r.body }

// Param returns one query parameter.
func (r Request) Param(key string) string { return r.query[key] }

// EncodedQuery renders the query string with RFC 3986 encoding and keys in
// ascending order. It returns "" when there are no parameters.
func (r Request) EncodedQuery() string {
	if len(r.query) == 0 {
		return ""
	}
	keys := make([]string, 0, len(r.query))
	for k := range r.query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, PercentEncode(k)+"="+PercentEncode(r.query[k]))
	}
	return strings.Join(parts, "&")
}

// Response is the raw outcome of a successful call.
type Response struct {
	StatusCode int
	Body       string
}
