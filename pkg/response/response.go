// Package response provides the mutable response accumulated during dispatch.
package response

import (
	"net/http"
	"sort"
	"strconv"
)

// StatusNotSet is the status of a response nobody has written a status to.
const StatusNotSet = 0

// Response accumulates the status, headers and body produced by middleware
// and handlers. It is owned by a single dispatch and is not safe for
// concurrent use.
type Response struct {
	status  int
	headers map[string]string
	body    []byte
}

// New creates an empty response.
func New() *Response {
	return &Response{headers: make(map[string]string)}
}

// SetStatus sets the status code.
func (r *Response) SetStatus(code int) *Response {
	r.status = code
	return r
}

// Status returns the status code, or StatusNotSet.
func (r *Response) Status() int {
	return r.status
}

// IsStatusSet reports whether a status code has been written.
func (r *Response) IsStatusSet() bool {
	return r.status != StatusNotSet
}

// EffectiveStatus returns the status the transport would send:
// 200 when no status has been set.
func (r *Response) EffectiveStatus() int {
	if r.status == StatusNotSet {
		return http.StatusOK
	}
	return r.status
}

// SetHeader inserts or overwrites a header. Keys are canonicalized.
func (r *Response) SetHeader(key, value string) *Response {
	r.headers[http.CanonicalHeaderKey(key)] = value
	return r
}

// Header returns the value of a header, or "" when absent.
func (r *Response) Header(key string) string {
	return r.headers[http.CanonicalHeaderKey(key)]
}

// Headers returns a copy of the header map.
func (r *Response) Headers() map[string]string {
	headers := make(map[string]string, len(r.headers))
	for key, value := range r.headers {
		headers[key] = value
	}
	return headers
}

// Body returns the body bytes.
func (r *Response) Body() []byte {
	return r.body
}

// BodyMut returns a handle to the body buffer for in-place transformation.
func (r *Response) BodyMut() *[]byte {
	return &r.body
}

// SetBody replaces the body.
func (r *Response) SetBody(body []byte) *Response {
	r.body = body
	return r
}

// Write appends p to the body. It never fails.
func (r *Response) Write(p []byte) (int, error) {
	r.body = append(r.body, p...)
	return len(p), nil
}

// WriteTo writes the response to a net/http writer. An unset status is sent
// as 200 and Content-Length is always derived from the body.
func (r *Response) WriteTo(w http.ResponseWriter) error {
	keys := make([]string, 0, len(r.headers))
	for key := range r.headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		w.Header().Set(key, r.headers[key])
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(r.body)))

	w.WriteHeader(r.EffectiveStatus())
	if len(r.body) == 0 {
		return nil
	}
	_, err := w.Write(r.body)
	return err
}
