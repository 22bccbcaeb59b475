// Package request provides the request model handed to the routing tree.
// All request fields are read-only except the locals, which middleware and
// handlers use to pass values down the dispatch chain of a single request.
package request

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// ErrBodyTooLarge is returned by FromHTTP when the payload exceeds the limit.
var ErrBodyTooLarge = errors.New("request body too large")

// Request is a parsed HTTP request.
type Request struct {
	method     Method
	path       []string
	version    string
	headers    map[string]string
	body       Body
	locals     map[string]string
	remoteAddr string
}

// New creates a Request. Header keys are lowercased, the target is split
// into path segments and a nil body becomes NoBody.
func New(method Method, target, version string, headers map[string]string, body Body) *Request {
	normalized := make(map[string]string, len(headers))
	for key, value := range headers {
		normalized[strings.ToLower(strings.TrimSpace(key))] = value
	}
	if body == nil {
		body = NoBody{}
	}
	return &Request{
		method:  method,
		path:    SplitPath(target),
		version: version,
		headers: normalized,
		body:    body,
		locals:  make(map[string]string),
	}
}

// SplitPath splits a request target into path segments. A single leading
// slash is dropped and the query string is ignored, so "/" yields one empty
// segment and "" yields none.
func SplitPath(target string) []string {
	if i := strings.IndexByte(target, '?'); i >= 0 {
		target = target[:i]
	}
	if target == "" {
		return nil
	}
	target = strings.TrimPrefix(target, "/")
	return strings.Split(target, "/")
}

// FromHTTP converts a net/http request. The path is cleaned before it is
// split and the body is read fully; maxBodySize <= 0 disables the limit.
func FromHTTP(r *http.Request, maxBodySize int64) (*Request, error) {
	headers := make(map[string]string, len(r.Header)+1)
	for key, values := range r.Header {
		headers[key] = strings.Join(values, ", ")
	}
	if r.Host != "" {
		headers["host"] = r.Host
	}

	var raw []byte
	if r.Body != nil {
		reader := io.Reader(r.Body)
		if maxBodySize > 0 {
			reader = io.LimitReader(r.Body, maxBodySize+1)
		}
		var err error
		raw, err = io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		if maxBodySize > 0 && int64(len(raw)) > maxBodySize {
			return nil, ErrBodyTooLarge
		}
	}

	body, err := ParseBody(r.Header.Get("Content-Type"), raw)
	if err != nil {
		return nil, err
	}

	req := New(Method(r.Method), httprouter.CleanPath(r.URL.Path), r.Proto, headers, body)
	req.remoteAddr = r.RemoteAddr
	return req, nil
}

// Method returns the request method.
func (r *Request) Method() Method {
	return r.method
}

// Path returns the path segments. The slice must not be modified.
func (r *Request) Path() []string {
	return r.path
}

// Version returns the protocol version, e.g. "HTTP/1.1".
func (r *Request) Version() string {
	return r.version
}

// RemoteAddr returns the peer address reported by the transport, if any.
func (r *Request) RemoteAddr() string {
	return r.remoteAddr
}

// Header returns the value of a header. The key is matched case-insensitively.
func (r *Request) Header(key string) (string, bool) {
	value, ok := r.headers[strings.ToLower(key)]
	return value, ok
}

// Headers returns a copy of the header map.
func (r *Request) Headers() map[string]string {
	headers := make(map[string]string, len(r.headers))
	for key, value := range r.headers {
		headers[key] = value
	}
	return headers
}

// Body returns the typed body.
func (r *Request) Body() Body {
	return r.body
}

// SetLocal stores a local variable, replacing any previous value.
func (r *Request) SetLocal(key, value string) {
	r.locals[key] = value
}

// Local returns a local variable set earlier in the dispatch chain.
func (r *Request) Local(key string) (string, bool) {
	value, ok := r.locals[key]
	return value, ok
}

// String formats the request line, e.g. "GET /a/b HTTP/1.1".
func (r *Request) String() string {
	return fmt.Sprintf("%s /%s %s", r.method, strings.Join(r.path, "/"), r.version)
}
