package router

import (
	"errors"
	"fmt"
)

var (
	// ErrPathExists is returned by UseRouter when the segment already has a child.
	ErrPathExists = errors.New("path already exists")

	// ErrNilRouter is returned by UseRouter when the child is nil.
	ErrNilRouter = errors.New("router is nil")
)

// HTTPError represents an HTTP error with a status code and message.
// When returned from a GenericHandler, the router uses the status code and
// message for the response instead of a generic 500.
type HTTPError struct {
	StatusCode int    // HTTP status code (e.g., 400, 404, 500)
	Message    string // Error message to be sent in the response body
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// NewHTTPError creates a new HTTPError with the specified status code and message.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}
