// Package router provides a nested routing tree with phase-ordered middleware.
// Each Router is one path segment's scope; Before middleware runs outer to
// inner on the way in and After middleware runs inner to outer on the way out.
package router

import (
	"github.com/Suhaibinator/NRouter/pkg/common"
	"github.com/Suhaibinator/NRouter/pkg/request"
	"github.com/Suhaibinator/NRouter/pkg/response"
	"go.uber.org/zap"
)

// RouterConfig defines the configuration of a root router.
// Middlewares attached to the root run for every request that reaches a
// top-level sub-router.
type RouterConfig struct {
	Logger      *zap.Logger       // Logger for all router operations; sub-routers without their own logger inherit it
	MaxBodySize int64             // Maximum request body size accepted by ServeHTTP; 0 means unlimited
	Middlewares []common.Phased   // Middlewares attached to the root node
	SubRouters  []SubRouterConfig // Top-level sub-routers keyed by their first path segment
}

// SubRouterConfig defines one node of the routing tree below the root.
type SubRouterConfig struct {
	Segment     string            // Path segment matched exactly; a leading "/" is ignored
	Middlewares []common.Phased   // Middlewares attached to this node
	Routes      []RouteConfig     // Handlers for requests whose path ends at this node
	SubRouters  []SubRouterConfig // Nested sub-routers
}

// RouteConfig registers a handler for one or more methods on a node.
type RouteConfig struct {
	Methods []request.Method   // HTTP methods this route handles
	Handler common.HandlerFunc // Handler invoked when the path ends at the node
}

// GenericHandler defines a handler function with generic request and response types.
// It receives the request and the decoded payload and returns the value to encode.
type GenericHandler[T any, U any] func(req *request.Request, data T) (U, error)

// Codec defines an interface for decoding request payloads and encoding
// response payloads. The codec package provides JSON and Protocol Buffers
// implementations.
type Codec[T any, U any] interface {
	// Decode extracts a value of type T from the request body.
	Decode(req *request.Request) (T, error)

	// Encode serializes resp into the response body and sets Content-Type.
	Encode(res *response.Response, resp U) error
}
