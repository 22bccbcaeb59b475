package router

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/Suhaibinator/NRouter/pkg/common"
	"github.com/Suhaibinator/NRouter/pkg/request"
	"github.com/Suhaibinator/NRouter/pkg/response"
	"go.uber.org/zap"
)

// Router is one node of the routing tree. It owns a method table, its child
// routers keyed by path segment and two ordered middleware chains.
//
// A tree must be fully assembled before the first request is served; it is
// read-only afterwards and may then be shared by concurrent requests.
type Router struct {
	logger      *zap.Logger
	endpoints   map[request.Method]common.HandlerFunc
	subroutes   map[string]*Router
	before      common.MiddlewareChain
	after       common.MiddlewareChain
	maxBodySize int64
	wg          sync.WaitGroup
	shutdown    bool
	shutdownMu  sync.RWMutex
}

// New creates an empty router. It inherits the logger of the router it is
// attached to.
func New() *Router {
	return &Router{
		endpoints: make(map[request.Method]common.HandlerFunc),
		subroutes: make(map[string]*Router),
	}
}

// NewRouter creates a router from a configuration, building the sub-router
// tree recursively. It fails if two sub-routers share a segment.
func NewRouter(config RouterConfig) (*Router, error) {
	r := New()
	r.logger = config.Logger
	r.maxBodySize = config.MaxBodySize
	r.Use(config.Middlewares...)

	for _, sr := range config.SubRouters {
		if err := r.registerSubRouter(sr); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// registerSubRouter builds the node described by sr and attaches it to r.
func (r *Router) registerSubRouter(sr SubRouterConfig) error {
	child := New()
	child.Use(sr.Middlewares...)
	for _, route := range sr.Routes {
		for _, method := range route.Methods {
			child.Handle(method, route.Handler)
		}
	}
	for _, nested := range sr.SubRouters {
		if err := child.registerSubRouter(nested); err != nil {
			return fmt.Errorf("%s/%w", strings.TrimPrefix(sr.Segment, "/"), err)
		}
	}
	return r.UseRouter(sr.Segment, child)
}

// Handle registers fn for method on this node. Registering the same method
// again replaces the previous handler.
func (r *Router) Handle(method request.Method, fn common.HandlerFunc) *Router {
	r.endpoints[method] = fn
	return r
}

// Get registers a GET handler.
func (r *Router) Get(fn common.HandlerFunc) *Router { return r.Handle(request.MethodGet, fn) }

// Head registers a HEAD handler.
func (r *Router) Head(fn common.HandlerFunc) *Router { return r.Handle(request.MethodHead, fn) }

// Post registers a POST handler.
func (r *Router) Post(fn common.HandlerFunc) *Router { return r.Handle(request.MethodPost, fn) }

// Put registers a PUT handler.
func (r *Router) Put(fn common.HandlerFunc) *Router { return r.Handle(request.MethodPut, fn) }

// Patch registers a PATCH handler.
func (r *Router) Patch(fn common.HandlerFunc) *Router { return r.Handle(request.MethodPatch, fn) }

// Delete registers a DELETE handler.
func (r *Router) Delete(fn common.HandlerFunc) *Router { return r.Handle(request.MethodDelete, fn) }

// Options registers an OPTIONS handler.
func (r *Router) Options(fn common.HandlerFunc) *Router { return r.Handle(request.MethodOptions, fn) }

// Connect registers a CONNECT handler.
func (r *Router) Connect(fn common.HandlerFunc) *Router { return r.Handle(request.MethodConnect, fn) }

// Trace registers a TRACE handler.
func (r *Router) Trace(fn common.HandlerFunc) *Router { return r.Handle(request.MethodTrace, fn) }

// UseRouter attaches child under segment. A leading "/" in segment is
// ignored. It returns ErrPathExists, leaving the existing child in place,
// if the segment is already taken.
func (r *Router) UseRouter(segment string, child *Router) error {
	if child == nil {
		return ErrNilRouter
	}
	segment = strings.TrimPrefix(segment, "/")
	if _, exists := r.subroutes[segment]; exists {
		return fmt.Errorf("%w: %q", ErrPathExists, segment)
	}
	r.subroutes[segment] = child
	if r.logger != nil {
		child.inheritLogger(r.logger)
	}
	return nil
}

// inheritLogger sets logger on every node of the subtree that has none.
func (r *Router) inheritLogger(logger *zap.Logger) {
	if r.logger != nil {
		return
	}
	r.logger = logger
	for _, child := range r.subroutes {
		child.inheritLogger(logger)
	}
}

// AddMiddleware appends middlewares to the chain of the given phase.
// Within a phase, middlewares run in the order they were added.
func (r *Router) AddMiddleware(phase common.Phase, middlewares ...common.Middleware) *Router {
	if phase == common.After {
		r.after = r.after.Append(middlewares...)
	} else {
		r.before = r.before.Append(middlewares...)
	}
	return r
}

// Use appends phase-tagged middlewares to their chains.
func (r *Router) Use(middlewares ...common.Phased) *Router {
	for _, m := range middlewares {
		r.AddMiddleware(m.Phase, m.Middleware)
	}
	return r
}

// Serve routes a request from the root of the tree. The first path segment
// selects a top-level sub-router, which is dispatched with the full path
// between the root's own Before and After chains. When no top-level
// sub-router matches, or the path is empty, nothing runs and the response is
// left untouched; unlike a miss further down, no 404 is set.
func (r *Router) Serve(req *request.Request, res *response.Response) {
	path := req.Path()
	if len(path) == 0 {
		return
	}

	child, ok := r.subroutes[path[0]]
	if !ok {
		r.log().Debug("No top-level route",
			zap.String("method", req.Method().String()),
			zap.String("segment", path[0]),
		)
		return
	}

	r.runChain(common.Before, req, res)
	child.dispatch(req, res, path)
	r.runChain(common.After, req, res)
}

// dispatch runs this node's Before chain, then either the handler for the
// request method (when path[0] is the last segment) or the child matching
// path[1], then the After chain. A missing child sets 404; a missing method
// handler leaves the response as it is.
func (r *Router) dispatch(req *request.Request, res *response.Response, path []string) {
	r.runChain(common.Before, req, res)

	if len(path) == 1 {
		if endpoint, ok := r.endpoints[req.Method()]; ok {
			endpoint(req, res)
		} else {
			r.log().Debug("No handler for method",
				zap.String("method", req.Method().String()),
				zap.String("segment", path[0]),
			)
		}
	} else if child, ok := r.subroutes[path[1]]; ok {
		child.dispatch(req, res, path[1:])
	} else {
		r.log().Debug("Route not found",
			zap.String("method", req.Method().String()),
			zap.String("segment", path[1]),
		)
		res.SetStatus(http.StatusNotFound)
	}

	r.runChain(common.After, req, res)
}

// runChain runs the chain for phase. Stop signals are logged and otherwise
// ignored.
func (r *Router) runChain(phase common.Phase, req *request.Request, res *response.Response) {
	chain := r.before
	if phase == common.After {
		chain = r.after
	}
	if stops := chain.Run(req, res); stops > 0 {
		r.log().Debug("Middleware signalled stop",
			zap.String("phase", phase.String()),
			zap.Int("stops", stops),
		)
	}
}

// Walk calls fn for every method registered below this router, in path
// order. The router's own handlers are not visited since Serve never
// reaches them.
func (r *Router) Walk(fn func(path string, method request.Method)) {
	for _, segment := range sortedKeys(r.subroutes) {
		r.subroutes[segment].walk("/"+segment, fn)
	}
}

func (r *Router) walk(prefix string, fn func(path string, method request.Method)) {
	methods := make([]string, 0, len(r.endpoints))
	for method := range r.endpoints {
		methods = append(methods, string(method))
	}
	sort.Strings(methods)
	for _, method := range methods {
		fn(prefix, request.Method(method))
	}

	for _, segment := range sortedKeys(r.subroutes) {
		r.subroutes[segment].walk(strings.TrimSuffix(prefix, "/")+"/"+segment, fn)
	}
}

func sortedKeys(m map[string]*Router) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

var nopLogger = zap.NewNop()

func (r *Router) log() *zap.Logger {
	if r.logger == nil {
		return nopLogger
	}
	return r.logger
}
