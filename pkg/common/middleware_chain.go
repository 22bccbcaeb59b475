package common

import (
	"github.com/Suhaibinator/NRouter/pkg/request"
	"github.com/Suhaibinator/NRouter/pkg/response"
)

// MiddlewareChain represents an ordered chain of middleware
type MiddlewareChain []Middleware

// NewMiddlewareChain creates a new middleware chain
func NewMiddlewareChain(middlewares ...Middleware) MiddlewareChain {
	return middlewares
}

// Append adds middleware to the end of the chain
func (c MiddlewareChain) Append(middlewares ...Middleware) MiddlewareChain {
	return append(c, middlewares...)
}

// Prepend adds middleware to the beginning of the chain
func (c MiddlewareChain) Prepend(middlewares ...Middleware) MiddlewareChain {
	result := make(MiddlewareChain, len(middlewares)+len(c))
	copy(result, middlewares)
	copy(result[len(middlewares):], c)
	return result
}

// Run invokes every middleware in order. A Stop signal does not end the
// run; the number of Stop signals seen is returned.
func (c MiddlewareChain) Run(req *request.Request, res *response.Response) int {
	stops := 0
	for _, m := range c {
		if m.Handle(req, res) == Stop {
			stops++
		}
	}
	return stops
}
