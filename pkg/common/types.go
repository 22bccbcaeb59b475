// Package common provides shared types and utilities used across the NRouter framework.
package common

import (
	"github.com/Suhaibinator/NRouter/pkg/request"
	"github.com/Suhaibinator/NRouter/pkg/response"
)

// Signal is the continuation value returned by a middleware.
type Signal int

const (
	// Next asks the dispatcher to continue with the pipeline.
	Next Signal = iota

	// Stop asks the dispatcher to halt. The dispatcher currently records
	// the signal but keeps running the pipeline.
	Stop
)

// String returns the signal name.
func (s Signal) String() string {
	if s == Stop {
		return "stop"
	}
	return "next"
}

// Phase says when a middleware runs relative to the handler or the child
// router of the node it is attached to.
type Phase int

const (
	// Before middleware runs on the way in, outer nodes first.
	Before Phase = iota

	// After middleware runs on the way out, inner nodes first.
	After
)

// String returns the phase name.
func (p Phase) String() string {
	if p == After {
		return "after"
	}
	return "before"
}

// HandlerFunc is an endpoint registered on a router for one method.
type HandlerFunc func(req *request.Request, res *response.Response)

// Middleware inspects or mutates the request and response.
// It must not retain either after Handle returns.
type Middleware interface {
	Handle(req *request.Request, res *response.Response) Signal
}

// MiddlewareFunc adapts a function to the Middleware interface.
type MiddlewareFunc func(req *request.Request, res *response.Response) Signal

// Handle calls f(req, res).
func (f MiddlewareFunc) Handle(req *request.Request, res *response.Response) Signal {
	return f(req, res)
}

// Phased is a middleware tagged with the phase it runs in.
type Phased struct {
	Phase      Phase
	Middleware Middleware
}

// Pre tags m as a Before middleware.
func Pre(m Middleware) Phased {
	return Phased{Phase: Before, Middleware: m}
}

// Post tags m as an After middleware.
func Post(m Middleware) Phased {
	return Phased{Phase: After, Middleware: m}
}
