// Package middleware provides a collection of middleware components for the NRouter framework.
// Every component implements common.Middleware and is attached to a router
// node in the Before or After phase.
package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/Suhaibinator/NRouter/pkg/common"
	"github.com/Suhaibinator/NRouter/pkg/request"
	"github.com/Suhaibinator/NRouter/pkg/response"
	"go.uber.org/zap"
)

// startTimeKey is the local holding the request start time in Unix nanoseconds
const startTimeKey = "middleware.start_time"

// slowRequestThreshold is the duration above which Logging warns
const slowRequestThreshold = time.Second

// Chain bundles middlewares into one. All of them run in order; the result
// is Stop if any of them returned Stop.
func Chain(middlewares ...common.Middleware) common.Middleware {
	chain := common.NewMiddlewareChain(middlewares...)
	return common.MiddlewareFunc(func(req *request.Request, res *response.Response) common.Signal {
		if chain.Run(req, res) > 0 {
			return common.Stop
		}
		return common.Next
	})
}

// Logging returns a Before/After pair that logs each request once its
// response is complete. Attach both units to the same node, usually the root.
func Logging(logger *zap.Logger) []common.Phased {
	if logger == nil {
		logger = zap.NewNop()
	}

	start := common.MiddlewareFunc(func(req *request.Request, res *response.Response) common.Signal {
		req.SetLocal(startTimeKey, strconv.FormatInt(time.Now().UnixNano(), 10))
		return common.Next
	})

	finish := common.MiddlewareFunc(func(req *request.Request, res *response.Response) common.Signal {
		var duration time.Duration
		if raw, ok := req.Local(startTimeKey); ok {
			if nanos, err := strconv.ParseInt(raw, 10, 64); err == nil {
				duration = time.Since(time.Unix(0, nanos))
			}
		}

		status := res.EffectiveStatus()
		fields := []zap.Field{
			zap.String("method", req.Method().String()),
			zap.String("path", "/"+strings.Join(req.Path(), "/")),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		}
		if traceID := GetTraceID(req); traceID != "" {
			fields = append([]zap.Field{zap.String("trace_id", traceID)}, fields...)
		}

		// Use appropriate log level based on status code and duration
		switch {
		case status >= 500:
			logger.Error("Server error", fields...)
		case status >= 400:
			logger.Warn("Client error", fields...)
		case duration > slowRequestThreshold:
			logger.Warn("Slow request", fields...)
		default:
			logger.Debug("Request", fields...)
		}
		return common.Next
	})

	return []common.Phased{common.Pre(start), common.Post(finish)}
}

// CORS is a Before middleware that adds CORS headers to the response.
// Preflight requests get a 200 status; the node's OPTIONS handler, if any,
// still runs afterwards.
func CORS(origins []string, methods []string, headers []string) common.Middleware {
	return common.MiddlewareFunc(func(req *request.Request, res *response.Response) common.Signal {
		if len(origins) > 0 {
			res.SetHeader("Access-Control-Allow-Origin", strings.Join(origins, ", "))
		}
		if len(methods) > 0 {
			res.SetHeader("Access-Control-Allow-Methods", strings.Join(methods, ", "))
		}
		if len(headers) > 0 {
			res.SetHeader("Access-Control-Allow-Headers", strings.Join(headers, ", "))
		}

		if req.Method() == request.MethodOptions {
			res.SetStatus(200)
		}
		return common.Next
	})
}
