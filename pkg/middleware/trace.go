package middleware

import (
	"github.com/Suhaibinator/NRouter/pkg/common"
	"github.com/Suhaibinator/NRouter/pkg/request"
	"github.com/Suhaibinator/NRouter/pkg/response"
	"github.com/google/uuid"
)

// TraceIDKey is the local holding the trace ID of a request
const TraceIDKey = "trace_id"

// TraceIDHeader carries the trace ID in both directions
const TraceIDHeader = "X-Request-Id"

// TraceMiddleware creates a Before middleware that assigns each request a
// trace ID. An incoming X-Request-Id is reused; otherwise a UUID is generated.
// The ID is stored as a local and echoed in the response header.
func TraceMiddleware() common.Middleware {
	return common.MiddlewareFunc(func(req *request.Request, res *response.Response) common.Signal {
		traceID, ok := req.Header(TraceIDHeader)
		if !ok || traceID == "" {
			traceID = uuid.New().String()
		}

		req.SetLocal(TraceIDKey, traceID)
		res.SetHeader(TraceIDHeader, traceID)
		return common.Next
	})
}

// GetTraceID returns the trace ID of the request.
// Returns an empty string if no trace ID is found.
func GetTraceID(req *request.Request) string {
	traceID, _ := req.Local(TraceIDKey)
	return traceID
}
