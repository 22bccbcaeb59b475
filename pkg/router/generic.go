package router

import (
	"errors"
	"net/http"

	"github.com/Suhaibinator/NRouter/pkg/request"
	"github.com/Suhaibinator/NRouter/pkg/response"
	"go.uber.org/zap"
)

// HandleGeneric registers a typed handler for method on r. The codec decodes
// the request body before the handler runs and encodes its result. A decode
// failure answers 400; a handler or encode failure answers 500, or the status
// carried by an *HTTPError.
func HandleGeneric[T any, U any](r *Router, method request.Method, codec Codec[T, U], handler GenericHandler[T, U]) *Router {
	return r.Handle(method, func(req *request.Request, res *response.Response) {
		data, err := codec.Decode(req)
		if err != nil {
			r.handleError(req, res, err, http.StatusBadRequest, "Failed to decode request")
			return
		}

		resp, err := handler(req, data)
		if err != nil {
			r.handleError(req, res, err, http.StatusInternalServerError, "Handler error")
			return
		}

		if err := codec.Encode(res, resp); err != nil {
			r.handleError(req, res, err, http.StatusInternalServerError, "Failed to encode response")
		}
	})
}

// handleError logs err and replaces the response with a plain-text error.
// An *HTTPError overrides statusCode and message.
func (r *Router) handleError(req *request.Request, res *response.Response, err error, statusCode int, message string) {
	r.log().Error(message,
		zap.Error(err),
		zap.String("request", req.String()),
	)

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		statusCode = httpErr.StatusCode
		message = httpErr.Message
	}

	res.SetStatus(statusCode)
	res.SetHeader("Content-Type", "text/plain; charset=utf-8")
	res.SetBody([]byte(message))
}
