package router

import (
	"context"
	"errors"
	"net/http"

	"github.com/Suhaibinator/NRouter/pkg/request"
	"github.com/Suhaibinator/NRouter/pkg/response"
	"go.uber.org/zap"
)

// ServeHTTP implements http.Handler. It converts the request, serves it
// through the tree and writes the accumulated response. Panics raised by
// handlers or middleware are recovered and answered with a 500.
func (r *Router) ServeHTTP(w http.ResponseWriter, httpReq *http.Request) {
	r.shutdownMu.RLock()
	if r.shutdown {
		r.shutdownMu.RUnlock()
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}
	r.wg.Add(1)
	r.shutdownMu.RUnlock()
	defer r.wg.Done()

	req, err := request.FromHTTP(httpReq, r.maxBodySize)
	if err != nil {
		status := http.StatusBadRequest
		message := "Bad Request"
		if errors.Is(err, request.ErrBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
			message = "Request Entity Too Large"
		}
		r.log().Warn("Failed to read request",
			zap.Error(err),
			zap.String("method", httpReq.Method),
			zap.String("path", httpReq.URL.Path),
		)
		http.Error(w, message, status)
		return
	}

	res := response.New()
	if !r.serveRecovered(req, res) {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := res.WriteTo(w); err != nil {
		r.log().Debug("Failed to write response",
			zap.Error(err),
			zap.String("method", httpReq.Method),
			zap.String("path", httpReq.URL.Path),
		)
	}
}

// serveRecovered calls Serve and reports false if it panicked.
func (r *Router) serveRecovered(req *request.Request, res *response.Response) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log().Error("Panic recovered",
				zap.Any("panic", rec),
				zap.String("request", req.String()),
			)
			ok = false
		}
	}()

	r.Serve(req, res)
	return true
}

// Shutdown gracefully shuts down the router.
// It stops accepting new requests and waits for existing requests to complete.
// If the context is canceled before all requests complete, it returns the context's error.
func (r *Router) Shutdown(ctx context.Context) error {
	r.shutdownMu.Lock()
	r.shutdown = true
	r.shutdownMu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
