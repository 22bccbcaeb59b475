package middleware

import (
	"bytes"
	"compress/gzip"
	"strings"

	"github.com/Suhaibinator/NRouter/pkg/common"
	"github.com/Suhaibinator/NRouter/pkg/request"
	"github.com/Suhaibinator/NRouter/pkg/response"
	"go.uber.org/zap"
)

// gzipEncoding is the content-coding token for gzip
const gzipEncoding = "gzip"

// GzipEncoder is an After middleware that compresses the response body when
// the client lists gzip in Accept-Encoding. A compression failure is logged
// and the body is left as it was, with Content-Encoding already set.
type GzipEncoder struct {
	Level  int         // Compression level passed to gzip.NewWriterLevel
	Logger *zap.Logger // Logger for compression failures
}

// NewGzipEncoder creates a GzipEncoder using the default compression level.
func NewGzipEncoder(logger *zap.Logger) *GzipEncoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GzipEncoder{
		Level:  gzip.DefaultCompression,
		Logger: logger,
	}
}

// Handle implements common.Middleware. It always returns common.Next.
func (g *GzipEncoder) Handle(req *request.Request, res *response.Response) common.Signal {
	body := res.BodyMut()
	if len(*body) == 0 {
		return common.Next
	}

	header, ok := req.Header("accept-encoding")
	if !ok || !acceptsEncoding(header, gzipEncoding) {
		return common.Next
	}

	res.SetHeader("Content-Encoding", gzipEncoding)

	compressed, err := g.encode(*body)
	if err != nil {
		g.logger().Error("Error while compressing",
			zap.Error(err),
			zap.String("request", req.String()),
		)
		return common.Next
	}
	*body = compressed
	return common.Next
}

func (g *GzipEncoder) encode(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, g.Level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(body); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *GzipEncoder) logger() *zap.Logger {
	if g.Logger == nil {
		return zap.NewNop()
	}
	return g.Logger
}

// acceptsEncoding reports whether the comma-separated list contains token.
// Tokens are compared exactly after trimming whitespace.
func acceptsEncoding(header, token string) bool {
	for _, item := range strings.Split(header, ",") {
		if strings.TrimSpace(item) == token {
			return true
		}
	}
	return false
}
