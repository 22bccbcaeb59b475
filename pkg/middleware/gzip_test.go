package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"

	"github.com/Suhaibinator/NRouter/pkg/common"
	"github.com/Suhaibinator/NRouter/pkg/request"
	"github.com/Suhaibinator/NRouter/pkg/response"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func requestWithEncoding(acceptEncoding string) *request.Request {
	headers := map[string]string{}
	if acceptEncoding != "" {
		headers["Accept-Encoding"] = acceptEncoding
	}
	return request.New(request.MethodGet, "/", "HTTP/1.1", headers, nil)
}

// TestGzipEncoderSkipsEmptyBody tests that an empty body is never encoded
func TestGzipEncoderSkipsEmptyBody(t *testing.T) {
	encoder := NewGzipEncoder(zap.NewNop())

	for _, header := range []string{"", "gzip", "br, gzip, deflate"} {
		res := response.New()
		if sig := encoder.Handle(requestWithEncoding(header), res); sig != common.Next {
			t.Errorf("Expected Next, got %v", sig)
		}
		if res.Header("Content-Encoding") != "" {
			t.Errorf("Accept-Encoding %q: expected no Content-Encoding on empty body, got %q", header, res.Header("Content-Encoding"))
		}
	}
}

// TestGzipEncoderCompresses tests that a negotiated body is compressed and decompresses back
func TestGzipEncoderCompresses(t *testing.T) {
	encoder := NewGzipEncoder(zap.NewNop())
	original := bytes.Repeat([]byte("hello gzip "), 50)

	res := response.New()
	res.SetBody(append([]byte(nil), original...))

	if sig := encoder.Handle(requestWithEncoding("br, gzip, deflate"), res); sig != common.Next {
		t.Errorf("Expected Next, got %v", sig)
	}

	if res.Header("Content-Encoding") != "gzip" {
		t.Fatalf("Expected Content-Encoding %q, got %q", "gzip", res.Header("Content-Encoding"))
	}
	if bytes.Equal(res.Body(), original) {
		t.Fatal("Expected body to change after compression")
	}

	reader, err := gzip.NewReader(bytes.NewReader(res.Body()))
	if err != nil {
		t.Fatalf("Failed to open gzip reader: %v", err)
	}
	decompressed, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("Failed to decompress: %v", err)
	}
	if !bytes.Equal(decompressed, original) {
		t.Error("Expected decompressed body to match the original")
	}
}

// TestGzipEncoderNotAccepted tests that bodies are left alone without a gzip token
func TestGzipEncoderNotAccepted(t *testing.T) {
	encoder := NewGzipEncoder(zap.NewNop())

	for _, header := range []string{"", "br", "deflate, identity", "gzip;q=1.0", "xgzip"} {
		res := response.New()
		res.SetBody([]byte("plain"))

		encoder.Handle(requestWithEncoding(header), res)

		if res.Header("Content-Encoding") != "" {
			t.Errorf("Accept-Encoding %q: expected no Content-Encoding, got %q", header, res.Header("Content-Encoding"))
		}
		if string(res.Body()) != "plain" {
			t.Errorf("Accept-Encoding %q: expected body untouched, got %q", header, res.Body())
		}
	}
}

// TestGzipEncoderFailure tests that a compression failure keeps the body and the header
func TestGzipEncoderFailure(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	encoder := &GzipEncoder{Level: 42, Logger: zap.New(core)}

	res := response.New()
	res.SetBody([]byte("uncompressed"))

	if sig := encoder.Handle(requestWithEncoding("gzip"), res); sig != common.Next {
		t.Errorf("Expected Next, got %v", sig)
	}

	if res.Header("Content-Encoding") != "gzip" {
		t.Errorf("Expected Content-Encoding to remain set, got %q", res.Header("Content-Encoding"))
	}
	if string(res.Body()) != "uncompressed" {
		t.Errorf("Expected body to stay uncompressed, got %q", res.Body())
	}
	if logs.FilterMessage("Error while compressing").Len() != 1 {
		t.Errorf("Expected one compression error log, got %v", logs.All())
	}
}

func TestAcceptsEncoding(t *testing.T) {
	tests := []struct {
		header   string
		expected bool
	}{
		{"gzip", true},
		{" gzip ", true},
		{"br,gzip", true},
		{"br, deflate", false},
		{"GZIP", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := acceptsEncoding(tt.header, "gzip"); got != tt.expected {
			t.Errorf("acceptsEncoding(%q): expected %v, got %v", tt.header, tt.expected, got)
		}
	}
}
