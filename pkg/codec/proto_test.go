package codec

import (
	"errors"
	"testing"

	"github.com/Suhaibinator/NRouter/pkg/request"
	"github.com/Suhaibinator/NRouter/pkg/response"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// TestProtoCodecRoundTrip tests that an encoded message decodes back through a request
func TestProtoCodecRoundTrip(t *testing.T) {
	codec := NewProtoCodec[*wrapperspb.StringValue, *wrapperspb.StringValue]()

	res := response.New()
	if err := codec.Encode(res, wrapperspb.String("hello")); err != nil {
		t.Fatalf("Encode() returned error: %v", err)
	}
	if res.Header("Content-Type") != "application/x-protobuf" {
		t.Errorf("Expected Content-Type %q, got %q", "application/x-protobuf", res.Header("Content-Type"))
	}

	req := request.New(request.MethodPost, "/test", "HTTP/1.1", nil, request.TextBody(res.Body()))
	decoded, err := codec.Decode(req)
	if err != nil {
		t.Fatalf("Decode() returned error: %v", err)
	}
	if decoded.GetValue() != "hello" {
		t.Errorf("Expected %q, got %q", "hello", decoded.GetValue())
	}
}

// TestProtoCodecDecodeError tests that unmarshal errors are returned
func TestProtoCodecDecodeError(t *testing.T) {
	codec := NewProtoCodec[*wrapperspb.StringValue, *wrapperspb.StringValue]()

	originalUnmarshal := protoUnmarshal
	defer func() { protoUnmarshal = originalUnmarshal }()
	protoUnmarshal = func(b []byte, m proto.Message) error {
		return errors.New("unmarshal error")
	}

	req := request.New(request.MethodPost, "/test", "HTTP/1.1", nil, request.TextBody("x"))
	if _, err := codec.Decode(req); err == nil {
		t.Error("Expected error from Decode")
	}
}

// TestProtoCodecEncodeError tests that marshal errors leave the response untouched
func TestProtoCodecEncodeError(t *testing.T) {
	codec := NewProtoCodec[*wrapperspb.StringValue, *wrapperspb.StringValue]()

	originalMarshal := protoMarshal
	defer func() { protoMarshal = originalMarshal }()
	protoMarshal = func(m proto.Message) ([]byte, error) {
		return nil, errors.New("marshal error")
	}

	res := response.New()
	if err := codec.Encode(res, wrapperspb.String("x")); err == nil {
		t.Error("Expected error from Encode")
	}
	if len(res.Body()) != 0 {
		t.Errorf("Expected empty body, got %q", res.Body())
	}
}
