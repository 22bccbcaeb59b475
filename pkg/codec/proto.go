package codec

import (
	"errors"
	"reflect"

	"github.com/Suhaibinator/NRouter/pkg/request"
	"github.com/Suhaibinator/NRouter/pkg/response"
	"google.golang.org/protobuf/proto"
)

var (
	protoMarshal   = proto.Marshal
	protoUnmarshal = proto.Unmarshal
)

// ProtoCodec is a codec that uses Protocol Buffers for marshaling and unmarshaling.
// T and U must be pointer types implementing proto.Message.
type ProtoCodec[T proto.Message, U proto.Message] struct{}

// Decode unmarshals the raw request body into a new T.
func (c *ProtoCodec[T, U]) Decode(req *request.Request) (T, error) {
	var zero T

	typ := reflect.TypeOf(zero)
	if typ == nil || typ.Kind() != reflect.Ptr {
		return zero, errors.New("type T must be a pointer to a proto message")
	}

	msg, ok := reflect.New(typ.Elem()).Interface().(T)
	if !ok {
		return zero, errors.New("failed to create proto message of type T")
	}

	if err := protoUnmarshal(request.Bytes(req.Body()), msg); err != nil {
		return zero, err
	}
	return msg, nil
}

// Encode marshals resp into the response body with the protobuf content type.
func (c *ProtoCodec[T, U]) Encode(res *response.Response, resp U) error {
	body, err := protoMarshal(resp)
	if err != nil {
		return err
	}

	res.SetHeader("Content-Type", "application/x-protobuf")
	res.SetBody(body)
	return nil
}

// NewProtoCodec creates a new ProtoCodec instance for the specified types.
func NewProtoCodec[T proto.Message, U proto.Message]() *ProtoCodec[T, U] {
	return &ProtoCodec[T, U]{}
}
