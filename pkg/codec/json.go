// Package codec provides encoding and decoding functionality for different data formats.
package codec

import (
	"encoding/json"
	"errors"

	"github.com/Suhaibinator/NRouter/pkg/request"
	"github.com/Suhaibinator/NRouter/pkg/response"
)

// ErrEmptyBody is returned by Decode when the request has no payload.
var ErrEmptyBody = errors.New("request body is empty")

// JSONCodec is a codec that uses JSON for marshaling and unmarshaling.
// It implements the router.Codec interface.
type JSONCodec[T any, U any] struct{}

// Decode unmarshals the request body into a value of type T.
func (c *JSONCodec[T, U]) Decode(req *request.Request) (T, error) {
	var data T

	body := request.Bytes(req.Body())
	if len(body) == 0 {
		return data, ErrEmptyBody
	}

	if err := json.Unmarshal(body, &data); err != nil {
		return data, err
	}
	return data, nil
}

// Encode marshals resp into the response body and sets the content type.
func (c *JSONCodec[T, U]) Encode(res *response.Response, resp U) error {
	body, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	res.SetHeader("Content-Type", "application/json")
	res.SetBody(body)
	return nil
}

// NewJSONCodec creates a new JSONCodec instance for the specified types.
// T represents the request type and U represents the response type.
func NewJSONCodec[T any, U any]() *JSONCodec[T, U] {
	return &JSONCodec[T, U]{}
}
