package request

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/url"
	"strings"
)

// Body is the typed body of a request. It is one of NoBody, TextBody,
// JSONBody or FormBody; callers switch on the concrete type.
type Body interface {
	isBody()
}

// NoBody is the body of a request that carried no payload.
type NoBody struct{}

// TextBody holds a payload that is neither JSON nor form encoded.
type TextBody string

// JSONBody holds a payload sent as application/json.
// The raw bytes are kept so codecs can decode into their own types.
type JSONBody json.RawMessage

// FormBody holds an application/x-www-form-urlencoded payload.
// Only the first value of a repeated key is kept.
type FormBody map[string]string

func (NoBody) isBody()   {}
func (TextBody) isBody() {}
func (JSONBody) isBody() {}
func (FormBody) isBody() {}

// Bytes returns the raw form of a body. FormBody is re-encoded.
func Bytes(b Body) []byte {
	switch v := b.(type) {
	case TextBody:
		return []byte(v)
	case JSONBody:
		return []byte(v)
	case FormBody:
		values := make(url.Values, len(v))
		for key, value := range v {
			values.Set(key, value)
		}
		return []byte(values.Encode())
	default:
		return nil
	}
}

// ParseBody maps a raw payload onto a Body variant using the content type.
// An empty payload is always NoBody.
func ParseBody(contentType string, raw []byte) (Body, error) {
	if len(raw) == 0 {
		return NoBody{}, nil
	}

	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}

	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		if !json.Valid(raw) {
			return nil, fmt.Errorf("invalid json body")
		}
		return JSONBody(append([]byte(nil), raw...)), nil
	case mediaType == "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid form body: %w", err)
		}
		form := make(FormBody, len(values))
		for key, v := range values {
			if len(v) > 0 {
				form[key] = v[0]
			}
		}
		return form, nil
	default:
		return TextBody(raw), nil
	}
}
