package middleware

import (
	"encoding/base64"
	"strings"

	"github.com/Suhaibinator/NRouter/pkg/common"
	"github.com/Suhaibinator/NRouter/pkg/request"
	"github.com/Suhaibinator/NRouter/pkg/response"
	"go.uber.org/zap"
)

// UserKey is the local holding the authenticated user ID
const UserKey = "user"

// AuthProvider authenticates a request and returns the user ID it belongs to.
// The framework includes BasicAuthProvider, BearerTokenProvider and APIKeyProvider.
type AuthProvider interface {
	Authenticate(req *request.Request) (string, bool)
}

// BasicAuthProvider provides HTTP Basic Authentication.
// It validates username and password credentials against a predefined map.
type BasicAuthProvider struct {
	Credentials map[string]string // username -> password
}

// Authenticate implements AuthProvider. The user ID is the username.
func (p *BasicAuthProvider) Authenticate(req *request.Request) (string, bool) {
	header, ok := req.Header("authorization")
	if !ok || !strings.HasPrefix(header, "Basic ") {
		return "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, "Basic "))
	if err != nil {
		return "", false
	}
	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return "", false
	}

	expected, exists := p.Credentials[username]
	if !exists || password != expected {
		return "", false
	}
	return username, true
}

// BearerTokenProvider provides Bearer Token Authentication.
// It validates tokens with Validator when set, and against Tokens otherwise.
type BearerTokenProvider struct {
	Tokens    map[string]string                 // token -> user ID
	Validator func(token string) (string, bool) // optional token validator
}

// Authenticate implements AuthProvider.
func (p *BearerTokenProvider) Authenticate(req *request.Request) (string, bool) {
	header, ok := req.Header("authorization")
	if !ok || !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")

	if p.Validator != nil {
		return p.Validator(token)
	}
	user, ok := p.Tokens[token]
	return user, ok
}

// APIKeyProvider provides API Key Authentication from a request header.
type APIKeyProvider struct {
	Keys   map[string]string // key -> user ID
	Header string            // header name (e.g., "X-API-Key")
}

// Authenticate implements AuthProvider.
func (p *APIKeyProvider) Authenticate(req *request.Request) (string, bool) {
	key, ok := req.Header(p.Header)
	if !ok || key == "" {
		return "", false
	}
	user, ok := p.Keys[key]
	return user, ok
}

// Authentication creates a Before middleware that authenticates requests
// with provider. On success the user ID is stored under UserKey. On failure
// the response is set to 401 and Stop is returned; because the dispatcher
// does not halt on Stop, handlers behind this middleware must check GetUser.
func Authentication(provider AuthProvider, logger *zap.Logger) common.Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}

	return common.MiddlewareFunc(func(req *request.Request, res *response.Response) common.Signal {
		user, ok := provider.Authenticate(req)
		if !ok {
			logger.Warn("Authentication failed",
				zap.String("request", req.String()),
				zap.String("remote_addr", req.RemoteAddr()),
			)
			res.SetStatus(401)
			res.SetBody([]byte("Unauthorized"))
			return common.Stop
		}

		req.SetLocal(UserKey, user)
		return common.Next
	})
}

// GetUser returns the user ID stored by Authentication.
func GetUser(req *request.Request) (string, bool) {
	return req.Local(UserKey)
}
