package middleware

import (
	"strings"

	"github.com/Suhaibinator/NRouter/pkg/common"
	"github.com/Suhaibinator/NRouter/pkg/request"
	"github.com/Suhaibinator/NRouter/pkg/response"
)

// IPSourceType defines the source for client IP addresses
type IPSourceType string

const (
	// IPSourceRemoteAddr uses the peer address reported by the transport
	IPSourceRemoteAddr IPSourceType = "remote_addr"

	// IPSourceXForwardedFor uses the X-Forwarded-For header
	IPSourceXForwardedFor IPSourceType = "x_forwarded_for"

	// IPSourceXRealIP uses the X-Real-IP header
	IPSourceXRealIP IPSourceType = "x_real_ip"

	// IPSourceCustomHeader uses a custom header specified in the configuration
	IPSourceCustomHeader IPSourceType = "custom_header"
)

// IPConfig defines configuration for IP extraction
type IPConfig struct {
	// Source specifies where to extract the client IP from
	Source IPSourceType

	// CustomHeader is the name of the custom header to use when Source is IPSourceCustomHeader
	CustomHeader string

	// TrustProxy determines whether to trust proxy headers like X-Forwarded-For
	// If false, the remote address is used regardless of Source
	TrustProxy bool
}

// DefaultIPConfig returns the default IP configuration
func DefaultIPConfig() *IPConfig {
	return &IPConfig{
		Source:     IPSourceXForwardedFor,
		TrustProxy: true,
	}
}

// ClientIPKey is the local holding the client IP
const ClientIPKey = "client_ip"

// ClientIP returns the client IP stored by ClientIPMiddleware
func ClientIP(req *request.Request) string {
	ip, _ := req.Local(ClientIPKey)
	return ip
}

// ClientIPMiddleware creates a Before middleware that extracts the client IP
// and stores it as a local
func ClientIPMiddleware(config *IPConfig) common.Middleware {
	if config == nil {
		config = DefaultIPConfig()
	}

	return common.MiddlewareFunc(func(req *request.Request, res *response.Response) common.Signal {
		req.SetLocal(ClientIPKey, extractClientIP(req, config))
		return common.Next
	})
}

// extractClientIP extracts the client IP from the request based on the configuration
func extractClientIP(req *request.Request, config *IPConfig) string {
	var ip string

	switch config.Source {
	case IPSourceXForwardedFor:
		ip = extractIPFromXForwardedFor(req)
	case IPSourceXRealIP:
		ip, _ = req.Header("x-real-ip")
	case IPSourceCustomHeader:
		ip, _ = req.Header(config.CustomHeader)
	case IPSourceRemoteAddr:
		ip = req.RemoteAddr()
	default:
		ip = extractIPFromXForwardedFor(req)
	}

	// If we don't trust proxy headers or couldn't extract an IP, fall back to the remote address
	if !config.TrustProxy || ip == "" {
		ip = req.RemoteAddr()
	}

	return cleanIP(ip)
}

// extractIPFromXForwardedFor returns the leftmost, original client entry of X-Forwarded-For
func extractIPFromXForwardedFor(req *request.Request) string {
	xff, ok := req.Header("x-forwarded-for")
	if !ok || xff == "" {
		return ""
	}
	first, _, _ := strings.Cut(xff, ",")
	return strings.TrimSpace(first)
}

// cleanIP removes the port from an IP address if present
func cleanIP(ip string) string {
	// IPv6 addresses with ports are formatted as [IPv6]:port
	if strings.HasPrefix(ip, "[") {
		if end := strings.LastIndex(ip, "]"); end > 0 {
			return ip[1:end]
		}
		return ip
	}

	// Bare IPv6 addresses contain multiple colons and no port
	if strings.Count(ip, ":") > 1 {
		return ip
	}

	if i := strings.LastIndex(ip, ":"); i >= 0 {
		return ip[:i]
	}
	return ip
}
