package shared

import (
	"net"
	"net/http"
	"strings"

	"plenum/internal/platform/requestctx"
)

// ClientIP returns the address recorded by the request id middleware, falling back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if ip := requestctx.GetClientIP(r.Context()); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
