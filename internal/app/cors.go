package app

import (
	"net/url"
	"strings"
)

// localOrigins are always allowed so a dashboard served from a dev
// machine can talk to the API without config changes.
var localOrigins = []string{"localhost:*", "127.0.0.1:*"}

// extractOriginHost reduces an Origin header value to "host[:port]".
// Values that do not parse as URLs are matched as-is.
func extractOriginHost(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	return u.Host
}

// matchOriginPattern matches host against one allowed-origin pattern.
// Patterns are compared case-insensitively and support "*" (any
// origin), "*.example.com" (any subdomain) and "example.com:*" (any
// port).
func matchOriginPattern(pattern, host string) bool {
	pattern = strings.ToLower(pattern)
	host = strings.ToLower(host)
	switch {
	case pattern == "*":
		return true
	case pattern == host:
		return true
	case strings.HasPrefix(pattern, "*."):
		return strings.HasSuffix(host, pattern[1:])
	case strings.HasSuffix(pattern, ":*"):
		return strings.HasPrefix(host, pattern[:len(pattern)-1])
	}
	return false
}

// originAllowed checks host against the configured patterns plus the
// built-in local development origins.
func originAllowed(patterns []string, host string) bool {
	for _, p := range patterns {
		if matchOriginPattern(p, host) {
			return true
		}
	}
	for _, p := range localOrigins {
		if matchOriginPattern(p, host) {
			return true
		}
	}
	return false
}
