package auth

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultBase is used when neither an explicit URL nor a production origin is configured.
const DefaultBase = "http://localhost:8080"

// sockJSRawSuffix selects the raw websocket transport of a SockJS endpoint.
const sockJSRawSuffix = "/websocket"

// ResolveBase picks the HTTP base: explicit URL, then production origin, then DefaultBase.
func ResolveBase(explicit, productionOrigin string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return strings.TrimRight(explicit, "/")
	}
	if productionOrigin = strings.TrimSpace(productionOrigin); productionOrigin != "" {
		return strings.TrimRight(productionOrigin, "/")
	}
	return DefaultBase
}

// WebSocketURL converts an HTTP base and broker endpoint path into the dial URL.
func WebSocketURL(base, endpoint string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base %q: %w", base, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q in %q", u.Scheme, base)
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	u.Path = strings.TrimRight(u.Path, "/") + strings.TrimRight(endpoint, "/") + sockJSRawSuffix
	return u.String(), nil
}
