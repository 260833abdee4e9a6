// Package security holds the pure policy functions guarding the hub/game
// trust boundary: origin allow-listing, sandbox and feature attribute
// derivation, launch-token expiry and CSP construction. Nothing in here
// keeps state.
package security

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

type Capability = string

const (
	CapabilityAudio        Capability = "audio"
	CapabilitySaveProgress Capability = "save-progress"
	CapabilityTelemetry    Capability = "telemetry"
)

// IsOriginAllowed checks an inbound origin against the configured allow-list.
// Entries match exactly, or by "*.domain" suffix wildcard. When devMode is
// set, loopback origins are accepted regardless of the list so local game
// development does not require configuration.
func IsOriginAllowed(origin string, allowList []string, devMode bool) bool {
	if origin == "" {
		return false
	}

	for _, allowed := range allowList {
		allowed = strings.TrimSpace(allowed)
		if allowed == "" {
			continue
		}
		if allowed == origin {
			return true
		}
		if domain, ok := strings.CutPrefix(allowed, "*."); ok {
			host := originHost(origin)
			if host == domain || strings.HasSuffix(host, "."+domain) {
				return true
			}
		}
	}

	if devMode && isLoopbackOrigin(origin) {
		return true
	}

	return false
}

func originHost(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	return u.Hostname()
}

func isLoopbackOrigin(origin string) bool {
	host := originHost(origin)
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// SandboxAttributes derives the iframe sandbox token list for a game with
// the given declared capabilities. The list never includes
// "allow-same-origin": granting same-origin trust to untrusted game content
// would collapse the sandbox boundary entirely.
func SandboxAttributes(capabilities []string) []string {
	attrs := []string{"allow-scripts", "allow-pointer-lock"}
	for _, capability := range capabilities {
		if capability == CapabilityAudio {
			attrs = append(attrs, "allow-autoplay")
		}
	}
	return attrs
}

// AllowAttributes derives the iframe allow= feature policy string.
func AllowAttributes(capabilities []string) string {
	var features []string
	for _, capability := range capabilities {
		if capability == CapabilityAudio {
			features = append(features, "autoplay", "fullscreen")
		}
	}
	return strings.Join(features, "; ")
}

// IsTokenExpired reports whether a launch token expiry (unix millis) has
// passed. A non-positive expiry fails safe to expired.
func IsTokenExpired(expiresAtMillis int64) bool {
	if expiresAtMillis <= 0 {
		return true
	}
	return time.Now().UnixMilli() >= expiresAtMillis
}

// CSPHeader builds a Content-Security-Policy value that limits frame and
// connect targets to the configured game origins and API base.
func CSPHeader(allowList []string, apiBase string) string {
	frameSources := []string{"'self'"}
	for _, allowed := range allowList {
		allowed = strings.TrimSpace(allowed)
		if allowed == "" {
			continue
		}
		if domain, ok := strings.CutPrefix(allowed, "*."); ok {
			frameSources = append(frameSources, "https://*."+domain)
			continue
		}
		frameSources = append(frameSources, allowed)
	}

	connectSources := []string{"'self'"}
	if apiBase != "" {
		connectSources = append(connectSources, apiBase)
	}

	return fmt.Sprintf(
		"default-src 'self'; frame-src %s; connect-src %s",
		strings.Join(frameSources, " "),
		strings.Join(connectSources, " "),
	)
}
