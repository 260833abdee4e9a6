package bridge

import (
	"net/url"

	"iruka-hub/security"
)

// SecurityPolicy decides which guest origins may talk to a bridge session.
// This is a trust boundary, not a correctness check: a disallowed sender is
// dropped without any signal back.
type SecurityPolicy struct {
	HubOrigin      string
	AllowedOrigins []string
	DevMode        bool
}

// OriginAllowed applies the allow rules for inbound guest traffic. An origin
// passes if development mode is on, if it is the anonymous origin and the
// game entry is same-origin with the hub, if it is the hub's own origin, if
// it is the resolved game entry origin, or if the configured allow-list
// matches it.
func (p SecurityPolicy) OriginAllowed(origin string, entryOrigin string) bool {
	if p.DevMode {
		return true
	}

	if origin == "" || origin == "null" {
		return entryOrigin == "" || entryOrigin == p.HubOrigin
	}

	if origin == p.HubOrigin {
		return true
	}

	if entryOrigin != "" && origin == entryOrigin {
		return true
	}

	return security.IsOriginAllowed(origin, p.AllowedOrigins, false)
}

// ResolveEntryOrigin extracts the origin of a manifest entry URL. Relative
// entry URLs are hub-hosted and resolve to the empty (same-origin) origin.
func ResolveEntryOrigin(entryURL string) string {
	u, err := url.Parse(entryURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
