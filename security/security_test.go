package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsOriginAllowed_ExactMatch(t *testing.T) {
	allowList := []string{"https://games.example.com", "https://partner.example.org"}

	assert.True(t, IsOriginAllowed("https://games.example.com", allowList, false))
	assert.True(t, IsOriginAllowed("https://partner.example.org", allowList, false))
	assert.False(t, IsOriginAllowed("https://evil.example.net", allowList, false))
	assert.False(t, IsOriginAllowed("http://games.example.com", allowList, false),
		"scheme is part of the origin, http must not match https entry")
}

func TestIsOriginAllowed_WildcardSuffix(t *testing.T) {
	allowList := []string{"*.games.example.com"}

	assert.True(t, IsOriginAllowed("https://games.example.com", allowList, false))
	assert.True(t, IsOriginAllowed("https://math.games.example.com", allowList, false))
	assert.True(t, IsOriginAllowed("https://a.b.games.example.com", allowList, false))
	assert.False(t, IsOriginAllowed("https://evilgames.example.com", allowList, false),
		"wildcard must match on label boundary, not raw suffix")
	assert.False(t, IsOriginAllowed("https://games.example.com.evil.net", allowList, false))
}

func TestIsOriginAllowed_EmptyOriginNeverAllowed(t *testing.T) {
	assert.False(t, IsOriginAllowed("", []string{"https://games.example.com"}, false))
	assert.False(t, IsOriginAllowed("", nil, true), "empty origin must fail even in dev mode")
}

func TestIsOriginAllowed_DevModeLoopback(t *testing.T) {
	assert.True(t, IsOriginAllowed("http://localhost:3000", nil, true))
	assert.True(t, IsOriginAllowed("http://127.0.0.1:8000", nil, true))
	assert.False(t, IsOriginAllowed("http://localhost:3000", nil, false),
		"loopback is only implicit in dev mode")
	assert.False(t, IsOriginAllowed("https://evil.example.net", nil, true),
		"dev mode must not open the boundary to non-loopback origins")
}

// TestSandboxAttributes_NeverSameOrigin pins down the one sandbox rule that
// must survive every refactor: game content never gets same-origin trust.
func TestSandboxAttributes_NeverSameOrigin(t *testing.T) {
	capabilitySets := [][]string{
		nil,
		{CapabilityAudio},
		{CapabilityAudio, CapabilitySaveProgress, CapabilityTelemetry},
		{"allow-same-origin"},
	}

	for _, capabilities := range capabilitySets {
		attrs := SandboxAttributes(capabilities)
		assert.NotContains(t, attrs, "allow-same-origin",
			"capabilities %v produced allow-same-origin", capabilities)
		assert.Contains(t, attrs, "allow-scripts")
		assert.Contains(t, attrs, "allow-pointer-lock")
	}
}

func TestSandboxAttributes_AudioCapability(t *testing.T) {
	assert.Contains(t, SandboxAttributes([]string{CapabilityAudio}), "allow-autoplay")
	assert.NotContains(t, SandboxAttributes([]string{CapabilityTelemetry}), "allow-autoplay")
}

func TestAllowAttributes(t *testing.T) {
	assert.Equal(t, "autoplay; fullscreen", AllowAttributes([]string{CapabilityAudio}))
	assert.Equal(t, "", AllowAttributes([]string{CapabilitySaveProgress}))
}

func TestIsTokenExpired(t *testing.T) {
	assert.False(t, IsTokenExpired(time.Now().Add(time.Minute).UnixMilli()))
	assert.True(t, IsTokenExpired(time.Now().Add(-time.Minute).UnixMilli()))
	assert.True(t, IsTokenExpired(0), "missing expiry must fail safe to expired")
	assert.True(t, IsTokenExpired(-1))
}

func TestCSPHeader(t *testing.T) {
	header := CSPHeader(
		[]string{"https://games.example.com", "*.partner.example.org", " "},
		"https://api.example.com")

	assert.Contains(t, header, "default-src 'self'")
	assert.Contains(t, header, "frame-src 'self' https://games.example.com https://*.partner.example.org")
	assert.Contains(t, header, "connect-src 'self' https://api.example.com")
}
