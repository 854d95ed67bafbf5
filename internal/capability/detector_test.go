package capability

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigil-gate/vigil/internal/model"
)

const (
	uaIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	uaAndroid = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	uaDesktop = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaFirefox = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
)

func TestDetect_SecureContextPolicy(t *testing.T) {
	tests := []struct {
		name       string
		env        StaticEnvironment
		wantSecure bool
	}{
		{
			name:       "host flag set",
			env:        StaticEnvironment{Secure: true, Org: model.Origin{Scheme: "http", Hostname: "example.org"}},
			wantSecure: true,
		},
		{
			name:       "https origin",
			env:        StaticEnvironment{Org: model.Origin{Scheme: "https", Hostname: "portal.example.org"}},
			wantSecure: true,
		},
		{
			name:       "localhost over http",
			env:        StaticEnvironment{Org: model.Origin{Scheme: "http", Hostname: "localhost"}},
			wantSecure: true,
		},
		{
			name:       "loopback address",
			env:        StaticEnvironment{Org: model.Origin{Scheme: "http", Hostname: "127.0.0.1"}},
			wantSecure: true,
		},
		{
			name:       "plain http",
			env:        StaticEnvironment{Org: model.Origin{Scheme: "http", Hostname: "portal.example.org"}},
			wantSecure: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := NewDetector(tt.env).Detect(context.Background())
			assert.Equal(t, tt.wantSecure, report.SecureContext)
		})
	}
}

func TestDetect_DeviceFamily(t *testing.T) {
	tests := []struct {
		name       string
		ua         string
		wantEngine model.BrowserEngine
		wantMobile bool
		wantIOS    bool
	}{
		{name: "iphone safari", ua: uaIPhone, wantEngine: model.EngineWebKit, wantMobile: true, wantIOS: true},
		{name: "android chrome", ua: uaAndroid, wantEngine: model.EngineBlink, wantMobile: true},
		{name: "desktop chrome", ua: uaDesktop, wantEngine: model.EngineBlink},
		{name: "desktop firefox", ua: uaFirefox, wantEngine: model.EngineGecko},
		{name: "empty agent", ua: "", wantEngine: model.EngineUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := StaticEnvironment{Secure: true, Agent: tt.ua}
			report := NewDetector(env).Detect(context.Background())
			assert.Equal(t, tt.wantEngine, report.Engine)
			assert.Equal(t, tt.wantMobile, report.Mobile)
			assert.Equal(t, tt.wantIOS, report.IOS)
		})
	}
}

func TestDetect_Idempotent(t *testing.T) {
	env := StaticEnvironment{
		Secure:     true,
		Agent:      uaDesktop,
		Variants:   []model.APIVariant{model.APIModern, model.APILegacy},
		Permission: model.PermissionPrompt,
	}
	detector := NewDetector(env)

	first := detector.Detect(context.Background())
	second := detector.Detect(context.Background())

	// Equal modulo the creation timestamp.
	first.CreatedAt = second.CreatedAt
	assert.Equal(t, first, second)
}

func TestDetect_NeverFails(t *testing.T) {
	// A completely empty environment still yields a usable report.
	report := NewDetector(StaticEnvironment{}).Detect(context.Background())

	assert.False(t, report.SecureContext)
	assert.False(t, report.HasSupport())
	assert.False(t, report.CameraUsable())
	assert.Equal(t, model.PermissionUnknown, report.PermissionState)
}

func TestDetect_RemediationHints(t *testing.T) {
	tests := []struct {
		name          string
		env           StaticEnvironment
		wantSeverity  model.HintSeverity
		wantSubstring string
	}{
		{
			name:          "insecure context",
			env:           StaticEnvironment{Agent: uaAndroid, Variants: []model.APIVariant{model.APIModern}},
			wantSeverity:  model.HintError,
			wantSubstring: "HTTPS",
		},
		{
			name:          "no api support",
			env:           StaticEnvironment{Secure: true, Agent: uaDesktop},
			wantSeverity:  model.HintError,
			wantSubstring: "Navigateur non supporté",
		},
		{
			name:          "permission denied",
			env:           StaticEnvironment{Secure: true, Agent: uaDesktop, Variants: []model.APIVariant{model.APIModern}, Permission: model.PermissionDenied},
			wantSeverity:  model.HintWarning,
			wantSubstring: "Permission caméra refusée",
		},
		{
			name:          "ios safari pwa advice",
			env:           StaticEnvironment{Secure: true, Agent: uaIPhone, Variants: []model.APIVariant{model.APIModern}},
			wantSeverity:  model.HintWarning,
			wantSubstring: "Safari iOS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := NewDetector(tt.env).Detect(context.Background())
			require.NotEmpty(t, report.Hints)

			found := false
			for _, h := range report.Hints {
				if h.Severity == tt.wantSeverity && strings.Contains(h.Message, tt.wantSubstring) {
					found = true
				}
			}
			assert.True(t, found, "expected hint %q with severity %s in %+v", tt.wantSubstring, tt.wantSeverity, report.Hints)
		})
	}
}

func TestDetect_HintOrdering(t *testing.T) {
	// Insecure context plus no support: the secure-context hint comes first.
	report := NewDetector(StaticEnvironment{Agent: uaDesktop}).Detect(context.Background())

	require.GreaterOrEqual(t, len(report.Hints), 2)
	assert.Contains(t, report.Hints[0].Message, "HTTPS")
	assert.Contains(t, report.Hints[1].Message, "Navigateur")
}
