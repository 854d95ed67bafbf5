// Package model defines the core domain models used throughout the application.
package model

import "time"

// APIVariant identifies one flavor of camera-acquisition API exposed by a host.
type APIVariant string

// Acquisition API variants, newest first.
const (
	APIModern         APIVariant = "modern"
	APILegacy         APIVariant = "legacy"
	APIVendorPrefixed APIVariant = "vendor-prefixed"
)

// PermissionState is the last known state of the camera permission.
type PermissionState string

// Camera permission states. Unknown must be treated like Prompt by callers.
const (
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
	PermissionPrompt  PermissionState = "prompt"
	PermissionUnknown PermissionState = "unknown"
)

// BrowserEngine is a coarse rendering-engine family tag.
type BrowserEngine string

// Browser engine families derived from the host user agent.
const (
	EngineWebKit  BrowserEngine = "webkit"
	EngineGecko   BrowserEngine = "gecko"
	EngineBlink   BrowserEngine = "blink"
	EngineUnknown BrowserEngine = "unknown"
)

// HintSeverity ranks a remediation hint for operator display.
type HintSeverity string

// Hint severities.
const (
	HintError   HintSeverity = "error"
	HintWarning HintSeverity = "warning"
	HintInfo    HintSeverity = "info"
)

// RemediationHint is an operator-facing suggestion. Hints are display-only
// and never drive control flow.
type RemediationHint struct {
	Severity HintSeverity
	Message  string
	Solution string
}

// Origin describes where the host application is served from.
type Origin struct {
	Scheme   string
	Hostname string
}

// CapabilityReport is an immutable snapshot of the host environment taken
// once per session open. A retry produces a fresh report; a report is never
// mutated in place.
type CapabilityReport struct {
	CreatedAt       time.Time
	Origin          Origin
	UserAgent       string
	PermissionState PermissionState
	Engine          BrowserEngine
	APIVariants     []APIVariant
	Hints           []RemediationHint
	SecureContext   bool
	Mobile          bool
	IOS             bool
	Android         bool
	InstalledApp    bool
}

// HasSupport reports whether any acquisition API variant is available.
func (r CapabilityReport) HasSupport() bool {
	return len(r.APIVariants) > 0
}

// CameraUsable reports whether a camera acquisition attempt has any chance
// of succeeding: a secure context plus at least one API variant.
func (r CapabilityReport) CameraUsable() bool {
	return r.SecureContext && r.HasSupport()
}
