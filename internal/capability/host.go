package capability

import (
	"context"
	"os"
	"path/filepath"

	"github.com/vigil-gate/vigil/internal/model"
)

// HostEnvironment is the default Environment for standalone deployments.
// Origin and user agent come from the embedding host's configuration;
// API-variant detection probes the local video device nodes.
type HostEnvironment struct {
	origin       model.Origin
	userAgent    string
	installedApp bool
	devGlob      string
}

// HostOption customizes a HostEnvironment.
type HostOption func(*HostEnvironment)

// WithOrigin sets the origin the host application is served from.
func WithOrigin(scheme, hostname string) HostOption {
	return func(h *HostEnvironment) {
		h.origin = model.Origin{Scheme: scheme, Hostname: hostname}
	}
}

// WithUserAgent sets the user agent string reported by the embedding host.
func WithUserAgent(ua string) HostOption {
	return func(h *HostEnvironment) { h.userAgent = ua }
}

// WithInstalledApp marks the host as an installed (standalone) application.
func WithInstalledApp(installed bool) HostOption {
	return func(h *HostEnvironment) { h.installedApp = installed }
}

// NewHostEnvironment creates an environment describing the local host.
func NewHostEnvironment(opts ...HostOption) *HostEnvironment {
	h := &HostEnvironment{
		origin:  model.Origin{Scheme: "https", Hostname: "localhost"},
		devGlob: "/dev/video*",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Origin returns the configured serving origin.
func (h *HostEnvironment) Origin() model.Origin { return h.origin }

// SecureContext reports whether the configured origin is itself secure.
func (h *HostEnvironment) SecureContext() bool { return h.origin.Scheme == "https" }

// UserAgent returns the configured user agent string.
func (h *HostEnvironment) UserAgent() string { return h.userAgent }

// APIVariants probes for local capture devices. A host with at least one
// video device node exposes the modern variant.
func (h *HostEnvironment) APIVariants() []model.APIVariant {
	matches, err := filepath.Glob(h.devGlob)
	if err != nil || len(matches) == 0 {
		return nil
	}
	return []model.APIVariant{model.APIModern}
}

// InstalledApp reports whether the host runs as an installed application.
func (h *HostEnvironment) InstalledApp() bool { return h.installedApp }

// QueryPermission is best-effort: the local host has no permission broker,
// so the state is unknown and callers treat it as prompt.
func (h *HostEnvironment) QueryPermission(_ context.Context) model.PermissionState {
	if os.Geteuid() == 0 {
		return model.PermissionGranted
	}
	return model.PermissionUnknown
}
