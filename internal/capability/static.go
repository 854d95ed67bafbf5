package capability

import (
	"context"

	"github.com/vigil-gate/vigil/internal/model"
)

// StaticEnvironment is a fixed Environment, used to inject synthetic host
// state in tests and simulated deployments.
type StaticEnvironment struct {
	Org        model.Origin
	Agent      string
	Variants   []model.APIVariant
	Permission model.PermissionState
	Secure     bool
	Installed  bool
}

// Origin returns the fixed origin.
func (s StaticEnvironment) Origin() model.Origin { return s.Org }

// SecureContext returns the fixed secure-context flag.
func (s StaticEnvironment) SecureContext() bool { return s.Secure }

// UserAgent returns the fixed user agent.
func (s StaticEnvironment) UserAgent() string { return s.Agent }

// APIVariants returns the fixed variant list.
func (s StaticEnvironment) APIVariants() []model.APIVariant { return s.Variants }

// InstalledApp returns the fixed installed-app flag.
func (s StaticEnvironment) InstalledApp() bool { return s.Installed }

// QueryPermission returns the fixed permission state, defaulting to unknown.
func (s StaticEnvironment) QueryPermission(_ context.Context) model.PermissionState {
	if s.Permission == "" {
		return model.PermissionUnknown
	}
	return s.Permission
}
