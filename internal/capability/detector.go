// Package capability inspects the host environment and produces a
// CapabilityReport describing whether camera acquisition can work there.
// The rest of the system depends only on the report value, never on
// ambient host state.
package capability

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/vigil-gate/vigil/internal/model"
)

// Environment is the single point through which ambient host state is read.
// Implementations must be side-effect free; QueryPermission may issue a
// non-blocking permission query but never a permission request.
type Environment interface {
	Origin() model.Origin
	SecureContext() bool
	UserAgent() string
	APIVariants() []model.APIVariant
	InstalledApp() bool
	// QueryPermission returns the current camera permission state, or
	// PermissionUnknown when the platform cannot be queried.
	QueryPermission(ctx context.Context) model.PermissionState
}

// Detector builds capability reports from an Environment.
type Detector struct {
	env Environment
}

// NewDetector creates a detector bound to the given environment.
func NewDetector(env Environment) *Detector {
	return &Detector{env: env}
}

var (
	mobileRe  = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)
	iosRe     = regexp.MustCompile(`iPad|iPhone|iPod`)
	androidRe = regexp.MustCompile(`Android`)
)

// Detect takes a snapshot of the host environment. It never fails: unknown
// values are represented explicitly rather than returned as errors.
func (d *Detector) Detect(ctx context.Context) model.CapabilityReport {
	ua := d.env.UserAgent()

	report := model.CapabilityReport{
		CreatedAt:       time.Now(),
		Origin:          d.env.Origin(),
		UserAgent:       ua,
		SecureContext:   isSecure(d.env),
		APIVariants:     d.env.APIVariants(),
		Engine:          engineOf(ua),
		Mobile:          mobileRe.MatchString(ua),
		IOS:             iosRe.MatchString(ua),
		Android:         androidRe.MatchString(ua),
		InstalledApp:    d.env.InstalledApp(),
		PermissionState: d.env.QueryPermission(ctx),
	}
	report.Hints = remediationHints(report)

	slog.Debug("capability report built",
		"secure_context", report.SecureContext,
		"api_variants", len(report.APIVariants),
		"engine", report.Engine,
		"mobile", report.Mobile,
		"permission", report.PermissionState)

	return report
}

// isSecure applies the secure-context policy: the host's own flag, HTTPS,
// or a loopback origin all qualify.
func isSecure(env Environment) bool {
	if env.SecureContext() {
		return true
	}
	origin := env.Origin()
	if origin.Scheme == "https" {
		return true
	}
	switch origin.Hostname {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

func engineOf(ua string) model.BrowserEngine {
	switch {
	case strings.Contains(ua, "Firefox"):
		return model.EngineGecko
	case strings.Contains(ua, "Chrome"), strings.Contains(ua, "Edg"):
		return model.EngineBlink
	case strings.Contains(ua, "Safari"):
		return model.EngineWebKit
	default:
		return model.EngineUnknown
	}
}

// remediationHints derives the prioritized operator-facing hint list.
// Consumed for display only.
func remediationHints(r model.CapabilityReport) []model.RemediationHint {
	var hints []model.RemediationHint

	if !r.SecureContext {
		hints = append(hints, model.RemediationHint{
			Severity: model.HintError,
			Message:  "HTTPS requis pour la caméra",
			Solution: "Utilisez HTTPS ou localhost pour le développement",
		})
	}

	if !r.HasSupport() {
		hints = append(hints, model.RemediationHint{
			Severity: model.HintError,
			Message:  "Navigateur non supporté",
			Solution: "Utilisez Chrome, Safari, Firefox ou Edge récent",
		})
	}

	if r.Engine == model.EngineWebKit && r.IOS {
		hints = append(hints, model.RemediationHint{
			Severity: model.HintWarning,
			Message:  "Safari iOS détecté",
			Solution: "Assurez-vous que l'application est installée en PWA",
		})
	}

	if r.PermissionState == model.PermissionDenied {
		hints = append(hints, model.RemediationHint{
			Severity: model.HintWarning,
			Message:  "Permission caméra refusée",
			Solution: "Autorisez la caméra dans les paramètres du navigateur",
		})
	}

	if r.InstalledApp {
		hints = append(hints, model.RemediationHint{
			Severity: model.HintInfo,
			Message:  "Mode PWA détecté",
			Solution: "Les applications installées ont un meilleur support caméra",
		})
	}

	return hints
}
