package device

import (
	"fmt"

	"github.com/vigil-gate/vigil/internal/model"
)

// DimensionRange expresses a min/ideal/max request for one video dimension.
// Zero values mean "no preference".
type DimensionRange struct {
	Min   int
	Ideal int
	Max   int
}

// Constraints describes one camera request. The zero value is an
// unconstrained request.
type Constraints struct {
	FacingMode string
	Width      DimensionRange
	Height     DimensionRange
}

// FacingEnvironment prefers the rear-facing camera.
const FacingEnvironment = "environment"

// String renders constraints compactly for the acquisition attempt trail.
func (c Constraints) String() string {
	if c == (Constraints{}) {
		return "unconstrained"
	}
	s := ""
	if c.FacingMode != "" {
		s = "facing=" + c.FacingMode
	}
	if c.Width != (DimensionRange{}) || c.Height != (DimensionRange{}) {
		if s != "" {
			s += " "
		}
		s += fmt.Sprintf("width=%s height=%s", c.Width.describe(), c.Height.describe())
	}
	return s
}

func (d DimensionRange) describe() string {
	return fmt.Sprintf("%d/%d/%d", d.Min, d.Ideal, d.Max)
}

// AdaptiveConstraints returns the constraint tier tuned to the detected
// device family: conservative for iOS/WebKit, moderate for other mobile,
// high for desktop. All tiers prefer the rear-facing camera.
func AdaptiveConstraints(report model.CapabilityReport) Constraints {
	base := Constraints{FacingMode: FacingEnvironment}

	switch {
	case report.IOS || report.Engine == model.EngineWebKit:
		base.Width = DimensionRange{Min: 320, Ideal: 640, Max: 1280}
		base.Height = DimensionRange{Min: 240, Ideal: 480, Max: 720}
	case report.Mobile:
		base.Width = DimensionRange{Ideal: 1280, Max: 1920}
		base.Height = DimensionRange{Ideal: 720, Max: 1080}
	default:
		base.Width = DimensionRange{Ideal: 1280}
		base.Height = DimensionRange{Ideal: 720}
	}

	return base
}

// DirectionalConstraints requests only the rear-facing camera, leaving all
// dimensions to the platform.
func DirectionalConstraints() Constraints {
	return Constraints{FacingMode: FacingEnvironment}
}
