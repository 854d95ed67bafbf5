// Package device negotiates camera access through an ordered sequence of
// acquisition strategies with graceful fallback, and owns the camera
// permission lifecycle for a scan session.
package device

import (
	"context"
	"log/slog"
	"time"

	"github.com/vigil-gate/vigil/internal/model"
)

// Strategy is one acquisition approach: a name, the API variant it drives,
// and a pure constraint builder. The strategy list is first-class data so
// the priority order is testable on its own.
type Strategy struct {
	Name        string
	Variant     model.APIVariant
	Constraints func(model.CapabilityReport) Constraints
}

// DefaultStrategies returns the acquisition order: full adaptive
// constraints, minimal directional constraint, unconstrained request, then
// the legacy API shim.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{
			Name:        "adaptive",
			Variant:     model.APIModern,
			Constraints: AdaptiveConstraints,
		},
		{
			Name:        "directional",
			Variant:     model.APIModern,
			Constraints: func(model.CapabilityReport) Constraints { return DirectionalConstraints() },
		},
		{
			Name:        "unconstrained",
			Variant:     model.APIModern,
			Constraints: func(model.CapabilityReport) Constraints { return Constraints{} },
		},
		{
			Name:        "legacy",
			Variant:     model.APILegacy,
			Constraints: func(model.CapabilityReport) Constraints { return Constraints{} },
		},
	}
}

// Acquirer walks the strategy list against a provider.
type Acquirer struct {
	provider   Provider
	strategies []Strategy
}

// NewAcquirer creates an acquirer using the default strategy order.
func NewAcquirer(provider Provider) *Acquirer {
	return NewAcquirerWithStrategies(provider, DefaultStrategies())
}

// NewAcquirerWithStrategies creates an acquirer with a custom strategy list.
func NewAcquirerWithStrategies(provider Provider, strategies []Strategy) *Acquirer {
	return &Acquirer{provider: provider, strategies: strategies}
}

// Acquire tries each strategy in strict priority order, recording an
// attempt for every try, and stops at the first success. When the report
// rules the camera out up front it short-circuits without touching the
// hardware. Attempts are strictly sequential; hosts serialize camera
// negotiation and concurrent requests can leave the device in an undefined
// state.
func (a *Acquirer) Acquire(ctx context.Context, report model.CapabilityReport) (Stream, []model.AcquisitionAttempt, error) {
	if !report.SecureContext {
		err := NewError(KindInsecureContext, nil)
		return nil, []model.AcquisitionAttempt{skipped("precheck", err)}, err
	}
	if !report.HasSupport() {
		err := NewError(KindUnsupported, nil)
		return nil, []model.AcquisitionAttempt{skipped("precheck", err)}, err
	}
	if report.PermissionState == model.PermissionDenied {
		// A known-denied permission would only produce an opaque platform
		// error; surface the denial directly.
		err := NewError(KindPermissionDenied, nil)
		return nil, []model.AcquisitionAttempt{skipped("precheck", err)}, err
	}

	attempts := make([]model.AcquisitionAttempt, 0, len(a.strategies))
	var lastErr, lastEligibleErr error

	for _, strategy := range a.strategies {
		if err := ctx.Err(); err != nil {
			return nil, attempts, err
		}

		constraints := strategy.Constraints(report)
		slog.Debug("trying acquisition strategy",
			"strategy", strategy.Name,
			"variant", strategy.Variant,
			"constraints", constraints.String())

		stream, err := a.provider.Open(ctx, strategy.Variant, constraints)
		attempt := model.AcquisitionAttempt{
			At:          time.Now(),
			Strategy:    strategy.Name,
			Constraints: constraints.String(),
		}

		if err == nil {
			attempt.Outcome = model.AttemptSucceeded
			attempts = append(attempts, attempt)
			slog.Info("camera acquired", "strategy", strategy.Name, "tracks", len(stream.Tracks()))
			return stream, attempts, nil
		}

		attempt.Outcome = model.AttemptFailed
		attempt.Err = err.Error()
		attempts = append(attempts, attempt)
		lastErr = err
		if FallbackEligible(err) {
			lastEligibleErr = err
		}

		slog.Warn("acquisition strategy failed",
			"strategy", strategy.Name,
			"kind", string(KindOf(err)),
			"error", err)
	}

	// A fallback-eligible failure from any strategy outranks a trailing
	// terminal one; a busy camera must not dead-end just because the
	// legacy shim is absent.
	if lastEligibleErr != nil {
		return nil, attempts, lastEligibleErr
	}
	return nil, attempts, lastErr
}

func skipped(strategy string, err error) model.AcquisitionAttempt {
	return model.AcquisitionAttempt{
		At:       time.Now(),
		Strategy: strategy,
		Outcome:  model.AttemptSkipped,
		Err:      err.Error(),
	}
}
