package device

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigil-gate/vigil/internal/model"
)

func usableReport() model.CapabilityReport {
	return model.CapabilityReport{
		SecureContext:   true,
		APIVariants:     []model.APIVariant{model.APIModern, model.APILegacy},
		PermissionState: model.PermissionPrompt,
	}
}

func TestAcquire_FirstStrategySucceeds(t *testing.T) {
	acquirer := NewAcquirer(NewSimulatedProvider())

	stream, attempts, err := acquirer.Acquire(context.Background(), usableReport())
	require.NoError(t, err)
	defer func() { _ = stream.Close() }()

	require.Len(t, attempts, 1)
	assert.Equal(t, "adaptive", attempts[0].Strategy)
	assert.Equal(t, model.AttemptSucceeded, attempts[0].Outcome)
	assert.NotEmpty(t, stream.Tracks())
}

func TestAcquire_FallsThroughStrategiesInOrder(t *testing.T) {
	provider := NewSimulatedProvider(WithFailures(
		NewError(KindConstraintUnsatisfiable, nil),
		NewError(KindConstraintUnsatisfiable, nil),
	))
	acquirer := NewAcquirer(provider)

	stream, attempts, err := acquirer.Acquire(context.Background(), usableReport())
	require.NoError(t, err)
	defer func() { _ = stream.Close() }()

	require.Len(t, attempts, 3)
	assert.Equal(t, "adaptive", attempts[0].Strategy)
	assert.Equal(t, model.AttemptFailed, attempts[0].Outcome)
	assert.Equal(t, "directional", attempts[1].Strategy)
	assert.Equal(t, model.AttemptFailed, attempts[1].Outcome)
	assert.Equal(t, "unconstrained", attempts[2].Strategy)
	assert.Equal(t, model.AttemptSucceeded, attempts[2].Outcome)
}

func TestAcquire_AllStrategiesFail(t *testing.T) {
	provider := NewSimulatedProvider(
		WithVariants(model.APIModern), // legacy unsupported
		WithFailures(
			NewError(KindDeviceBusy, nil),
			NewError(KindDeviceBusy, nil),
			NewError(KindDeviceBusy, nil),
		),
	)
	acquirer := NewAcquirer(provider)

	stream, attempts, err := acquirer.Acquire(context.Background(), usableReport())
	require.Error(t, err)
	assert.Nil(t, stream)
	assert.Len(t, attempts, 4)
	// The fallback-eligible busy failure outranks the legacy shim's
	// terminal unsupported failure.
	assert.Equal(t, KindDeviceBusy, KindOf(err))
	assert.True(t, FallbackEligible(err))
}

func TestAcquire_ShortCircuits(t *testing.T) {
	tests := []struct {
		name     string
		report   model.CapabilityReport
		wantKind Kind
	}{
		{
			name:     "insecure context",
			report:   model.CapabilityReport{APIVariants: []model.APIVariant{model.APIModern}},
			wantKind: KindInsecureContext,
		},
		{
			name:     "no api support",
			report:   model.CapabilityReport{SecureContext: true},
			wantKind: KindUnsupported,
		},
		{
			name: "permission already denied",
			report: model.CapabilityReport{
				SecureContext:   true,
				APIVariants:     []model.APIVariant{model.APIModern},
				PermissionState: model.PermissionDenied,
			},
			wantKind: KindPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// A provider that would panic if touched proves no hardware
			// call is made.
			acquirer := NewAcquirer(panicProvider{})

			stream, attempts, err := acquirer.Acquire(context.Background(), tt.report)
			require.Error(t, err)
			assert.Nil(t, stream)
			assert.Equal(t, tt.wantKind, KindOf(err))
			require.Len(t, attempts, 1)
			assert.Equal(t, model.AttemptSkipped, attempts[0].Outcome)
		})
	}
}

func TestAcquire_ContextCancellationMidNegotiation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	acquirer := NewAcquirer(NewSimulatedProvider())
	stream, _, err := acquirer.Acquire(ctx, usableReport())

	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, stream)
}

func TestFallbackEligibility(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindPermissionDenied, true},
		{KindDeviceNotFound, true},
		{KindDeviceBusy, true},
		{KindConstraintUnsatisfiable, true},
		{KindUnsupported, false},
		{KindInsecureContext, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.FallbackEligible())
			assert.Equal(t, tt.want, FallbackEligible(NewError(tt.kind, nil)))
		})
	}
}

func TestStream_CloseReleasesAllTracks(t *testing.T) {
	stream, _, err := NewAcquirer(NewSimulatedProvider()).Acquire(context.Background(), usableReport())
	require.NoError(t, err)
	require.NotEmpty(t, stream.Tracks())

	require.NoError(t, stream.Close())
	assert.Empty(t, stream.Tracks())

	// Idempotent.
	require.NoError(t, stream.Close())
	assert.Empty(t, stream.Tracks())
}

func TestAdaptiveConstraints_Tiers(t *testing.T) {
	tests := []struct {
		name      string
		report    model.CapabilityReport
		wantIdeal int
		wantMin   int
	}{
		{
			name:      "ios gets conservative tier",
			report:    model.CapabilityReport{IOS: true, Mobile: true, Engine: model.EngineWebKit},
			wantIdeal: 640,
			wantMin:   320,
		},
		{
			name:      "android gets moderate tier",
			report:    model.CapabilityReport{Mobile: true, Engine: model.EngineBlink},
			wantIdeal: 1280,
		},
		{
			name:      "desktop gets high tier",
			report:    model.CapabilityReport{Engine: model.EngineBlink},
			wantIdeal: 1280,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := AdaptiveConstraints(tt.report)
			assert.Equal(t, FacingEnvironment, c.FacingMode)
			assert.Equal(t, tt.wantIdeal, c.Width.Ideal)
			assert.Equal(t, tt.wantMin, c.Width.Min)
		})
	}
}

// panicProvider fails the test if the acquirer reaches the hardware.
type panicProvider struct{}

func (panicProvider) Open(context.Context, model.APIVariant, Constraints) (Stream, error) {
	panic("provider must not be called")
}
