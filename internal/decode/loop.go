package decode

import (
	"context"
	"log/slog"
	"time"

	"github.com/vigil-gate/vigil/internal/device"
	"github.com/vigil-gate/vigil/internal/model"
)

// DefaultInterval approximates one tick per display refresh.
const DefaultInterval = 33 * time.Millisecond

// Loop is the cooperative per-frame scheduler. One decode attempt runs per
// tick at most; ticks are strictly sequential, so decode calls can never
// overlap on the frame buffer.
type Loop struct {
	decoder  Decoder
	interval time.Duration
}

// LoopOption customizes a Loop.
type LoopOption func(*Loop)

// WithInterval overrides the tick interval.
func WithInterval(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// NewLoop creates a decode loop over the given decoder.
func NewLoop(decoder Decoder, opts ...LoopOption) *Loop {
	l := &Loop{decoder: decoder, interval: DefaultInterval}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run pulls frames from the stream until a payload is decoded or the
// context is canceled. It returns the payload exactly once and then
// terminates permanently for this session; a canceled run returns the
// context error and never also delivers a payload. Frames without
// dimensions are "not yet ready" and reschedule without a decode attempt.
func (l *Loop) Run(ctx context.Context, stream device.Stream) (model.DecodedPayload, error) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			return model.DecodedPayload{}, ctx.Err()
		case <-ticker.C:
		}

		frame, err := stream.Frame(ctx)
		if err != nil {
			// Stream gone or context canceled; either way the loop is over.
			return model.DecodedPayload{}, err
		}

		ticks++
		if frame == nil || frame.Bounds().Dx() == 0 || frame.Bounds().Dy() == 0 {
			continue
		}

		raw, err := l.decoder.Decode(frame)
		if err != nil {
			// Transient: nothing readable in this frame, try the next one.
			continue
		}

		slog.Info("code detected",
			"ticks", ticks,
			"width", frame.Bounds().Dx(),
			"height", frame.Bounds().Dy())

		return model.DecodedPayload{
			DecodedAt: time.Now(),
			Raw:       raw,
			Source:    model.SourceCamera,
		}, nil
	}
}
