package device

import (
	"context"
	"image"

	"github.com/vigil-gate/vigil/internal/model"
)

// Track is one media track inside a stream. Stopping a track releases its
// underlying hardware.
type Track interface {
	Kind() string
	Label() string
	Stop()
}

// Stream is an exclusively owned handle on an open camera. The session that
// acquired it is responsible for closing it on every exit path.
type Stream interface {
	// Frame returns the current video frame. A stream that is open but not
	// yet delivering reports a nil image with no error; callers treat that
	// as "not ready" and try again later.
	Frame(ctx context.Context) (image.Image, error)
	// Tracks lists the live tracks. Empty after Close.
	Tracks() []Track
	// Close stops every track. Idempotent.
	Close() error
}

// Provider negotiates camera access on behalf of the acquirer. It is the
// platform integration point; implementations map platform failures onto
// the acquisition error taxonomy.
type Provider interface {
	Open(ctx context.Context, variant model.APIVariant, constraints Constraints) (Stream, error)
}
