package device

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/vigil-gate/vigil/internal/model"
)

// ErrStreamClosed is returned by Frame after a stream was closed.
var ErrStreamClosed = errors.New("stream closed")

// FrameFunc produces the current video frame for a simulated stream.
type FrameFunc func() image.Image

// StillFrames returns a FrameFunc that always yields the same frame.
func StillFrames(img image.Image) FrameFunc {
	return func() image.Image { return img }
}

// SimulatedProvider is a Provider for hosts without a real camera
// integration: tests, kiosks in simulated mode, and development machines.
// Failures can be queued per open call to exercise the fallback chain.
type SimulatedProvider struct {
	mu       sync.Mutex
	variants map[model.APIVariant]bool
	failures []error
	frames   FrameFunc
	warmup   int
}

// SimOption configures a SimulatedProvider.
type SimOption func(*SimulatedProvider)

// WithVariants restricts which API variants the provider accepts.
func WithVariants(variants ...model.APIVariant) SimOption {
	return func(p *SimulatedProvider) {
		p.variants = make(map[model.APIVariant]bool, len(variants))
		for _, v := range variants {
			p.variants[v] = true
		}
	}
}

// WithFailures queues errors returned by successive Open calls before any
// success. Acquisition errors pass through unchanged.
func WithFailures(errs ...error) SimOption {
	return func(p *SimulatedProvider) { p.failures = errs }
}

// WithFrames sets the frame source for opened streams.
func WithFrames(frames FrameFunc) SimOption {
	return func(p *SimulatedProvider) { p.frames = frames }
}

// WithWarmup makes opened streams report "not ready" for the first n frames,
// mimicking a camera that has not delivered its first frame yet.
func WithWarmup(n int) SimOption {
	return func(p *SimulatedProvider) { p.warmup = n }
}

// NewSimulatedProvider creates a provider accepting the modern variant and
// producing blank VGA frames unless configured otherwise.
func NewSimulatedProvider(opts ...SimOption) *SimulatedProvider {
	p := &SimulatedProvider{
		variants: map[model.APIVariant]bool{model.APIModern: true},
		frames: func() image.Image {
			return image.NewGray(image.Rect(0, 0, 640, 480))
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open implements Provider.
func (p *SimulatedProvider) Open(ctx context.Context, variant model.APIVariant, _ Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.variants[variant] {
		return nil, NewError(KindUnsupported, nil)
	}

	if len(p.failures) > 0 {
		err := p.failures[0]
		p.failures = p.failures[1:]
		return nil, err
	}

	return newSimStream(p.frames, p.warmup), nil
}

type simTrack struct {
	kind    string
	label   string
	stopped bool
	mu      sync.Mutex
}

func (t *simTrack) Kind() string  { return t.kind }
func (t *simTrack) Label() string { return t.label }
func (t *simTrack) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

// SimStream is the stream handle produced by SimulatedProvider.
type SimStream struct {
	mu     sync.Mutex
	frames FrameFunc
	tracks []Track
	warmup int
	closed bool
}

func newSimStream(frames FrameFunc, warmup int) *SimStream {
	return &SimStream{
		frames: frames,
		warmup: warmup,
		tracks: []Track{&simTrack{kind: "video", label: "simulated camera"}},
	}
}

// Frame implements Stream. During warmup it returns a nil image, the
// "no frame yet" signal.
func (s *SimStream) Frame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStreamClosed
	}
	if s.warmup > 0 {
		s.warmup--
		return nil, nil
	}
	return s.frames(), nil
}

// Tracks implements Stream.
func (s *SimStream) Tracks() []Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Track(nil), s.tracks...)
}

// Close implements Stream. Stops and drops every track; idempotent.
func (s *SimStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	for _, t := range s.tracks {
		t.Stop()
	}
	s.tracks = nil
	s.closed = true
	return nil
}
