// Package session implements the scan session state machine. A Controller
// owns one open-to-close lifecycle of the scanner: capability detection,
// device acquisition, the decode loop, classification, the access decision,
// and the audit submission. Sessions are never reused; a rescan re-runs
// capability detection from scratch.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vigil-gate/vigil/internal/audit"
	"github.com/vigil-gate/vigil/internal/capability"
	"github.com/vigil-gate/vigil/internal/classify"
	"github.com/vigil-gate/vigil/internal/common"
	"github.com/vigil-gate/vigil/internal/decode"
	"github.com/vigil-gate/vigil/internal/device"
	"github.com/vigil-gate/vigil/internal/model"
	"github.com/vigil-gate/vigil/internal/policy"
)

// Controller orchestrates one scan session. The mutex is a phase guard:
// blocking work (acquisition, the decode loop) runs outside it so Close and
// RequestFallback stay responsive.
type Controller struct {
	detector *capability.Detector
	acquirer *device.Acquirer
	loop     *decode.Loop
	recorder audit.Recorder
	operator model.Operator
	now      func() time.Time

	mu         sync.Mutex
	id         string
	phase      model.Phase
	report     model.CapabilityReport
	attempts   []model.AcquisitionAttempt
	payload    *model.DecodedPayload
	result     *model.VerificationResult
	stream     device.Stream
	cancelWork context.CancelFunc
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// NewController creates a session in the idle phase. Open must be called
// before Scan.
func NewController(detector *capability.Detector, acquirer *device.Acquirer, loop *decode.Loop, recorder audit.Recorder, operator model.Operator, opts ...Option) *Controller {
	c := &Controller{
		detector: detector,
		acquirer: acquirer,
		loop:     loop,
		recorder: recorder,
		operator: operator,
		now:      time.Now,
		id:       uuid.New().String(),
		phase:    model.PhaseIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open gates on the operator's role and takes a fresh capability snapshot.
// Valid only in the idle phase.
func (c *Controller) Open(ctx context.Context) (model.CapabilityReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == model.PhaseClosed {
		return model.CapabilityReport{}, common.ErrSessionClosed
	}
	if c.phase != model.PhaseIdle {
		return model.CapabilityReport{}, common.ErrBadPhase
	}
	if !c.operator.CanScan() {
		return model.CapabilityReport{}, common.NewUserError("Accès refusé: rôle de sécurité requis", common.ErrNotAuthorized)
	}

	c.report = c.detector.Detect(ctx)
	return c.report, nil
}

// Scan runs the camera path to completion: acquire a stream, run the decode
// loop, then classify, verify and audit the payload. On a fallback-eligible
// acquisition failure the session lands in the fallback phase and the typed
// failure is returned so the caller can present the manual form.
func (c *Controller) Scan(ctx context.Context) (model.VerificationResult, error) {
	c.mu.Lock()
	if c.phase == model.PhaseClosed {
		c.mu.Unlock()
		return model.VerificationResult{}, common.ErrSessionClosed
	}
	if c.phase != model.PhaseIdle || c.report.CreatedAt.IsZero() {
		c.mu.Unlock()
		return model.VerificationResult{}, common.ErrBadPhase
	}
	c.phase = model.PhaseAcquiring
	report := c.report
	// The whole camera path runs under a session-scoped context so that
	// Close and RequestFallback can unwind an in-flight provider
	// negotiation, not just the decode loop.
	workCtx, cancel := context.WithCancel(ctx)
	c.cancelWork = cancel
	c.mu.Unlock()

	stream, attempts, err := c.acquirer.Acquire(workCtx, report)

	c.mu.Lock()
	c.attempts = append(c.attempts, attempts...)
	if c.phase == model.PhaseClosed {
		c.mu.Unlock()
		if stream != nil {
			_ = stream.Close()
		}
		return model.VerificationResult{}, common.ErrSessionClosed
	}
	if c.phase == model.PhaseFallback {
		// Operator asked for the manual form mid-negotiation; the camera
		// path is abandoned and any late stream is released.
		c.mu.Unlock()
		if stream != nil {
			_ = stream.Close()
		}
		return model.VerificationResult{}, common.ErrBadPhase
	}
	if err != nil {
		c.releaseLocked()
		if device.FallbackEligible(err) {
			c.phase = model.PhaseFallback
			common.LogInfo("acquisition failed, entering manual fallback", common.Fields{
				"session": c.id,
				"kind":    string(device.KindOf(err)),
			})
		} else {
			c.phase = model.PhaseIdle
		}
		c.mu.Unlock()
		return model.VerificationResult{}, err
	}

	c.stream = stream
	c.phase = model.PhaseStreaming
	c.phase = model.PhaseDetecting
	c.mu.Unlock()

	payload, err := c.loop.Run(workCtx, stream)

	c.mu.Lock()
	defer c.mu.Unlock()

	// The camera stops as part of delivering a result: a payload must never
	// coexist with a live stream.
	c.releaseLocked()

	if c.phase == model.PhaseClosed {
		return model.VerificationResult{}, common.ErrSessionClosed
	}
	if err != nil {
		if c.phase == model.PhaseFallback {
			return model.VerificationResult{}, err
		}
		c.phase = model.PhaseIdle
		return model.VerificationResult{}, err
	}

	return c.resolveLocked(payload), nil
}

// SubmitManual feeds operator-typed text through the same classification
// pipeline as the camera path. Valid only in the fallback phase; empty input
// is rejected without advancing the phase.
func (c *Controller) SubmitManual(ctx context.Context, text string) (model.VerificationResult, error) {
	if err := ctx.Err(); err != nil {
		return model.VerificationResult{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == model.PhaseClosed {
		return model.VerificationResult{}, common.ErrSessionClosed
	}
	if c.phase != model.PhaseFallback {
		return model.VerificationResult{}, common.ErrBadPhase
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return model.VerificationResult{}, common.NewUserError("Veuillez saisir un code QR", common.ErrEmptyPayload)
	}

	payload := model.DecodedPayload{
		DecodedAt: c.now(),
		Raw:       trimmed,
		Source:    model.SourceManual,
	}
	return c.resolveLocked(payload), nil
}

// RequestFallback abandons the camera path and opens the manual form. Any
// live stream is released; valid until a result has been produced.
func (c *Controller) RequestFallback() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.phase {
	case model.PhaseClosed:
		return common.ErrSessionClosed
	case model.PhaseResolved:
		return common.ErrBadPhase
	case model.PhaseFallback:
		return nil
	}

	c.releaseLocked()
	c.phase = model.PhaseFallback
	return nil
}

// Rescan discards everything — report, attempts, payload, result — and starts
// a fresh session under the same operator, including a new capability
// snapshot. Not valid once the session is closed.
func (c *Controller) Rescan(ctx context.Context) (model.CapabilityReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == model.PhaseClosed {
		return model.CapabilityReport{}, common.ErrSessionClosed
	}
	if !c.operator.CanScan() {
		return model.CapabilityReport{}, common.NewUserError("Accès refusé: rôle de sécurité requis", common.ErrNotAuthorized)
	}

	c.releaseLocked()
	c.id = uuid.New().String()
	c.attempts = nil
	c.payload = nil
	c.result = nil
	c.phase = model.PhaseIdle
	c.report = c.detector.Detect(ctx)
	return c.report, nil
}

// Close tears the session down: pending decode tick first, then hardware
// tracks. Idempotent and callable from any phase.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.releaseLocked()
	c.phase = model.PhaseClosed
	return nil
}

// releaseLocked cancels any in-flight camera work — provider negotiation or
// decode ticking — and releases the stream's tracks. Safe to call when
// neither exists. Caller holds the mutex.
func (c *Controller) releaseLocked() {
	if c.cancelWork != nil {
		c.cancelWork()
		c.cancelWork = nil
	}
	if c.stream != nil {
		_ = c.stream.Close()
		c.stream = nil
	}
}

// resolveLocked runs the payload through classification and policy and
// records the decision. The audit record is submitted from its own goroutine
// so a slow or failing endpoint never delays the result or stalls callers
// waiting on the mutex; failure is logged, never propagated.
func (c *Controller) resolveLocked(payload model.DecodedPayload) model.VerificationResult {
	c.payload = &payload

	record := classify.Classify(payload.Raw)
	result := policy.Verify(record, c.now())
	c.result = &result
	c.phase = model.PhaseResolved

	rec := model.AuditRecord{
		At:       result.DecidedAt,
		ID:       uuid.New().String(),
		Action:   model.AuditActionFor(record.Category),
		Category: record.Category,
		Reason:   result.Reason,
		Raw:      payload.Raw,
		Operator: c.operator,
		Source:   payload.Source,
		Granted:  result.Granted,
	}
	// Detached from the caller's context: the decision has already been
	// rendered, so the submission must outlive the call that produced it.
	session := c.id
	go func() {
		if err := c.recorder.Record(context.Background(), rec); err != nil {
			common.LogError(err, "audit submission failed", common.Fields{
				"session": session,
				"action":  string(rec.Action),
			})
		}
	}()

	return result
}

// ID returns the session identifier.
func (c *Controller) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() model.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Report returns the capability snapshot taken at Open.
func (c *Controller) Report() model.CapabilityReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.report
}

// Attempts returns a copy of the acquisition audit trail.
func (c *Controller) Attempts() []model.AcquisitionAttempt {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.AcquisitionAttempt, len(c.attempts))
	copy(out, c.attempts)
	return out
}

// Payload returns the decoded payload, if one has been produced.
func (c *Controller) Payload() (model.DecodedPayload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.payload == nil {
		return model.DecodedPayload{}, false
	}
	return *c.payload, true
}

// Result returns the verification result, if the session has resolved.
func (c *Controller) Result() (model.VerificationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return model.VerificationResult{}, false
	}
	return *c.result, true
}
