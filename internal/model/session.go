package model

import "time"

// Phase is the lifecycle state of a scan session.
type Phase string

// Scan session phases.
const (
	PhaseIdle      Phase = "idle"
	PhaseAcquiring Phase = "acquiring"
	PhaseStreaming Phase = "streaming"
	PhaseDetecting Phase = "detecting"
	PhaseResolved  Phase = "resolved"
	PhaseFallback  Phase = "fallback"
	PhaseClosed    Phase = "closed"
)

// PayloadSource records how a payload entered the pipeline.
type PayloadSource string

// Payload sources.
const (
	SourceCamera PayloadSource = "camera"
	SourceManual PayloadSource = "manual"
)

// AttemptOutcome is the result of a single acquisition attempt.
type AttemptOutcome string

// Acquisition attempt outcomes.
const (
	AttemptSucceeded AttemptOutcome = "succeeded"
	AttemptFailed    AttemptOutcome = "failed"
	AttemptSkipped   AttemptOutcome = "skipped"
)

// AcquisitionAttempt is one entry in the audit trail explaining why a
// fallback was (or was not) triggered. Attempts are strictly sequential.
type AcquisitionAttempt struct {
	At          time.Time
	Strategy    string
	Constraints string
	Outcome     AttemptOutcome
	Err         string
}

// DecodedPayload is the raw text extracted from a visual code or typed by
// the operator. Produced exactly once per session; immutable after creation.
type DecodedPayload struct {
	DecodedAt time.Time
	Raw       string
	Source    PayloadSource
}
