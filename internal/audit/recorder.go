// Package audit submits scan decisions to the external recording
// collaborator. Submission is fire-and-forget: a failed submission is
// logged by the caller and never blocks or reverses an access decision.
package audit

import (
	"context"

	"github.com/vigil-gate/vigil/internal/model"
)

// Recorder is the audit collaborator contract.
type Recorder interface {
	Record(ctx context.Context, record model.AuditRecord) error
}

// NopRecorder discards every record. Used when no audit endpoint is
// configured.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(_ context.Context, _ model.AuditRecord) error { return nil }
