package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vigil-gate/vigil/internal/common"
	"github.com/vigil-gate/vigil/internal/model"
)

// defaultTimeout bounds the single submission attempt.
const defaultTimeout = 5 * time.Second

// HTTPRecorder posts audit records to the portal backend. One attempt per
// record, no retries: retrying an audit write is never worth delaying the
// operator.
type HTTPRecorder struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewHTTPRecorder creates a recorder for the given endpoint. The token, if
// non-empty, is sent as a bearer credential.
func NewHTTPRecorder(endpoint, token string) (*HTTPRecorder, error) {
	if endpoint == "" {
		return nil, common.ErrMissingConfig
	}
	return &HTTPRecorder{
		endpoint: endpoint,
		token:    token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}, nil
}

// Record implements Recorder.
func (r *HTTPRecorder) Record(ctx context.Context, record model.AuditRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode audit record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build audit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrAuditUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", common.ErrAuditUnavailable, resp.StatusCode)
	}
	return nil
}
