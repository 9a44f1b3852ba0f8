// Package trainerhttp implements trainer.Runner against a remote training
// endpoint. The request blocks until the remote run finishes; the caller's
// context deadline is the only timeout.
package trainerhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Abraxas-365/trainforge/pkg/trainer"
)

// HTTPRunner posts job specs to a training service.
type HTTPRunner struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// Option configures the runner.
type Option func(*HTTPRunner)

// WithToken sets a bearer token sent on every request.
func WithToken(token string) Option {
	return func(r *HTTPRunner) { r.token = token }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *HTTPRunner) { r.httpClient = c }
}

// New creates a runner targeting endpoint (e.g. "https://trainer.internal/run").
func New(endpoint string, opts ...Option) *HTTPRunner {
	r := &HTTPRunner{
		endpoint: endpoint,
		// No client-side timeout here: runs legitimately take minutes and
		// the consumer bounds them with a context deadline.
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

type runRequest struct {
	TargetName      string                 `json:"target_name"`
	ResourceLocator string                 `json:"resource_locator"`
	Parameters      map[string]interface{} `json:"parameters"`
}

type runResponse struct {
	Status  string                 `json:"status"`
	Summary string                 `json:"summary"`
	Metrics map[string]interface{} `json:"metrics"`
	Error   string                 `json:"error"`
}

// Run executes the job remotely and blocks until it finishes.
func (r *HTTPRunner) Run(ctx context.Context, targetName, resourceLocator string, parameters map[string]interface{}) (*trainer.Result, error) {
	body, err := json.Marshal(runRequest{
		TargetName:      targetName,
		ResourceLocator: resourceLocator,
		Parameters:      parameters,
	})
	if err != nil {
		return nil, trainer.ErrExecutionFailed(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, trainer.ErrExecutionFailed(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, trainer.ErrTimeout(err)
		}
		return nil, trainer.ErrExecutionFailed(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, trainer.ErrExecutionFailed(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, trainer.ErrExecutionFailed(
			fmt.Errorf("trainer endpoint returned %d: %s", resp.StatusCode, string(raw)))
	}

	var out runResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, trainer.ErrExecutionFailed(err)
	}
	if out.Status != "success" {
		return nil, trainer.ErrExecutionFailed(
			fmt.Errorf("trainer reported %q: %s", out.Status, out.Error))
	}

	return &trainer.Result{Summary: out.Summary, Metrics: out.Metrics}, nil
}
