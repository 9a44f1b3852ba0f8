// Package trainer defines the execution backend contract. The backend
// actually runs a job; it may take minutes, fail at any point, and leave
// partial side effects behind. Re-running a job is assumed safe; the
// backend (or its operator) owns that idempotency, not this service.
package trainer

import "context"

// Result is the backend's summary of a successful run.
type Result struct {
	Summary string                 `json:"summary,omitempty"`
	Metrics map[string]interface{} `json:"metrics,omitempty"`
}

// Runner runs one job spec to completion. Implementations must honor ctx
// cancellation; the consumer bounds every run with a deployer-configured
// timeout and records a timed-out run as a failure.
type Runner interface {
	Run(ctx context.Context, targetName, resourceLocator string, parameters map[string]interface{}) (*Result, error)
}
