package job

import (
	"time"

	"github.com/Abraxas-365/trainforge/pkg/kernel"
)

// Status is the lifecycle state of a job. Transitions only ever move forward:
//
//	pending → queued → running → {completed | failed}
//
// pending and queued are pre-dispatch states, running is in-flight, completed
// and failed are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsTerminal reports whether no further transitions are permitted.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusQueued, StatusRunning, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// transitionFrom maps each target status to the current statuses it may be
// applied from. The target itself is included where re-application must be an
// idempotent no-op, because the delivery queue is at-least-once and every
// transition has to tolerate duplicates.
var transitionFrom = map[Status][]Status{
	// queued deliberately excludes itself: a duplicate mark-queued resolves
	// as a guard miss and no-ops at the service, so it can never rewrite the
	// correlation id of a job that already advanced.
	StatusQueued: {StatusPending},
	// pending is accepted here so the consumer reconciles a job whose
	// mark-queued write was lost after a successful queue send.
	StatusRunning:   {StatusPending, StatusQueued, StatusRunning},
	StatusCompleted: {StatusRunning, StatusCompleted},
	StatusFailed:    {StatusPending, StatusQueued, StatusRunning, StatusFailed},
}

// AllowedFrom returns the statuses from which target may be applied.
func AllowedFrom(target Status) []Status {
	return transitionFrom[target]
}

// CanTransition reports whether a job currently in from may move to target.
func CanTransition(from, target Status) bool {
	for _, s := range transitionFrom[target] {
		if s == from {
			return true
		}
	}
	return false
}

// Job is one user-submitted unit of work tracked through the lifecycle state
// machine. Records are created by submission or retry and mutated only
// through the guarded transition functions; they are never deleted.
type Job struct {
	ID              string                 `json:"job_id"`
	OwnerID         kernel.UserID          `json:"owner_id"`
	TargetName      string                 `json:"target_name"`
	ResourceLocator string                 `json:"resource_locator"`
	Parameters      map[string]interface{} `json:"parameters"`

	Status Status `json:"status"`

	// DeliveryMessageID maps the queue's message id back to this record.
	// Nil until the job has been accepted by the delivery queue.
	DeliveryMessageID *string `json:"delivery_message_id,omitempty"`

	// RetryFrom links a derived job back to the job it retries. Nil for
	// original submissions.
	RetryFrom  *string `json:"retry_from,omitempty"`
	RetryCount int     `json:"retry_count"`

	// ErrorLog holds the failure diagnostic. Set by the first failed
	// transition and never cleared or overwritten.
	ErrorLog *string `json:"error_log,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	FailedAt    *time.Time `json:"failed_at,omitempty"`
}

// IsRetry reports whether the job is a derived retry rather than an original
// submission.
func (j *Job) IsRetry() bool {
	return j.RetryFrom != nil
}

// NewSpec is the caller-provided spec for a submission.
type NewSpec struct {
	TargetName      string
	ResourceLocator string
	Parameters      map[string]interface{}
}

// Validate checks the spec fields the core depends on.
func (s NewSpec) Validate() error {
	if s.TargetName == "" {
		return ErrValidation("target_name is required")
	}
	if s.ResourceLocator == "" {
		return ErrValidation("resource_locator is required")
	}
	return nil
}
