// Package jobsrv implements the job lifecycle engine, the submission and
// retry orchestrators, and the queue consumption loop.
package jobsrv

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Abraxas-365/trainforge/pkg/job"
	"github.com/Abraxas-365/trainforge/pkg/kernel"
	"github.com/Abraxas-365/trainforge/pkg/logx"
	"github.com/Abraxas-365/trainforge/pkg/metricx"
	"github.com/Abraxas-365/trainforge/pkg/queuex"
)

// DefaultListLimit bounds job listings when the caller does not ask for a
// specific page size.
const DefaultListLimit = 20

// MaxListLimit is the hard cap on a single listing.
const MaxListLimit = 100

// Service owns every job record mutation: creation through submission and
// retry, and status changes through the guarded lifecycle transitions. The
// store and queue handles are passed in at construction so tests substitute
// in-memory fakes.
type Service struct {
	repo    job.Repository
	queue   queuex.Queue
	metrics *metricx.Metrics
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithMetrics attaches pipeline metrics.
func WithMetrics(m *metricx.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// NewService creates the service.
func NewService(repo job.Repository, queue queuex.Queue, opts ...ServiceOption) *Service {
	s := &Service{repo: repo, queue: queue}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Submit creates a pending record, enqueues an execution request and marks
// the record queued. It returns the persisted job or an error; a partially
// constructed job is never returned.
//
// Failure policy: a failed record write fails the whole submission and
// nothing is enqueued. A failed queue send leaves the record pending with no
// correlation id, a diagnosable orphan rather than a lost submission. A failed
// mark-queued write after a successful send is tolerated: the consumer's
// mark-running reconciles it.
func (s *Service) Submit(ctx context.Context, owner kernel.UserID, spec job.NewSpec) (*job.Job, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	j, err := s.createRecord(ctx, owner, spec, nil, 0)
	if err != nil {
		return nil, job.ErrSubmissionFailed(err)
	}

	dispatched, err := s.dispatch(ctx, j)
	if err != nil {
		return nil, err
	}

	s.metrics.JobSubmitted()
	logx.WithFields(logx.Fields{
		"job_id": dispatched.ID,
		"owner":  owner.String(),
		"target": spec.TargetName,
	}).Info("jobsrv: job submitted")
	return dispatched, nil
}

// Retry creates a new job derived from a terminal one, preserving lineage.
// The referenced job must exist, belong to owner and be completed or failed;
// the original record is never mutated.
func (s *Service) Retry(ctx context.Context, jobID string, owner kernel.UserID) (*job.Job, error) {
	orig, err := s.repo.GetOwned(ctx, jobID, owner)
	if err != nil {
		return nil, err
	}
	if !orig.Status.IsTerminal() {
		return nil, job.ErrInvalidRetryState(jobID, orig.Status)
	}

	spec := job.NewSpec{
		TargetName:      orig.TargetName,
		ResourceLocator: orig.ResourceLocator,
		Parameters:      orig.Parameters,
	}
	derived, err := s.createRecord(ctx, owner, spec, &orig.ID, orig.RetryCount+1)
	if err != nil {
		return nil, job.ErrSubmissionFailed(err)
	}

	dispatched, err := s.dispatch(ctx, derived)
	if err != nil {
		return nil, err
	}

	s.metrics.JobRetried()
	logx.WithFields(logx.Fields{
		"job_id":      dispatched.ID,
		"retry_from":  jobID,
		"retry_count": dispatched.RetryCount,
	}).Info("jobsrv: retry submitted")
	return dispatched, nil
}

// Get returns the owner's job by id. Jobs owned by anyone else read as not
// found.
func (s *Service) Get(ctx context.Context, jobID string, owner kernel.UserID) (*job.Job, error) {
	return s.repo.GetOwned(ctx, jobID, owner)
}

// GetByMessageID resolves a delivery message id to its record. This is the
// internal correlation path and is not ownership-scoped.
func (s *Service) GetByMessageID(ctx context.Context, messageID string) (*job.Job, error) {
	return s.repo.GetByMessageID(ctx, messageID)
}

// List returns the owner's jobs, newest first.
func (s *Service) List(ctx context.Context, owner kernel.UserID, limit int) ([]*job.Job, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.repo.List(ctx, owner, limit)
}

// ListRetries returns the retry lineage of the owner's job, newest first.
func (s *Service) ListRetries(ctx context.Context, jobID string, owner kernel.UserID) ([]*job.Job, error) {
	if _, err := s.repo.GetOwned(ctx, jobID, owner); err != nil {
		return nil, err
	}
	return s.repo.ListRetriesOf(ctx, jobID)
}

// ErrorLog returns the failure diagnostic of the owner's failed job.
func (s *Service) ErrorLog(ctx context.Context, jobID string, owner kernel.UserID) (*job.Job, error) {
	j, err := s.repo.GetOwned(ctx, jobID, owner)
	if err != nil {
		return nil, err
	}
	if j.Status != job.StatusFailed {
		return nil, job.ErrNoErrorLog().WithDetail("status", string(j.Status))
	}
	return j, nil
}

// createRecord allocates a job id and persists the initial pending record.
func (s *Service) createRecord(ctx context.Context, owner kernel.UserID, spec job.NewSpec, retryFrom *string, retryCount int) (*job.Job, error) {
	now := time.Now().UTC()
	j := &job.Job{
		ID:              uuid.New().String(),
		OwnerID:         owner,
		TargetName:      spec.TargetName,
		ResourceLocator: spec.ResourceLocator,
		Parameters:      spec.Parameters,
		Status:          job.StatusPending,
		RetryFrom:       retryFrom,
		RetryCount:      retryCount,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

// dispatch sends the execution request and attaches the correlation id.
func (s *Service) dispatch(ctx context.Context, j *job.Job) (*job.Job, error) {
	body, err := job.NewExecutionRequest(j).Encode()
	if err != nil {
		return nil, job.ErrSubmissionFailed(err)
	}

	messageID, err := s.queue.Send(ctx, body, job.KindTraining)
	if err != nil {
		// The record stays pending with no correlation id.
		logx.WithError(err).WithField("job_id", j.ID).
			Error("jobsrv: queue send failed, job left pending")
		return nil, err
	}

	if err := s.MarkQueued(ctx, j.ID, messageID); err != nil {
		// Accepted inconsistency window: the job is in the queue but still
		// reads pending. The consumer's mark-running reconciles it.
		logx.WithError(err).WithFields(logx.Fields{
			"job_id":     j.ID,
			"message_id": messageID,
		}).Warn("jobsrv: job enqueued but mark-queued write failed")
		return j, nil
	}

	j.Status = job.StatusQueued
	j.DeliveryMessageID = &messageID
	return j, nil
}
