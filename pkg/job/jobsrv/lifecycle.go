package jobsrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/trainforge/pkg/job"
	"github.com/Abraxas-365/trainforge/pkg/logx"
)

// The transition functions below are the only writers of job status. Each is
// a single conditional update: the new status is written only when the
// current status is in the expected set, so concurrent redeliveries race
// safely and the first writer wins. A guard miss is then classified against
// a fresh read: same-status misses are idempotent no-ops, regressions from a
// terminal state are rejected.

// MarkQueued records a successful enqueue and attaches the delivery message
// id. Only a pending record is touched; any other status means the job has
// already advanced and the call is a no-op.
func (s *Service) MarkQueued(ctx context.Context, jobID, messageID string) error {
	matched, err := s.repo.UpdateStatus(ctx, jobID, job.StatusUpdate{
		Status:            job.StatusQueued,
		DeliveryMessageID: &messageID,
		UpdatedAt:         time.Now().UTC(),
	}, job.AllowedFrom(job.StatusQueued))
	if err != nil {
		return err
	}
	if !matched {
		logx.WithField("job_id", jobID).Debug("jobsrv: mark-queued skipped, job already advanced")
	}
	return nil
}

// MarkRunning records that a delivery has been picked up for execution. A
// pending record is accepted too: that reconciles a submission whose
// mark-queued write was lost after a successful send. The delivery message
// id is attached alongside so such records regain their correlation id.
func (s *Service) MarkRunning(ctx context.Context, jobID, messageID string) error {
	matched, err := s.repo.UpdateStatus(ctx, jobID, job.StatusUpdate{
		Status:            job.StatusRunning,
		DeliveryMessageID: &messageID,
		UpdatedAt:         time.Now().UTC(),
	}, job.AllowedFrom(job.StatusRunning))
	if err != nil {
		return err
	}
	if matched {
		return nil
	}
	return s.classifyMiss(ctx, jobID, job.StatusRunning)
}

// MarkCompleted finalizes a running job. completed_at is written by the
// store only if not already set, so a redelivered completion never moves the
// original timestamp. Calling it on an already completed job is a no-op;
// calling it on a failed job is a rejected regression.
func (s *Service) MarkCompleted(ctx context.Context, jobID string) error {
	now := time.Now().UTC()
	matched, err := s.repo.UpdateStatus(ctx, jobID, job.StatusUpdate{
		Status:      job.StatusCompleted,
		CompletedAt: &now,
		UpdatedAt:   now,
	}, job.AllowedFrom(job.StatusCompleted))
	if err != nil {
		return err
	}
	if matched {
		return nil
	}
	return s.classifyMiss(ctx, jobID, job.StatusCompleted)
}

// MarkFailed finalizes a job with a failure diagnostic. The store keeps the
// first error_log and failed_at it sees, so a redelivered failure never
// overwrites the original diagnostic. Calling it on an already failed job is
// a no-op; calling it on a completed job is a rejected regression.
func (s *Service) MarkFailed(ctx context.Context, jobID, errorLog string) error {
	now := time.Now().UTC()
	matched, err := s.repo.UpdateStatus(ctx, jobID, job.StatusUpdate{
		Status:    job.StatusFailed,
		FailedAt:  &now,
		ErrorLog:  &errorLog,
		UpdatedAt: now,
	}, job.AllowedFrom(job.StatusFailed))
	if err != nil {
		return err
	}
	if matched {
		return nil
	}
	return s.classifyMiss(ctx, jobID, job.StatusFailed)
}

// classifyMiss turns a guard miss into either an idempotent success or an
// invalid-transition error, based on where the record actually is.
func (s *Service) classifyMiss(ctx context.Context, jobID string, target job.Status) error {
	current, err := s.repo.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if current.Status == target {
		logx.WithFields(logx.Fields{
			"job_id": jobID,
			"status": string(target),
		}).Debug("jobsrv: duplicate transition, already there")
		return nil
	}
	return job.ErrInvalidTransition(jobID, current.Status, target)
}
