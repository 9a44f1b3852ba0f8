package jobsrv_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abraxas-365/trainforge/pkg/errx"
	"github.com/Abraxas-365/trainforge/pkg/job"
	"github.com/Abraxas-365/trainforge/pkg/job/jobinfra"
	"github.com/Abraxas-365/trainforge/pkg/job/jobsrv"
	"github.com/Abraxas-365/trainforge/pkg/queuex"
	"github.com/Abraxas-365/trainforge/pkg/queuex/queuexmem"
)

// brokenQueue fails every send, for submission failure-policy tests.
type brokenQueue struct{}

func (brokenQueue) Send(ctx context.Context, body []byte, kind string) (string, error) {
	return "", queuex.ErrSendFailed(errors.New("broker unreachable"))
}

func (brokenQueue) Receive(ctx context.Context, max int, wait time.Duration) ([]queuex.Delivery, error) {
	return nil, nil
}

func (brokenQueue) Ack(ctx context.Context, d queuex.Delivery) error { return nil }

func TestSubmit_HappyPath(t *testing.T) {
	repo := jobinfra.NewMemoryJobRepository()
	q := queuexmem.New()
	svc := jobsrv.NewService(repo, q)

	j, err := svc.Submit(context.Background(), "alice", job.NewSpec{
		TargetName:      "resnet",
		ResourceLocator: "s3://data/train",
		Parameters:      map[string]interface{}{"epochs": 5},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if j.Status != job.StatusQueued {
		t.Fatalf("status = %s, want queued", j.Status)
	}
	if j.DeliveryMessageID == nil {
		t.Fatal("delivery message id not attached")
	}
	if j.OwnerID != "alice" || j.RetryCount != 0 || j.IsRetry() {
		t.Fatalf("unexpected job: %+v", j)
	}

	if ready, _ := q.Depth(); ready != 1 {
		t.Fatalf("queue depth = %d, want 1", ready)
	}

	// The queued message decodes back to this job's spec.
	deliveries, _ := q.Receive(context.Background(), 1, time.Second)
	req, err := job.DecodeExecutionRequest(deliveries[0].Body)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if req.JobID != j.ID || req.TargetName != "resnet" {
		t.Fatalf("unexpected message: %+v", req)
	}
}

func TestSubmit_ValidationRejectsBeforeAnySideEffect(t *testing.T) {
	repo := jobinfra.NewMemoryJobRepository()
	q := queuexmem.New()
	svc := jobsrv.NewService(repo, q)

	_, err := svc.Submit(context.Background(), "alice", job.NewSpec{ResourceLocator: "s3://x"})
	if !errx.IsCode(err, job.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	jobs, _ := svc.List(context.Background(), "alice", 10)
	if len(jobs) != 0 {
		t.Fatalf("record created despite validation error: %+v", jobs)
	}
	if ready, _ := q.Depth(); ready != 0 {
		t.Fatal("message enqueued despite validation error")
	}
}

func TestSubmit_QueueFailureLeavesPendingOrphan(t *testing.T) {
	repo := jobinfra.NewMemoryJobRepository()
	svc := jobsrv.NewService(repo, brokenQueue{})

	_, err := svc.Submit(context.Background(), "alice", job.NewSpec{
		TargetName:      "resnet",
		ResourceLocator: "s3://data/train",
	})
	if err == nil {
		t.Fatal("expected submission to fail")
	}

	// The record survives as a diagnosable pending orphan.
	jobs, _ := svc.List(context.Background(), "alice", 10)
	if len(jobs) != 1 {
		t.Fatalf("expected 1 orphan record, got %d", len(jobs))
	}
	if jobs[0].Status != job.StatusPending || jobs[0].DeliveryMessageID != nil {
		t.Fatalf("unexpected orphan: %+v", jobs[0])
	}
}

func TestRetry_CreatesDerivedJob(t *testing.T) {
	repo := jobinfra.NewMemoryJobRepository()
	q := queuexmem.New()
	svc := jobsrv.NewService(repo, q)
	ctx := context.Background()

	orig, err := svc.Submit(ctx, "alice", job.NewSpec{
		TargetName:      "resnet",
		ResourceLocator: "s3://data/train",
		Parameters:      map[string]interface{}{"epochs": 5},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := svc.MarkRunning(ctx, orig.ID, "msg-1"); err != nil {
		t.Fatalf("mark running: %v", err)
	}
	if err := svc.MarkFailed(ctx, orig.ID, "boom"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	retry, err := svc.Retry(ctx, orig.ID, "alice")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}

	if retry.ID == orig.ID {
		t.Fatal("retry reused the original id")
	}
	if retry.RetryFrom == nil || *retry.RetryFrom != orig.ID {
		t.Fatalf("lineage not recorded: %+v", retry)
	}
	if retry.RetryCount != 1 {
		t.Fatalf("retry_count = %d, want 1", retry.RetryCount)
	}
	if retry.TargetName != orig.TargetName || retry.ResourceLocator != orig.ResourceLocator {
		t.Fatal("spec not copied from original")
	}
	if retry.ErrorLog != nil || retry.FailedAt != nil {
		t.Fatal("terminal artifacts leaked into the derived job")
	}

	// The original record is untouched.
	kept, _ := svc.Get(ctx, orig.ID, "alice")
	if kept.Status != job.StatusFailed || kept.ErrorLog == nil {
		t.Fatalf("original mutated by retry: %+v", kept)
	}

	retries, err := svc.ListRetries(ctx, orig.ID, "alice")
	if err != nil {
		t.Fatalf("list retries: %v", err)
	}
	if len(retries) != 1 || retries[0].ID != retry.ID {
		t.Fatalf("unexpected lineage listing: %+v", retries)
	}
}

func TestRetry_ChainIncrementsCount(t *testing.T) {
	repo := jobinfra.NewMemoryJobRepository()
	svc := jobsrv.NewService(repo, queuexmem.New())
	ctx := context.Background()

	orig, _ := svc.Submit(ctx, "alice", job.NewSpec{TargetName: "resnet", ResourceLocator: "s3://x"})
	svcFail := func(id string) {
		if err := svc.MarkRunning(ctx, id, "m"); err != nil {
			t.Fatalf("mark running %s: %v", id, err)
		}
		if err := svc.MarkFailed(ctx, id, "boom"); err != nil {
			t.Fatalf("mark failed %s: %v", id, err)
		}
	}

	svcFail(orig.ID)
	first, err := svc.Retry(ctx, orig.ID, "alice")
	if err != nil {
		t.Fatalf("first retry: %v", err)
	}
	svcFail(first.ID)
	second, err := svc.Retry(ctx, first.ID, "alice")
	if err != nil {
		t.Fatalf("second retry: %v", err)
	}

	if second.RetryCount != 2 {
		t.Fatalf("retry_count = %d, want 2", second.RetryCount)
	}
	if *second.RetryFrom != first.ID {
		t.Fatal("retry_from should point at the immediate parent")
	}
}

func TestRetry_Preconditions(t *testing.T) {
	repo := jobinfra.NewMemoryJobRepository()
	svc := jobsrv.NewService(repo, queuexmem.New())
	ctx := context.Background()

	running, _ := svc.Submit(ctx, "alice", job.NewSpec{TargetName: "resnet", ResourceLocator: "s3://x"})
	if err := svc.MarkRunning(ctx, running.ID, "msg-1"); err != nil {
		t.Fatalf("mark running: %v", err)
	}

	// Non-terminal jobs cannot be retried.
	if _, err := svc.Retry(ctx, running.ID, "alice"); !errx.IsCode(err, job.CodeInvalidRetryState) {
		t.Fatalf("expected invalid retry state, got %v", err)
	}

	// Unknown and foreign jobs read the same: not found.
	if _, err := svc.Retry(ctx, "no-such-job", "alice"); !errx.IsCode(err, job.CodeNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
	if _, err := svc.Retry(ctx, running.ID, "bob"); !errx.IsCode(err, job.CodeNotFound) {
		t.Fatalf("expected not-found for foreign owner, got %v", err)
	}
}

func TestErrorLog_OnlyForFailedJobs(t *testing.T) {
	repo := jobinfra.NewMemoryJobRepository()
	svc := jobsrv.NewService(repo, queuexmem.New())
	ctx := context.Background()

	j, _ := svc.Submit(ctx, "alice", job.NewSpec{TargetName: "resnet", ResourceLocator: "s3://x"})

	if _, err := svc.ErrorLog(ctx, j.ID, "alice"); !errx.IsCode(err, job.CodeNoErrorLog) {
		t.Fatalf("expected no-error-log, got %v", err)
	}

	if err := svc.MarkRunning(ctx, j.ID, "msg-1"); err != nil {
		t.Fatalf("mark running: %v", err)
	}
	if err := svc.MarkFailed(ctx, j.ID, "diagnostic text"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	failed, err := svc.ErrorLog(ctx, j.ID, "alice")
	if err != nil {
		t.Fatalf("error log: %v", err)
	}
	if failed.ErrorLog == nil || *failed.ErrorLog != "diagnostic text" {
		t.Fatalf("unexpected error log: %v", failed.ErrorLog)
	}
	if failed.FailedAt == nil {
		t.Fatal("failed_at not set")
	}
}

func TestGetByMessageID(t *testing.T) {
	repo := jobinfra.NewMemoryJobRepository()
	svc := jobsrv.NewService(repo, queuexmem.New())
	ctx := context.Background()

	j, _ := svc.Submit(ctx, "alice", job.NewSpec{TargetName: "resnet", ResourceLocator: "s3://x"})

	got, err := svc.GetByMessageID(ctx, *j.DeliveryMessageID)
	if err != nil {
		t.Fatalf("get by message id: %v", err)
	}
	if got.ID != j.ID {
		t.Fatalf("wrong job: %s", got.ID)
	}
}
