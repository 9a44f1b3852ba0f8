package jobinfra_test

import (
	"context"
	"testing"
	"time"

	"github.com/Abraxas-365/trainforge/pkg/errx"
	"github.com/Abraxas-365/trainforge/pkg/job"
	"github.com/Abraxas-365/trainforge/pkg/job/jobinfra"
	"github.com/Abraxas-365/trainforge/pkg/kernel"
	"github.com/Abraxas-365/trainforge/pkg/ptrx"
)

func seedJob(t *testing.T, repo job.Repository, id string, owner kernel.UserID, status job.Status, createdAt time.Time) *job.Job {
	t.Helper()
	j := &job.Job{
		ID:              id,
		OwnerID:         owner,
		TargetName:      "resnet",
		ResourceLocator: "s3://data/train",
		Status:          status,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	if err := repo.Create(context.Background(), j); err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
	return j
}

func TestMemoryRepo_CreateAndGet(t *testing.T) {
	repo := jobinfra.NewMemoryJobRepository()
	ctx := context.Background()

	seedJob(t, repo, "j1", "alice", job.StatusPending, time.Now())

	got, err := repo.Get(ctx, "j1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != job.StatusPending || got.OwnerID != "alice" {
		t.Fatalf("unexpected job: %+v", got)
	}

	if _, err := repo.Get(ctx, "missing"); !errx.IsCode(err, job.CodeNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}

	if err := repo.Create(ctx, &job.Job{ID: "j1"}); err == nil {
		t.Fatal("expected duplicate id to be rejected")
	}
}

func TestMemoryRepo_OwnershipScoping(t *testing.T) {
	repo := jobinfra.NewMemoryJobRepository()
	ctx := context.Background()

	seedJob(t, repo, "j1", "alice", job.StatusPending, time.Now())

	if _, err := repo.GetOwned(ctx, "j1", "alice"); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
	// Another user's probe is indistinguishable from a missing record.
	if _, err := repo.GetOwned(ctx, "j1", "bob"); !errx.IsCode(err, job.CodeNotFound) {
		t.Fatalf("expected not-found for foreign owner, got %v", err)
	}
}

func TestMemoryRepo_ListNewestFirst(t *testing.T) {
	repo := jobinfra.NewMemoryJobRepository()
	ctx := context.Background()
	base := time.Now()

	seedJob(t, repo, "old", "alice", job.StatusPending, base.Add(-2*time.Hour))
	seedJob(t, repo, "new", "alice", job.StatusPending, base)
	seedJob(t, repo, "other", "bob", job.StatusPending, base)

	jobs, err := repo.List(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(jobs) != 2 || jobs[0].ID != "new" || jobs[1].ID != "old" {
		t.Fatalf("unexpected listing: %+v", jobs)
	}

	jobs, _ = repo.List(ctx, "alice", 1)
	if len(jobs) != 1 || jobs[0].ID != "new" {
		t.Fatalf("limit not applied: %+v", jobs)
	}
}

func TestMemoryRepo_UpdateStatusGuard(t *testing.T) {
	repo := jobinfra.NewMemoryJobRepository()
	ctx := context.Background()

	seedJob(t, repo, "j1", "alice", job.StatusPending, time.Now())

	matched, err := repo.UpdateStatus(ctx, "j1", job.StatusUpdate{
		Status:    job.StatusQueued,
		UpdatedAt: time.Now(),
	}, []job.Status{job.StatusPending})
	if err != nil || !matched {
		t.Fatalf("expected guard match, got matched=%v err=%v", matched, err)
	}

	// Same guard again misses: the record has moved on.
	matched, err = repo.UpdateStatus(ctx, "j1", job.StatusUpdate{
		Status:    job.StatusQueued,
		UpdatedAt: time.Now(),
	}, []job.Status{job.StatusPending})
	if err != nil {
		t.Fatalf("guard miss should not error: %v", err)
	}
	if matched {
		t.Fatal("expected guard miss after transition")
	}

	// Missing record is an error, not a miss.
	if _, err := repo.UpdateStatus(ctx, "missing", job.StatusUpdate{
		Status:    job.StatusQueued,
		UpdatedAt: time.Now(),
	}, []job.Status{job.StatusPending}); !errx.IsCode(err, job.CodeNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestMemoryRepo_FirstTerminalWriteWins(t *testing.T) {
	repo := jobinfra.NewMemoryJobRepository()
	ctx := context.Background()

	seedJob(t, repo, "j1", "alice", job.StatusRunning, time.Now())

	first := time.Now().UTC()
	if _, err := repo.UpdateStatus(ctx, "j1", job.StatusUpdate{
		Status:    job.StatusFailed,
		FailedAt:  &first,
		ErrorLog:  ptrx.String("first diagnostic"),
		UpdatedAt: first,
	}, []job.Status{job.StatusRunning, job.StatusFailed}); err != nil {
		t.Fatalf("first failure write: %v", err)
	}

	second := first.Add(time.Minute)
	if _, err := repo.UpdateStatus(ctx, "j1", job.StatusUpdate{
		Status:    job.StatusFailed,
		FailedAt:  &second,
		ErrorLog:  ptrx.String("second diagnostic"),
		UpdatedAt: second,
	}, []job.Status{job.StatusRunning, job.StatusFailed}); err != nil {
		t.Fatalf("second failure write: %v", err)
	}

	got, _ := repo.Get(ctx, "j1")
	if got.ErrorLog == nil || *got.ErrorLog != "first diagnostic" {
		t.Fatalf("error log was overwritten: %v", got.ErrorLog)
	}
	if got.FailedAt == nil || !got.FailedAt.Equal(first) {
		t.Fatalf("failed_at was overwritten: %v", got.FailedAt)
	}
}

func TestMemoryRepo_MessageIDAndRetryLookups(t *testing.T) {
	repo := jobinfra.NewMemoryJobRepository()
	ctx := context.Background()
	base := time.Now()

	seedJob(t, repo, "orig", "alice", job.StatusFailed, base.Add(-time.Hour))
	for id, at := range map[string]time.Time{"r1": base.Add(-30 * time.Minute), "r2": base} {
		j := &job.Job{
			ID: id, OwnerID: "alice", TargetName: "resnet",
			ResourceLocator: "s3://data/train", Status: job.StatusPending,
			RetryFrom: ptrx.String("orig"), CreatedAt: at, UpdatedAt: at,
		}
		if err := repo.Create(ctx, j); err != nil {
			t.Fatalf("seed retry %s: %v", id, err)
		}
	}

	retries, err := repo.ListRetriesOf(ctx, "orig")
	if err != nil {
		t.Fatalf("list retries: %v", err)
	}
	if len(retries) != 2 || retries[0].ID != "r2" || retries[1].ID != "r1" {
		t.Fatalf("unexpected retries: %+v", retries)
	}

	msgID := "msg-42"
	if _, err := repo.UpdateStatus(ctx, "r1", job.StatusUpdate{
		Status:            job.StatusQueued,
		DeliveryMessageID: &msgID,
		UpdatedAt:         time.Now(),
	}, []job.Status{job.StatusPending}); err != nil {
		t.Fatalf("attach message id: %v", err)
	}

	got, err := repo.GetByMessageID(ctx, "msg-42")
	if err != nil {
		t.Fatalf("get by message id: %v", err)
	}
	if got.ID != "r1" {
		t.Fatalf("wrong job for message id: %s", got.ID)
	}

	if _, err := repo.GetByMessageID(ctx, "unknown"); !errx.IsCode(err, job.CodeNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}
