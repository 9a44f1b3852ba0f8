package job_test

import (
	"testing"

	"github.com/Abraxas-365/trainforge/pkg/errx"
	"github.com/Abraxas-365/trainforge/pkg/job"
)

func TestStatus_Terminal(t *testing.T) {
	for _, s := range []job.Status{job.StatusPending, job.StatusQueued, job.StatusRunning} {
		if s.IsTerminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
	for _, s := range []job.Status{job.StatusCompleted, job.StatusFailed} {
		if !s.IsTerminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
}

func TestCanTransition_ForwardOnly(t *testing.T) {
	cases := []struct {
		from, target job.Status
		want         bool
	}{
		{job.StatusPending, job.StatusQueued, true},
		{job.StatusQueued, job.StatusRunning, true},
		{job.StatusRunning, job.StatusCompleted, true},
		{job.StatusRunning, job.StatusFailed, true},

		// Duplicate applications are permitted so redeliveries can no-op.
		{job.StatusRunning, job.StatusRunning, true},
		{job.StatusCompleted, job.StatusCompleted, true},
		{job.StatusFailed, job.StatusFailed, true},

		// A job not yet marked queued can still be picked up and failed.
		{job.StatusPending, job.StatusRunning, true},
		{job.StatusPending, job.StatusFailed, true},

		// Terminal states never cross or regress.
		{job.StatusCompleted, job.StatusFailed, false},
		{job.StatusFailed, job.StatusCompleted, false},
		{job.StatusCompleted, job.StatusRunning, false},
		{job.StatusRunning, job.StatusQueued, false},
		{job.StatusQueued, job.StatusPending, false},

		// A duplicate mark-queued is a guard miss, absorbed upstream without
		// touching the stored correlation id.
		{job.StatusQueued, job.StatusQueued, false},
	}

	for _, c := range cases {
		if got := job.CanTransition(c.from, c.target); got != c.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", c.from, c.target, got, c.want)
		}
	}
}

func TestNewSpec_Validate(t *testing.T) {
	spec := job.NewSpec{TargetName: "resnet", ResourceLocator: "s3://data/train"}
	if err := spec.Validate(); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}

	if err := (job.NewSpec{ResourceLocator: "s3://data/train"}).Validate(); err == nil {
		t.Fatal("expected error for missing target_name")
	} else if !errx.IsCode(err, job.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if err := (job.NewSpec{TargetName: "resnet"}).Validate(); err == nil {
		t.Fatal("expected error for missing resource_locator")
	}
}

func TestJob_IsRetry(t *testing.T) {
	j := &job.Job{}
	if j.IsRetry() {
		t.Fatal("original submission should not read as retry")
	}
	from := "some-id"
	j.RetryFrom = &from
	if !j.IsRetry() {
		t.Fatal("job with retry_from should read as retry")
	}
}
