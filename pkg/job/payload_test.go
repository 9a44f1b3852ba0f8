package job_test

import (
	"testing"

	"github.com/Abraxas-365/trainforge/pkg/job"
)

func TestExecutionRequest_RoundTrip(t *testing.T) {
	j := &job.Job{
		ID:              "job-1",
		TargetName:      "resnet",
		ResourceLocator: "s3://data/train",
		Parameters:      map[string]interface{}{"epochs": 5},
	}

	body, err := job.NewExecutionRequest(j).Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	req, err := job.DecodeExecutionRequest(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.JobID != "job-1" || req.TargetName != "resnet" || req.Kind != job.KindTraining {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestDecodeExecutionRequest_Poison(t *testing.T) {
	if _, err := job.DecodeExecutionRequest([]byte("not json at all")); err == nil {
		t.Fatal("expected error for malformed body")
	}
	if _, err := job.DecodeExecutionRequest([]byte(`{"target_name":"x"}`)); err == nil {
		t.Fatal("expected error for body without job_id")
	}
}
