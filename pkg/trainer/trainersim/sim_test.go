package trainersim_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Abraxas-365/trainforge/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/trainforge/pkg/trainer/trainersim"
)

func TestSimRunner_Success(t *testing.T) {
	r := trainersim.New(trainersim.WithEpochPause(0))

	result, err := r.Run(context.Background(), "resnet", "data/train.csv", map[string]interface{}{
		"epochs": float64(3), // JSON numbers arrive as float64
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(result.Summary, "3 epochs") {
		t.Fatalf("unexpected summary: %s", result.Summary)
	}
	if _, ok := result.Metrics["final_accuracy"]; !ok {
		t.Fatalf("missing metrics: %+v", result.Metrics)
	}
}

func TestSimRunner_FailureInjection(t *testing.T) {
	r := trainersim.New(trainersim.WithEpochPause(0))

	_, err := r.Run(context.Background(), "resnet", "data/train.csv", map[string]interface{}{
		"fail_with": "oom on batch 7",
	})
	if err == nil {
		t.Fatal("expected injected failure")
	}
	if !strings.Contains(err.Error(), "oom on batch 7") {
		t.Fatalf("injected message lost: %v", err)
	}
}

func TestSimRunner_DatasetProbe(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "train.csv"), []byte("a,b\n"), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	storage, err := fsxlocal.New(dir)
	if err != nil {
		t.Fatalf("storage: %v", err)
	}

	r := trainersim.New(trainersim.WithEpochPause(0), trainersim.WithStorage(storage))

	if _, err := r.Run(context.Background(), "resnet", "train.csv", map[string]interface{}{"epochs": 1}); err != nil {
		t.Fatalf("run with existing dataset: %v", err)
	}

	if _, err := r.Run(context.Background(), "resnet", "missing.csv", map[string]interface{}{"epochs": 1}); err == nil {
		t.Fatal("expected failure for missing dataset")
	}
}

func TestSimRunner_ContextCancellation(t *testing.T) {
	r := trainersim.New(trainersim.WithEpochPause(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Run(ctx, "resnet", "data/train.csv", map[string]interface{}{"epochs": 1000}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
