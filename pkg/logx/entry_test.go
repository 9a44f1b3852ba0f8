package logx_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Abraxas-365/trainforge/pkg/logx"
	"github.com/rs/zerolog"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logx.SetDefaultLogger(zerolog.New(&buf))
	t.Cleanup(func() {
		logx.SetDefaultLogger(zerolog.New(bytes.NewBuffer(nil)))
	})
	return &buf
}

func TestEntry_WithFieldsChainsOntoExistingEntry(t *testing.T) {
	buf := captureOutput(t)

	logx.WithError(errors.New("send failed")).
		WithFields(logx.Fields{"job_id": "j-1", "message_id": "m-1"}).
		Warn("dispatch degraded")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if line["error"] != "send failed" {
		t.Errorf("error field = %v, want send failed", line["error"])
	}
	if line["job_id"] != "j-1" || line["message_id"] != "m-1" {
		t.Errorf("fields not attached: %v", line)
	}
	if line["message"] != "dispatch degraded" {
		t.Errorf("message = %v", line["message"])
	}
}

func TestEntry_WithFieldsMergesWithWithField(t *testing.T) {
	buf := captureOutput(t)

	logx.WithField("attempt", 2).
		WithFields(logx.Fields{"queue": "jobs"}).
		Info("redelivered")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if line["attempt"] != float64(2) || line["queue"] != "jobs" {
		t.Errorf("merged fields missing: %v", line)
	}
}
