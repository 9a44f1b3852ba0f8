package queuexmem_test

import (
	"context"
	"testing"
	"time"

	"github.com/Abraxas-365/trainforge/pkg/queuex/queuexmem"
)

func TestMemoryQueue_SendReceiveAck(t *testing.T) {
	q := queuexmem.New()
	ctx := context.Background()

	id, err := q.Send(ctx, []byte("payload"), "training")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if id == "" {
		t.Fatal("expected a message id")
	}

	deliveries, err := q.Receive(ctx, 10, time.Second)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if len(deliveries) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(deliveries))
	}
	d := deliveries[0]
	if d.MessageID != id || string(d.Body) != "payload" || d.Lease == "" {
		t.Fatalf("unexpected delivery: %+v", d)
	}

	// Received but unacked: in flight, not ready.
	ready, inflight := q.Depth()
	if ready != 0 || inflight != 1 {
		t.Fatalf("depth = (%d, %d), want (0, 1)", ready, inflight)
	}

	if err := q.Ack(ctx, d); err != nil {
		t.Fatalf("ack: %v", err)
	}
	ready, inflight = q.Depth()
	if ready != 0 || inflight != 0 {
		t.Fatalf("depth after ack = (%d, %d), want (0, 0)", ready, inflight)
	}

	// Double ack is an error, the lease is gone.
	if err := q.Ack(ctx, d); err == nil {
		t.Fatal("expected error on second ack")
	}
}

func TestMemoryQueue_ReceiveTimesOutEmpty(t *testing.T) {
	q := queuexmem.New()

	deliveries, err := q.Receive(context.Background(), 1, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if len(deliveries) != 0 {
		t.Fatalf("expected no deliveries, got %d", len(deliveries))
	}
}

func TestMemoryQueue_Redeliver(t *testing.T) {
	q := queuexmem.New()
	ctx := context.Background()

	id, _ := q.Send(ctx, []byte("payload"), "training")
	if _, err := q.Receive(ctx, 1, time.Second); err != nil {
		t.Fatalf("receive: %v", err)
	}

	if n := q.Redeliver(); n != 1 {
		t.Fatalf("redeliver = %d, want 1", n)
	}

	// The same message comes back with a fresh lease.
	deliveries, err := q.Receive(ctx, 1, time.Second)
	if err != nil {
		t.Fatalf("second receive: %v", err)
	}
	if len(deliveries) != 1 || deliveries[0].MessageID != id {
		t.Fatalf("expected redelivered message, got %+v", deliveries)
	}
}
