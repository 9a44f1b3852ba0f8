// Package queuexmem is an in-memory queuex.Queue for tests and local
// development. It models at-least-once delivery: received messages sit
// in-flight until acknowledged, and Redeliver simulates a lease expiry by
// making them visible again.
package queuexmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Abraxas-365/trainforge/pkg/queuex"
)

// MemoryQueue implements queuex.Queue in process memory.
type MemoryQueue struct {
	mu       sync.Mutex
	ready    []queuex.Delivery
	inflight map[string]queuex.Delivery
}

// New creates an empty in-memory queue.
func New() *MemoryQueue {
	return &MemoryQueue{
		inflight: make(map[string]queuex.Delivery),
	}
}

// Send appends a message to the ready list.
func (q *MemoryQueue) Send(ctx context.Context, body []byte, kind string) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	id := uuid.New().String()
	q.ready = append(q.ready, queuex.Delivery{
		MessageID: id,
		Body:      append([]byte(nil), body...),
	})
	return id, nil
}

// Receive polls until a message is ready, wait elapses or ctx is done.
func (q *MemoryQueue) Receive(ctx context.Context, maxMessages int, wait time.Duration) ([]queuex.Delivery, error) {
	if maxMessages < 1 {
		maxMessages = 1
	}
	deadline := time.Now().Add(wait)

	for {
		q.mu.Lock()
		if len(q.ready) > 0 {
			n := maxMessages
			if n > len(q.ready) {
				n = len(q.ready)
			}
			out := make([]queuex.Delivery, 0, n)
			for _, d := range q.ready[:n] {
				d.Lease = uuid.New().String()
				q.inflight[d.Lease] = d
				out = append(out, d)
			}
			q.ready = q.ready[n:]
			q.mu.Unlock()
			return out, nil
		}
		q.mu.Unlock()

		if time.Now().After(deadline) {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, nil
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// Ack removes an in-flight message for good.
func (q *MemoryQueue) Ack(ctx context.Context, d queuex.Delivery) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.inflight[d.Lease]; !ok {
		return queuex.ErrAckFailed(fmt.Errorf("unknown lease %q", d.Lease))
	}
	delete(q.inflight, d.Lease)
	return nil
}

// Redeliver makes every unacknowledged message visible again, as an expired
// visibility timeout would. Returns how many messages were requeued.
func (q *MemoryQueue) Redeliver() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for lease, d := range q.inflight {
		d.Lease = ""
		q.ready = append(q.ready, d)
		delete(q.inflight, lease)
		n++
	}
	return n
}

// Depth reports ready and in-flight counts, for tests.
func (q *MemoryQueue) Depth() (ready, inflight int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ready), len(q.inflight)
}
