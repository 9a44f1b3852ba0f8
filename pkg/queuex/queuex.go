// Package queuex abstracts an at-least-once message delivery channel. The
// queue's own lease (visibility timeout) is the only thing keeping two
// workers off the same message; nothing here adds distributed locking on top.
package queuex

import (
	"context"
	"time"
)

// Delivery is one received message plus the lease handle needed to
// acknowledge it. A delivery that is never acknowledged becomes visible
// again and is redelivered.
type Delivery struct {
	// MessageID is the queue-assigned message identifier, stored on the job
	// record as its correlation id.
	MessageID string

	// Body is the raw message payload.
	Body []byte

	// Lease is the backend's receipt/lease handle for acknowledgement.
	Lease string
}

// Queue is the delivery channel contract. Send returns the queue-assigned
// message id. Receive long-polls for up to wait and returns zero or more
// deliveries. Ack removes a delivery permanently; it must only be called
// once the outcome of the message is durably recorded.
type Queue interface {
	Send(ctx context.Context, body []byte, kind string) (string, error)
	Receive(ctx context.Context, maxMessages int, wait time.Duration) ([]Delivery, error)
	Ack(ctx context.Context, d Delivery) error
}
