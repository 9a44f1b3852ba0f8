// Package queuexredis implements queuex.Queue on Redis lists. Receiving
// atomically moves an envelope from the ready list to a processing list
// (BLMOVE), and acknowledging removes it from the processing list, so a
// worker crash leaves the envelope recoverable instead of lost.
package queuexredis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Abraxas-365/trainforge/pkg/queuex"
)

// RedisQueue implements queuex.Queue backed by a named pair of Redis lists.
type RedisQueue struct {
	rdb  *redis.Client
	name string
}

// New creates a Redis-backed queue.
func New(rdb *redis.Client, name string) *RedisQueue {
	return &RedisQueue{rdb: rdb, name: name}
}

func (q *RedisQueue) readyKey() string      { return fmt.Sprintf("trainforge:queue:%s", q.name) }
func (q *RedisQueue) processingKey() string { return fmt.Sprintf("trainforge:processing:%s", q.name) }

// envelope wraps the payload with a queue-assigned message id and kind, since
// Redis lists carry opaque strings.
type envelope struct {
	MessageID string          `json:"message_id"`
	Kind      string          `json:"kind"`
	Body      json.RawMessage `json:"body"`
}

// Send pushes an envelope onto the ready list.
func (q *RedisQueue) Send(ctx context.Context, body []byte, kind string) (string, error) {
	env := envelope{
		MessageID: uuid.New().String(),
		Kind:      kind,
		Body:      body,
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return "", queuex.ErrSendFailed(err)
	}
	if err := q.rdb.LPush(ctx, q.readyKey(), raw).Err(); err != nil {
		return "", queuex.ErrSendFailed(err)
	}
	return env.MessageID, nil
}

// Receive blocks for up to wait on the first message, then drains up to
// maxMessages without blocking.
func (q *RedisQueue) Receive(ctx context.Context, maxMessages int, wait time.Duration) ([]queuex.Delivery, error) {
	if maxMessages < 1 {
		maxMessages = 1
	}

	var deliveries []queuex.Delivery
	for i := 0; i < maxMessages; i++ {
		var raw string
		var err error
		if i == 0 {
			raw, err = q.rdb.BLMove(ctx, q.readyKey(), q.processingKey(), "RIGHT", "LEFT", wait).Result()
		} else {
			raw, err = q.rdb.LMove(ctx, q.readyKey(), q.processingKey(), "RIGHT", "LEFT").Result()
		}
		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				break
			}
			return deliveries, queuex.ErrReceiveFailed(err)
		}

		var env envelope
		if err := json.Unmarshal([]byte(raw), &env); err != nil {
			// Unparseable envelope: surface it as a delivery so the consumer
			// applies its poison-message policy and the entry gets removed.
			deliveries = append(deliveries, queuex.Delivery{Body: []byte(raw), Lease: raw})
			continue
		}
		deliveries = append(deliveries, queuex.Delivery{
			MessageID: env.MessageID,
			Body:      env.Body,
			Lease:     raw,
		})
	}
	return deliveries, nil
}

// Ack removes the envelope from the processing list.
func (q *RedisQueue) Ack(ctx context.Context, d queuex.Delivery) error {
	removed, err := q.rdb.LRem(ctx, q.processingKey(), 1, d.Lease).Result()
	if err != nil {
		return queuex.ErrAckFailed(err)
	}
	if removed == 0 {
		return queuex.ErrAckFailed(fmt.Errorf("no processing entry for message %s", d.MessageID))
	}
	return nil
}

// Recover moves every entry stranded on the processing list back to the
// ready list. Called once at worker startup so messages held by a crashed
// worker are redelivered.
func (q *RedisQueue) Recover(ctx context.Context) (int, error) {
	moved := 0
	for {
		_, err := q.rdb.LMove(ctx, q.processingKey(), q.readyKey(), "RIGHT", "RIGHT").Result()
		if err != nil {
			if err == redis.Nil {
				return moved, nil
			}
			return moved, queuex.ErrReceiveFailed(err)
		}
		moved++
	}
}
