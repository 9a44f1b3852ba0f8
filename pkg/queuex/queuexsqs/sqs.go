// Package queuexsqs implements queuex.Queue on AWS SQS. The SQS visibility
// timeout is the delivery lease; a message whose receipt handle is never
// used to delete it becomes visible again.
package queuexsqs

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/Abraxas-365/trainforge/pkg/queuex"
)

// kindAttribute is the SQS message attribute carrying the job kind.
const kindAttribute = "JobKind"

// SQSQueue implements queuex.Queue backed by one SQS queue URL.
type SQSQueue struct {
	client   *sqs.Client
	queueURL string
}

// New creates an SQS-backed queue.
func New(client *sqs.Client, queueURL string) *SQSQueue {
	return &SQSQueue{client: client, queueURL: queueURL}
}

// Send pushes a message and returns the SQS-assigned message id.
func (q *SQSQueue) Send(ctx context.Context, body []byte, kind string) (string, error) {
	out, err := q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			kindAttribute: {
				DataType:    aws.String("String"),
				StringValue: aws.String(kind),
			},
		},
	})
	if err != nil {
		return "", queuex.ErrSendFailed(err)
	}
	return aws.ToString(out.MessageId), nil
}

// Receive long-polls for up to wait (capped at the SQS maximum of 20s).
func (q *SQSQueue) Receive(ctx context.Context, maxMessages int, wait time.Duration) ([]queuex.Delivery, error) {
	waitSeconds := int32(wait / time.Second)
	if waitSeconds > 20 {
		waitSeconds = 20
	}
	if maxMessages < 1 {
		maxMessages = 1
	}

	out, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: int32(maxMessages),
		WaitTimeSeconds:     waitSeconds,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil
		}
		return nil, queuex.ErrReceiveFailed(err)
	}

	deliveries := make([]queuex.Delivery, 0, len(out.Messages))
	for _, m := range out.Messages {
		deliveries = append(deliveries, queuex.Delivery{
			MessageID: aws.ToString(m.MessageId),
			Body:      []byte(aws.ToString(m.Body)),
			Lease:     aws.ToString(m.ReceiptHandle),
		})
	}
	return deliveries, nil
}

// Ack deletes the message using its receipt handle.
func (q *SQSQueue) Ack(ctx context.Context, d queuex.Delivery) error {
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(d.Lease),
	})
	if err != nil {
		return queuex.ErrAckFailed(err)
	}
	return nil
}
