// Package notifx sends operator notifications when a job reaches a terminal
// state. Delivery is best-effort and fire-and-forget: a lost notification is
// acceptable, a blocked consumer loop is not.
package notifx

import (
	"context"
	"fmt"

	"github.com/Abraxas-365/trainforge/pkg/job"
)

// EmailMessage is one email to be sent by a provider.
type EmailMessage struct {
	From     string   `json:"from"`
	To       []string `json:"to"`
	Subject  string   `json:"subject"`
	TextBody string   `json:"text_body,omitempty"`
}

// EmailSender sends a single email.
type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage) error
}

// Client formats and sends job outcome notifications through a provider.
type Client struct {
	provider EmailSender
	from     string
	to       []string
}

// NewClient creates a notification client with a fixed recipient list.
func NewClient(provider EmailSender, from string, to []string) *Client {
	return &Client{provider: provider, from: from, to: to}
}

// NotifyOutcome sends a notification describing the job's terminal state.
// Non-terminal jobs are ignored.
func (c *Client) NotifyOutcome(ctx context.Context, j *job.Job) error {
	if len(c.to) == 0 {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "no recipients configured")
	}

	var subject, body string
	switch j.Status {
	case job.StatusCompleted:
		subject = fmt.Sprintf("[trainforge] job %s completed", j.ID)
		body = fmt.Sprintf(
			"Job %s (%s on %s) completed.\nOwner: %s\nRetries: %d\n",
			j.ID, j.TargetName, j.ResourceLocator, j.OwnerID, j.RetryCount)
	case job.StatusFailed:
		subject = fmt.Sprintf("[trainforge] job %s failed", j.ID)
		errorLog := "no error log recorded"
		if j.ErrorLog != nil {
			errorLog = *j.ErrorLog
		}
		body = fmt.Sprintf(
			"Job %s (%s on %s) failed.\nOwner: %s\nRetries: %d\n\n%s\n",
			j.ID, j.TargetName, j.ResourceLocator, j.OwnerID, j.RetryCount, errorLog)
	default:
		return nil
	}

	return c.provider.SendEmail(ctx, EmailMessage{
		From:     c.from,
		To:       c.to,
		Subject:  subject,
		TextBody: body,
	})
}
