// Package notifxconsole logs notifications instead of sending them.
// Intended for development and testing.
package notifxconsole

import (
	"context"
	"strings"

	"github.com/Abraxas-365/trainforge/pkg/logx"
	"github.com/Abraxas-365/trainforge/pkg/notifx"
)

// ConsoleProvider implements notifx.EmailSender by logging through logx.
type ConsoleProvider struct{}

// NewConsoleProvider creates a console provider.
func NewConsoleProvider() *ConsoleProvider {
	return &ConsoleProvider{}
}

// SendEmail logs the email details instead of sending.
func (p *ConsoleProvider) SendEmail(_ context.Context, msg notifx.EmailMessage) error {
	logx.WithFields(logx.Fields{
		"from":    msg.From,
		"to":      strings.Join(msg.To, ", "),
		"subject": msg.Subject,
	}).Info("notifx/console: email sent (dev mode)")

	if msg.TextBody != "" {
		logx.Debugf("notifx/console: body:\n%s", msg.TextBody)
	}
	return nil
}
