package notifx

import "github.com/Abraxas-365/trainforge/pkg/errx"

var notifxErrors = errx.NewRegistry("NOTIFX")

var (
	ErrInvalidMessage = notifxErrors.Register("INVALID_MESSAGE", errx.TypeValidation, 400, "Invalid notification message")
	ErrSendFailed     = notifxErrors.Register("SEND_FAILED", errx.TypeExternal, 502, "Failed to send notification")
)

// NewSendFailed wraps a provider failure in the notifx error taxonomy.
func NewSendFailed(cause error) *errx.Error {
	return notifxErrors.NewWithCause(ErrSendFailed, cause)
}
