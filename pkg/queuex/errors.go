package queuex

import "github.com/Abraxas-365/trainforge/pkg/errx"

var queueErrors = errx.NewRegistry("QUEUE")

var (
	CodeSendFailed    = queueErrors.Register("SEND_FAILED", errx.TypeExternal, 502, "Failed to send message to delivery queue")
	CodeReceiveFailed = queueErrors.Register("RECEIVE_FAILED", errx.TypeExternal, 502, "Failed to receive from delivery queue")
	CodeAckFailed     = queueErrors.Register("ACK_FAILED", errx.TypeExternal, 502, "Failed to acknowledge message")
	CodePoisonMessage = queueErrors.Register("POISON_MESSAGE", errx.TypeValidation, 400, "Message body cannot be parsed")
)

func ErrSendFailed(cause error) *errx.Error {
	return queueErrors.NewWithCause(CodeSendFailed, cause)
}

func ErrReceiveFailed(cause error) *errx.Error {
	return queueErrors.NewWithCause(CodeReceiveFailed, cause)
}

func ErrAckFailed(cause error) *errx.Error {
	return queueErrors.NewWithCause(CodeAckFailed, cause)
}

func ErrPoisonMessage(cause error, messageID string) *errx.Error {
	return queueErrors.NewWithCause(CodePoisonMessage, cause).
		WithDetail("message_id", messageID)
}
