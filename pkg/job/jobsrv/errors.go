package jobsrv

import "github.com/Abraxas-365/trainforge/pkg/errx"

var consumerErrors = errx.NewRegistry("CONSUMER")

var (
	CodeAlreadyRunning = consumerErrors.Register("ALREADY_RUNNING", errx.TypeConflict, 409, "Consumer is already running")
)

func errAlreadyRunning() *errx.Error {
	return consumerErrors.New(CodeAlreadyRunning)
}
