package trainer

import "github.com/Abraxas-365/trainforge/pkg/errx"

var trainerErrors = errx.NewRegistry("TRAINER")

var (
	CodeExecutionFailed = trainerErrors.Register("EXECUTION_FAILED", errx.TypeExternal, 502, "Training execution failed")
	CodeTimeout         = trainerErrors.Register("TIMEOUT", errx.TypeExternal, 504, "Training execution timed out")
)

func ErrExecutionFailed(cause error) *errx.Error {
	return trainerErrors.NewWithCause(CodeExecutionFailed, cause)
}

func ErrTimeout(cause error) *errx.Error {
	return trainerErrors.NewWithCause(CodeTimeout, cause)
}
