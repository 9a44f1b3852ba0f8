package job

import "github.com/Abraxas-365/trainforge/pkg/errx"

var jobErrors = errx.NewRegistry("JOB")

var (
	CodeNotFound          = jobErrors.Register("NOT_FOUND", errx.TypeNotFound, 404, "Job not found")
	CodeValidation        = jobErrors.Register("VALIDATION", errx.TypeValidation, 400, "Invalid job spec")
	CodePersistence       = jobErrors.Register("PERSISTENCE", errx.TypeInternal, 500, "Job record store failure")
	CodeSubmissionFailed  = jobErrors.Register("SUBMISSION_FAILED", errx.TypeInternal, 500, "Job submission failed")
	CodeInvalidTransition = jobErrors.Register("INVALID_TRANSITION", errx.TypeConflict, 409, "Invalid job status transition")
	CodeInvalidRetryState = jobErrors.Register("INVALID_RETRY_STATE", errx.TypeBusiness, 422, "Only completed or failed jobs can be retried")
	CodeNoErrorLog        = jobErrors.Register("NO_ERROR_LOG", errx.TypeValidation, 400, "Only failed jobs have error logs")
)

func ErrNotFound() *errx.Error {
	return jobErrors.New(CodeNotFound)
}

func ErrValidation(message string) *errx.Error {
	return jobErrors.NewWithMessage(CodeValidation, message)
}

func ErrPersistence(cause error) *errx.Error {
	return jobErrors.NewWithCause(CodePersistence, cause)
}

func ErrSubmissionFailed(cause error) *errx.Error {
	return jobErrors.NewWithCause(CodeSubmissionFailed, cause)
}

func ErrInvalidTransition(jobID string, from, target Status) *errx.Error {
	return jobErrors.New(CodeInvalidTransition).
		WithDetail("job_id", jobID).
		WithDetail("from", string(from)).
		WithDetail("to", string(target))
}

func ErrInvalidRetryState(jobID string, status Status) *errx.Error {
	return jobErrors.New(CodeInvalidRetryState).
		WithDetail("job_id", jobID).
		WithDetail("status", string(status))
}

func ErrNoErrorLog() *errx.Error {
	return jobErrors.New(CodeNoErrorLog)
}
