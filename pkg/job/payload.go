package job

import "encoding/json"

// KindTraining is the message kind carried by every execution request.
const KindTraining = "training"

// ExecutionRequest is the delivery queue message body. It carries the full
// spec so the worker can run the job without a store read, plus the job id
// for state transitions.
type ExecutionRequest struct {
	JobID           string                 `json:"job_id"`
	TargetName      string                 `json:"target_name"`
	ResourceLocator string                 `json:"resource_locator"`
	Parameters      map[string]interface{} `json:"parameters"`
	Kind            string                 `json:"kind"`
}

// NewExecutionRequest builds the message body for a job record.
func NewExecutionRequest(j *Job) ExecutionRequest {
	return ExecutionRequest{
		JobID:           j.ID,
		TargetName:      j.TargetName,
		ResourceLocator: j.ResourceLocator,
		Parameters:      j.Parameters,
		Kind:            KindTraining,
	}
}

// Encode marshals the request to a queue message body.
func (r ExecutionRequest) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// DecodeExecutionRequest parses a queue message body. A body that does not
// parse, or that carries no job id, can never be processed and is treated as
// a poison message by the consumer.
func DecodeExecutionRequest(body []byte) (*ExecutionRequest, error) {
	var req ExecutionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, err
	}
	if req.JobID == "" {
		return nil, ErrValidation("execution request has no job_id")
	}
	return &req, nil
}
