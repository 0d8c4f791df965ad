package domain

import "strings"

// ExecutionState enumerates the lifecycle states of a workflow execution.
type ExecutionState string

const (
	ExecutionRunning ExecutionState = "running"
	ExecutionSuccess ExecutionState = "success"
	ExecutionFailed  ExecutionState = "failed"
)

// ParseExecutionState maps the vendor status string onto ExecutionState. The
// vendor has been seen to capitalize and shorten these values.
func ParseExecutionState(raw string) (ExecutionState, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "running":
		return ExecutionRunning, true
	case "success", "succeeded":
		return ExecutionSuccess, true
	case "failed", "fail":
		return ExecutionFailed, true
	}
	return "", false
}

// Terminal reports whether no further polling is needed.
func (s ExecutionState) Terminal() bool {
	return s == ExecutionSuccess || s == ExecutionFailed
}

// WorkflowInput is the parameter set for one workflow run.
type WorkflowInput struct {
	FileID     string
	PromptType PromptType
	UserQuery  string
}

// WorkflowRun is the interpreted answer to a run request. Exactly one of
// Output and ExecuteID is set on success.
type WorkflowRun struct {
	ExecuteID string
	Output    string
	DebugURL  string
}

// Inline reports whether the run already carries the final output.
func (r *WorkflowRun) Inline() bool {
	return r != nil && r.Output != ""
}

// ExecutionStatus is a single status check result.
type ExecutionStatus struct {
	ExecuteID string
	State     ExecutionState
	Output    string
	Message   string
}
