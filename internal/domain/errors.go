package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Validation reasons. Match them with errors.Is.
var (
	ErrMissingFile       = errors.New("missing file")
	ErrUnsupportedType   = errors.New("unsupported media type")
	ErrFileTooLarge      = errors.New("file too large")
	ErrInvalidPromptType = errors.New("invalid prompt type")
)

// ValidationError reports input the caller must fix. It always maps to a
// client error.
type ValidationError struct {
	Reason error
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("validation: %v: %s", e.Reason, e.Detail)
	}
	return fmt.Sprintf("validation: %v", e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

// Upstream stages, used to tag which outbound call failed.
const (
	StageUpload   = "upload"
	StageRun      = "workflow_run"
	StageStatus   = "workflow_status"
	StageWorkflow = "workflow"
)

// UpstreamError is a non-success answer from the external API, either at the
// HTTP level (StatusCode) or at the business level (Code/Message). DebugURL is
// set when the workflow accepted the request but failed during execution.
type UpstreamError struct {
	Stage      string
	StatusCode int
	Code       int
	Message    string
	Body       string
	DebugURL   string
	ExecuteID  string
	Cause      error
}

func (e *UpstreamError) Error() string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "upstream %s", e.Stage)
	if e.StatusCode != 0 {
		fmt.Fprintf(sb, ": status %d", e.StatusCode)
	}
	if e.Code != 0 {
		fmt.Fprintf(sb, ": code %d", e.Code)
	}
	if e.Message != "" {
		fmt.Fprintf(sb, ": %s", e.Message)
	} else if e.Body != "" {
		fmt.Fprintf(sb, ": %s", e.Body)
	}
	if e.DebugURL != "" {
		fmt.Fprintf(sb, " (debug_url: %s)", e.DebugURL)
	}
	if e.Cause != nil {
		fmt.Fprintf(sb, ": %v", e.Cause)
	}
	return sb.String()
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// IsConfiguration reports whether the workflow rejected the run with a debug
// reference, which points at a workflow configuration problem.
func (e *UpstreamError) IsConfiguration() bool {
	return e.DebugURL != ""
}

// ProtocolError means the external API answered with success but broke its
// documented response shape.
type ProtocolError struct {
	Stage   string
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol %s: %s", e.Stage, e.Message)
}

// TimeoutError means the poll budget ran out while the execution was still
// running.
type TimeoutError struct {
	ExecuteID string
	Attempts  int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("workflow %s still running after %d status checks", e.ExecuteID, e.Attempts)
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
