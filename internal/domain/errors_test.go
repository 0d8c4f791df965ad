package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "validation with detail",
			err:      &ValidationError{Reason: ErrUnsupportedType, Detail: "image/gif"},
			contains: []string{"unsupported media type", "image/gif"},
		},
		{
			name:     "upstream http",
			err:      &UpstreamError{Stage: StageUpload, StatusCode: 502, Body: "bad gateway"},
			contains: []string{"upload", "status 502", "bad gateway"},
		},
		{
			name:     "upstream with debug url",
			err:      &UpstreamError{Stage: StageRun, Code: 4000, Message: "config error", DebugURL: "https://www.coze.cn/work_flow?execute_id=1"},
			contains: []string{"code 4000", "config error", "debug_url: https://www.coze.cn"},
		},
		{
			name:     "protocol",
			err:      &ProtocolError{Stage: StageStatus, Message: "missing output"},
			contains: []string{"workflow_status", "missing output"},
		},
		{
			name:     "timeout",
			err:      &TimeoutError{ExecuteID: "e1", Attempts: 30},
			contains: []string{"e1", "30"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg := tc.err.Error()
			for _, substr := range tc.contains {
				if !strings.Contains(msg, substr) {
					t.Errorf("error string %q does not contain %q", msg, substr)
				}
			}
		})
	}
}

func TestErrorsSurviveWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	wrapped := fmt.Errorf("generate: %w", &UpstreamError{Stage: StageUpload, Cause: cause})

	var upstream *UpstreamError
	if !errors.As(wrapped, &upstream) {
		t.Fatalf("expected UpstreamError in chain")
	}
	if !errors.Is(wrapped, cause) {
		t.Fatalf("expected cause in chain")
	}
	if upstream.IsConfiguration() {
		t.Fatalf("plain upstream error should not be a configuration error")
	}

	validation := fmt.Errorf("handler: %w", &ValidationError{Reason: ErrFileTooLarge})
	if !IsValidation(validation) || !errors.Is(validation, ErrFileTooLarge) {
		t.Fatalf("expected wrapped validation error to match")
	}
}
