package coze

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"imageprompt/internal/domain"
)

type runRequest struct {
	WorkflowID string        `json:"workflow_id"`
	Parameters runParameters `json:"parameters"`
}

type runParameters struct {
	Img        string `json:"img"`
	PromptType string `json:"promptType"`
	UserQuery  string `json:"userQuery,omitempty"`
}

type runData struct {
	ExecuteID string `json:"execute_id"`
}

type inlineResult struct {
	Output string `json:"output"`
}

type statusData struct {
	ExecuteID string `json:"execute_id"`
	Status    string `json:"status"`
	Error     string `json:"error_message,omitempty"`
	Result    *struct {
		Output string `json:"output"`
	} `json:"result,omitempty"`
}

// RunWorkflow submits one run of the configured workflow. The answer carries
// either the inline output or an execute id to poll.
func (c *Client) RunWorkflow(ctx context.Context, in domain.WorkflowInput) (*domain.WorkflowRun, error) {
	fileID := strings.TrimSpace(in.FileID)
	if fileID == "" {
		return nil, errors.New("coze: file id is required")
	}
	promptType := in.PromptType
	if promptType == "" {
		promptType = domain.PromptTypeGeneral
	}
	payload := runRequest{
		WorkflowID: c.workflowID,
		Parameters: runParameters{
			Img:        fileID,
			PromptType: string(promptType),
			UserQuery:  strings.TrimSpace(in.UserQuery),
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("coze: encode run request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+runPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("coze: build run request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log(ctx).Debug().
		Str("workflow_id", c.workflowID).
		Str("file_id", fileID).
		Str("prompt_type", string(promptType)).
		Msg("coze: running workflow")

	env, err := c.do(req, domain.StageRun)
	if err != nil {
		return nil, err
	}
	if env.Code != 0 {
		return nil, &domain.UpstreamError{
			Stage:    domain.StageRun,
			Code:     env.Code,
			Message:  env.Msg,
			DebugURL: env.DebugURL,
		}
	}

	run, err := decodeRunData(env.Data)
	if err != nil {
		return nil, err
	}
	run.DebugURL = env.DebugURL
	return run, nil
}

// decodeRunData tells the two shapes of data apart by JSON type: a string is
// the serialized workflow output, an object carries the execute id.
func decodeRunData(raw json.RawMessage) (*domain.WorkflowRun, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, &domain.ProtocolError{Stage: domain.StageRun, Message: "response is missing data"}
	}
	switch trimmed[0] {
	case '"':
		var encoded string
		if err := json.Unmarshal(trimmed, &encoded); err != nil {
			return nil, &domain.ProtocolError{Stage: domain.StageRun, Message: "decode inline data: " + err.Error()}
		}
		var result inlineResult
		if err := json.Unmarshal([]byte(encoded), &result); err != nil {
			return nil, &domain.ProtocolError{Stage: domain.StageRun, Message: "inline result is not a JSON object"}
		}
		if strings.TrimSpace(result.Output) == "" {
			return nil, &domain.ProtocolError{Stage: domain.StageRun, Message: "inline result is missing output"}
		}
		return &domain.WorkflowRun{Output: result.Output}, nil
	case '{':
		var data runData
		if err := json.Unmarshal(trimmed, &data); err != nil {
			return nil, &domain.ProtocolError{Stage: domain.StageRun, Message: "decode run data: " + err.Error()}
		}
		if strings.TrimSpace(data.ExecuteID) == "" {
			return nil, &domain.ProtocolError{Stage: domain.StageRun, Message: "response is missing execute_id"}
		}
		return &domain.WorkflowRun{ExecuteID: data.ExecuteID}, nil
	}
	return nil, &domain.ProtocolError{Stage: domain.StageRun, Message: "unexpected data shape"}
}

// WorkflowStatus performs a single status check for executeID.
func (c *Client) WorkflowStatus(ctx context.Context, executeID string) (*domain.ExecutionStatus, error) {
	executeID = strings.TrimSpace(executeID)
	if executeID == "" {
		return nil, errors.New("coze: execute id is required")
	}
	endpoint := c.baseURL + statusPath + "?" + url.Values{"execute_id": {executeID}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("coze: build status request: %w", err)
	}

	env, err := c.do(req, domain.StageStatus)
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) {
			upstream.ExecuteID = executeID
		}
		return nil, err
	}
	if env.Code != 0 {
		return nil, &domain.UpstreamError{Stage: domain.StageStatus, Code: env.Code, Message: env.Msg, ExecuteID: executeID}
	}

	var data statusData
	if trimmed := bytes.TrimSpace(env.Data); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, &data); err != nil {
			return nil, &domain.ProtocolError{Stage: domain.StageStatus, Message: "decode status data: " + err.Error()}
		}
	}
	state, ok := domain.ParseExecutionState(data.Status)
	if !ok {
		return nil, &domain.ProtocolError{Stage: domain.StageStatus, Message: fmt.Sprintf("unknown execution status %q", data.Status)}
	}
	status := &domain.ExecutionStatus{ExecuteID: executeID, State: state, Message: data.Error}
	if data.Result != nil {
		status.Output = data.Result.Output
	}
	if state == domain.ExecutionSuccess && strings.TrimSpace(status.Output) == "" {
		return nil, &domain.ProtocolError{Stage: domain.StageStatus, Message: "execution succeeded without output"}
	}
	return status, nil
}
