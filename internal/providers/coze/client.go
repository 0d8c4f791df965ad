// Package coze talks to the Coze open API: file upload, workflow run and
// workflow status retrieval.
package coze

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"imageprompt/internal/domain"
	"imageprompt/internal/infra"
)

var (
	// ErrMissingAPIKey indicates that the client was configured without credentials.
	ErrMissingAPIKey = errors.New("coze: api token is required")
	// ErrMissingWorkflowID indicates that no workflow was configured.
	ErrMissingWorkflowID = errors.New("coze: workflow id is required")
)

const (
	defaultBaseURL      = "https://api.coze.cn"
	defaultPollInterval = 2 * time.Second
	defaultMaxAttempts  = 30
	maxResponseBytes    = 1 << 20
	maxErrorBodyLen     = 512

	uploadPath = "/v1/files/upload"
	runPath    = "/v1/workflow/run"
	statusPath = "/v1/workflow/run/retrieve"
)

// Options configures the Coze client.
type Options struct {
	APIKey         string
	WorkflowID     string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
	PollInterval   time.Duration
	MaxAttempts    int
}

// Client performs authenticated calls against one Coze workflow.
type Client struct {
	apiKey       string
	workflowID   string
	baseURL      string
	pollInterval time.Duration
	maxAttempts  int
	httpClient   *http.Client
	logger       *infra.Logger
}

// envelope is the response wrapper shared by every Coze endpoint.
type envelope struct {
	Code     int             `json:"code"`
	Msg      string          `json:"msg"`
	DebugURL string          `json:"debug_url,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// NewClient constructs a client with defaults for anything left unset.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	workflowID := strings.TrimSpace(opts.WorkflowID)
	if workflowID == "" {
		return nil, ErrMissingWorkflowID
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Client{
		apiKey:       apiKey,
		workflowID:   workflowID,
		baseURL:      baseURL,
		pollInterval: interval,
		maxAttempts:  attempts,
		httpClient:   httpClient,
		logger:       logger,
	}, nil
}

// WorkflowID returns the configured workflow identifier.
func (c *Client) WorkflowID() string {
	return c.workflowID
}

// PollBudget is the upper bound on time spent polling one execution.
func (c *Client) PollBudget() time.Duration {
	return c.pollInterval * time.Duration(c.maxAttempts)
}

// log prefers the request-scoped logger carried by ctx.
func (c *Client) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return c.logger
}

// do sends req with bearer auth and decodes the envelope. Non-2xx answers
// become UpstreamError; an undecodable 2xx body is a ProtocolError.
func (c *Client) do(req *http.Request, stage string) (*envelope, error) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Stage: stage, Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &domain.UpstreamError{Stage: stage, StatusCode: resp.StatusCode, Cause: err}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		upstream := &domain.UpstreamError{
			Stage:      stage,
			StatusCode: resp.StatusCode,
			Body:       truncate(strings.TrimSpace(string(raw)), maxErrorBodyLen),
		}
		if decodeErr == nil {
			upstream.Code = env.Code
			upstream.Message = env.Msg
			upstream.DebugURL = env.DebugURL
		}
		return nil, upstream
	}
	if decodeErr != nil {
		return nil, &domain.ProtocolError{Stage: stage, Message: "decode response: " + decodeErr.Error()}
	}
	return &env, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
