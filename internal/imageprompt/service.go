// Package imageprompt turns an uploaded image into a generated prompt by
// driving the external workflow: upload, run, and poll when needed.
package imageprompt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"imageprompt/internal/domain"
)

// Workflow is the external workflow API the service drives.
type Workflow interface {
	UploadFile(ctx context.Context, asset *domain.UploadedAsset) (*domain.RemoteFile, error)
	RunWorkflow(ctx context.Context, in domain.WorkflowInput) (*domain.WorkflowRun, error)
	PollExecution(ctx context.Context, executeID string) (string, error)
}

// Options configures the Service.
type Options struct {
	Workflow       Workflow
	MaxUploadBytes int64
	Timeout        time.Duration
}

// Service validates uploads and runs the prompt workflow for them.
type Service struct {
	workflow       Workflow
	maxUploadBytes int64
	timeout        time.Duration
}

// Request is one image-to-prompt job.
type Request struct {
	Asset      *domain.UploadedAsset
	PromptType domain.PromptType
	UserQuery  string
}

// Result is the generated prompt plus echoed file metadata.
type Result struct {
	Prompt     string
	FileName   string
	FileSize   int64
	ExecuteID  string
	PromptType domain.PromptType
}

// NewService wires a Service. Workflow is required.
func NewService(opts Options) (*Service, error) {
	if opts.Workflow == nil {
		return nil, fmt.Errorf("imageprompt: workflow client is required")
	}
	maxBytes := opts.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = domain.DefaultMaxUploadBytes
	}
	return &Service{workflow: opts.Workflow, maxUploadBytes: maxBytes, timeout: opts.Timeout}, nil
}

// MaxUploadBytes returns the configured upload ceiling.
func (s *Service) MaxUploadBytes() int64 {
	return s.maxUploadBytes
}

// Generate validates the asset and runs the workflow for it. Invalid input
// never reaches the external API.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	asset := req.Asset
	if asset != nil {
		asset.NormalizeMediaType()
	}
	if err := asset.Validate(s.maxUploadBytes); err != nil {
		return nil, err
	}
	promptType := req.PromptType
	if promptType == "" {
		promptType = domain.PromptTypeGeneral
	}
	query := strings.TrimSpace(req.UserQuery)
	if query == "" {
		query = promptType.DefaultQuery()
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	logger := zerolog.Ctx(ctx).With().
		Str("file_name", asset.Filename).
		Int64("file_size", asset.Size).
		Str("prompt_type", string(promptType)).
		Logger()

	file, err := s.workflow.UploadFile(ctx, asset)
	if err != nil {
		logger.Error().Err(err).Str("stage", domain.StageUpload).Msg("image upload failed")
		return nil, fmt.Errorf("upload image: %w", err)
	}
	logger.Info().Str("file_id", file.ID).Msg("image uploaded")

	run, err := s.workflow.RunWorkflow(ctx, domain.WorkflowInput{
		FileID:     file.ID,
		PromptType: promptType,
		UserQuery:  query,
	})
	if err != nil {
		logger.Error().Err(err).Str("stage", domain.StageRun).Str("file_id", file.ID).Msg("workflow run failed")
		return nil, fmt.Errorf("run workflow: %w", err)
	}

	result := &Result{
		FileName:   asset.Filename,
		FileSize:   asset.Size,
		PromptType: promptType,
	}
	if run.Inline() {
		logger.Info().Msg("workflow returned inline result")
		result.Prompt = run.Output
		return result, nil
	}

	result.ExecuteID = run.ExecuteID
	output, err := s.workflow.PollExecution(ctx, run.ExecuteID)
	if err != nil {
		logger.Error().Err(err).Str("stage", domain.StageStatus).Str("execute_id", run.ExecuteID).Msg("workflow poll failed")
		return nil, fmt.Errorf("poll workflow %s: %w", run.ExecuteID, err)
	}
	logger.Info().Str("execute_id", run.ExecuteID).Msg("workflow completed")
	result.Prompt = output
	return result, nil
}
