package handlers

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"imageprompt/internal/domain"
	"imageprompt/internal/middleware"
)

// Client-facing message keys. English text doubles as the catalog key.
const (
	msgMissingFile       = "Please choose an image file to upload"
	msgUnsupportedType   = "Unsupported file type, please upload a JPEG, PNG or WebP image"
	msgFileTooLarge      = "File size cannot exceed %d MB"
	msgInvalidPromptType = "Unsupported prompt type %q"
	msgBadRequest        = "Invalid request"
	msgWorkflowConfig    = "Workflow configuration problem, debug link: %s. Error: %s"
	msgWorkflowFailed    = "Workflow execution failed"
	msgWorkflowStart     = "Failed to start the workflow"
	msgUploadFailed      = "Failed to upload the image, please try again later"
	msgUploadRejected    = "Failed to upload the image: %s"
	msgRunRejected       = "Failed to start the workflow: %s"
	msgStatusRejected    = "Failed to check the workflow status: %s"
	msgTimeout           = "Workflow timed out, please try again later"
	msgProtocol          = "Unexpected response from the prompt service"
	msgCancelled         = "Request was cancelled"
	msgTooManyRequests   = "Too many requests, please try again later"
	msgInternal          = "Internal server error"
)

func init() {
	zh := language.Chinese
	for key, text := range map[string]string{
		msgMissingFile:       "请选择要上传的图片文件",
		msgUnsupportedType:   "不支持的文件类型，请上传 JPEG、PNG 或 WebP 格式的图片",
		msgFileTooLarge:      "文件大小不能超过%dMB",
		msgInvalidPromptType: "不支持的提示词类型 %q",
		msgBadRequest:        "请求格式错误",
		msgWorkflowConfig:    "工作流配置问题，调试链接: %s。错误信息: %s",
		msgWorkflowFailed:    "工作流执行失败",
		msgWorkflowStart:     "工作流启动失败",
		msgUploadFailed:      "文件上传失败，请稍后重试",
		msgUploadRejected:    "文件上传失败: %s",
		msgRunRejected:       "工作流启动失败: %s",
		msgStatusRejected:    "工作流状态查询失败: %s",
		msgTimeout:           "工作流执行超时，请稍后重试",
		msgProtocol:          "提示词服务返回了无法识别的结果",
		msgCancelled:         "请求已取消",
		msgTooManyRequests:   "请求过于频繁，请稍后重试",
		msgInternal:          "服务器内部错误",
	} {
		_ = message.SetString(zh, key, text)
	}
}

func printer(ctx context.Context) *message.Printer {
	return message.NewPrinter(middleware.LocaleFromContext(ctx))
}

// describeError maps a failure onto an HTTP status and one localized message.
func (a *App) describeError(ctx context.Context, err error) (int, string) {
	p := printer(ctx)

	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		switch {
		case errors.Is(err, domain.ErrMissingFile):
			return http.StatusBadRequest, p.Sprintf(msgMissingFile)
		case errors.Is(err, domain.ErrUnsupportedType):
			return http.StatusBadRequest, p.Sprintf(msgUnsupportedType)
		case errors.Is(err, domain.ErrFileTooLarge):
			return http.StatusBadRequest, p.Sprintf(msgFileTooLarge, a.maxUploadMB())
		case errors.Is(err, domain.ErrInvalidPromptType):
			return http.StatusBadRequest, p.Sprintf(msgInvalidPromptType, validation.Detail)
		}
		return http.StatusBadRequest, p.Sprintf(msgBadRequest)
	}

	var timeout *domain.TimeoutError
	if errors.As(err, &timeout) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusInternalServerError, p.Sprintf(msgTimeout)
	}
	if errors.Is(err, context.Canceled) {
		return http.StatusInternalServerError, p.Sprintf(msgCancelled)
	}

	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		switch {
		case upstream.IsConfiguration():
			return http.StatusInternalServerError, p.Sprintf(msgWorkflowConfig, upstream.DebugURL, upstream.Message)
		case upstream.Stage == domain.StageWorkflow:
			return http.StatusInternalServerError, p.Sprintf(msgWorkflowFailed)
		case upstream.Message != "":
			return http.StatusInternalServerError, p.Sprintf(upstreamFormat(upstream.Stage), upstream.Message)
		case upstream.Stage == domain.StageUpload:
			return http.StatusInternalServerError, p.Sprintf(msgUploadFailed)
		}
		return http.StatusInternalServerError, p.Sprintf(msgWorkflowStart)
	}

	var protocol *domain.ProtocolError
	if errors.As(err, &protocol) {
		return http.StatusInternalServerError, p.Sprintf(msgProtocol)
	}

	return http.StatusInternalServerError, p.Sprintf(msgInternal)
}

// upstreamFormat picks the localized wrapper for a message reported by the
// workflow API at stage.
func upstreamFormat(stage string) string {
	switch stage {
	case domain.StageUpload:
		return msgUploadRejected
	case domain.StageStatus:
		return msgStatusRejected
	}
	return msgRunRejected
}

func (a *App) maxUploadMB() int64 {
	maxBytes := a.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = domain.DefaultMaxUploadBytes
	}
	mb := maxBytes >> 20
	if mb == 0 {
		mb = 1
	}
	return mb
}
