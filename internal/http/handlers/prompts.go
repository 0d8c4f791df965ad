package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"imageprompt/internal/domain"
	"imageprompt/internal/imageprompt"
)

const (
	imageField      = "image"
	promptTypeField = "promptType"
	userQueryField  = "userQuery"

	// multipart framing allowance on top of the file ceiling
	multipartOverhead = 1 << 20
	multipartMemory   = 32 << 20
)

// ImageToPrompt accepts a multipart upload and answers with the generated
// prompt.
func (a *App) ImageToPrompt(w http.ResponseWriter, r *http.Request) {
	maxBytes := a.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = domain.DefaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.fail(w, r, &domain.ValidationError{Reason: domain.ErrFileTooLarge, Detail: "request body exceeds limit"})
			return
		}
		a.fail(w, r, &domain.ValidationError{Reason: domain.ErrMissingFile, Detail: err.Error()})
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile(imageField)
	if err != nil {
		a.fail(w, r, &domain.ValidationError{Reason: domain.ErrMissingFile})
		return
	}
	defer file.Close()

	promptType, err := domain.ParsePromptType(r.FormValue(promptTypeField))
	if err != nil {
		a.fail(w, r, err)
		return
	}

	// One byte past the ceiling is enough for validation to reject it.
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		a.fail(w, r, &domain.ValidationError{Reason: domain.ErrMissingFile, Detail: err.Error()})
		return
	}
	asset := &domain.UploadedAsset{
		Filename:  header.Filename,
		MediaType: header.Header.Get("Content-Type"),
		Size:      header.Size,
		Data:      data,
	}

	res, err := a.Prompts.Generate(r.Context(), imageprompt.Request{
		Asset:      asset,
		PromptType: promptType,
		UserQuery:  r.FormValue(userQueryField),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}

	a.json(w, http.StatusOK, envelope{
		Success:  true,
		Prompt:   res.Prompt,
		FileName: res.FileName,
		FileSize: res.FileSize,
	})
}

// Preflight answers CORS preflight requests with 200. The CORS middleware in
// front of it sets the Access-Control headers.
func (a *App) Preflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// PromptModels lists the selectable prompt types.
func (a *App) PromptModels(w http.ResponseWriter, _ *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"models": domain.PromptModels()})
}

// RateLimited is the rejection handler for the rate limiter.
func (a *App) RateLimited(w http.ResponseWriter, r *http.Request) {
	a.error(w, http.StatusTooManyRequests, printer(r.Context()).Sprintf(msgTooManyRequests))
}

func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := a.describeError(r.Context(), err)
	logger := zerolog.Ctx(r.Context())
	evt := logger.Error()
	if status < http.StatusInternalServerError {
		evt = logger.Warn()
	}
	evt.Err(err).Int("status", status).Msg("image to prompt failed")
	a.error(w, status, msg)
}
