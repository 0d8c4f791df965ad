package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"imageprompt/internal/imageprompt"
)

// PromptGenerator produces a prompt for an uploaded image.
type PromptGenerator interface {
	Generate(ctx context.Context, req imageprompt.Request) (*imageprompt.Result, error)
}

// App holds the dependencies shared by every handler.
type App struct {
	Prompts        PromptGenerator
	MaxUploadBytes int64
}

func NewApp(prompts PromptGenerator, maxUploadBytes int64) *App {
	return &App{Prompts: prompts, MaxUploadBytes: maxUploadBytes}
}

// envelope is the client-facing response shape for the prompt API.
type envelope struct {
	Success  bool   `json:"success"`
	Prompt   string `json:"prompt,omitempty"`
	FileName string `json:"fileName,omitempty"`
	FileSize int64  `json:"fileSize,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, envelope{Success: false, Error: message})
}
