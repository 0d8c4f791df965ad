package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PromptType selects the style of prompt the workflow produces.
type PromptType string

const (
	PromptTypeGeneral    PromptType = "general"
	PromptTypeFlux       PromptType = "flux"
	PromptTypeMidjourney PromptType = "midjourney"
	PromptTypeStable     PromptType = "stable"
)

// PromptModel describes one entry of the prompt-type picker.
type PromptModel struct {
	ID           PromptType `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Default      bool       `json:"default,omitempty"`
	DefaultQuery string     `json:"-"`
}

var promptModels = []PromptModel{
	{
		ID:           PromptTypeGeneral,
		Name:         "General Image Prompt",
		Description:  "Natural language description of the image",
		Default:      true,
		DefaultQuery: "Generate a detailed prompt for this image",
	},
	{
		ID:           PromptTypeFlux,
		Description:  "Optimized for state-of-the-art Flux AI models, concise natural language",
		DefaultQuery: "Generate a Flux-optimized prompt for this image",
	},
	{
		ID:           PromptTypeMidjourney,
		Description:  "Tailored for Midjourney generation with Midjourney parameters",
		DefaultQuery: "Generate a Midjourney-style prompt for this image",
	},
	{
		ID:           PromptTypeStable,
		Name:         "Stable Diffusion",
		Description:  "Formatted for Stable Diffusion models",
		DefaultQuery: "Generate a Stable Diffusion prompt for this image",
	},
}

// PromptModels returns the supported prompt types in display order.
func PromptModels() []PromptModel {
	title := cases.Title(language.English)
	out := make([]PromptModel, len(promptModels))
	for i, m := range promptModels {
		if m.Name == "" {
			m.Name = title.String(string(m.ID))
		}
		out[i] = m
	}
	return out
}

// ParsePromptType resolves a client-supplied selector. Empty input yields the
// general type.
func ParsePromptType(raw string) (PromptType, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return PromptTypeGeneral, nil
	}
	for _, m := range promptModels {
		if string(m.ID) == raw {
			return m.ID, nil
		}
	}
	return "", &ValidationError{Reason: ErrInvalidPromptType, Detail: raw}
}

// DefaultQuery is the instruction sent when the caller gives none.
func (p PromptType) DefaultQuery() string {
	for _, m := range promptModels {
		if m.ID == p {
			return m.DefaultQuery
		}
	}
	return promptModels[0].DefaultQuery
}
