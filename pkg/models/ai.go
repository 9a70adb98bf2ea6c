// Package models contains shared data models used across the credit service.
package models

import "context"

// TextGenerator is the single client abstraction over every inference backend.
// Never call a specific backend directly; inject this interface.
type TextGenerator interface {
	// Generate returns the completion for one role instruction plus prompt.
	Generate(ctx context.Context, req GenerationRequest) (string, error)
	// Name returns the backend identifier (e.g., "gemini", "ollama").
	Name() string
}

// GenerationRequest is one outbound completion call.
type GenerationRequest struct {
	Profile           string // profile name, for logs only
	SystemInstruction string
	Prompt            string
	JSON              bool // ask the backend for a JSON-only response when it supports it
	Temperature       float32
}
