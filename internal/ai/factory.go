package ai

import (
	"context"
	"fmt"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/ai/gemini"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/ai/ollama"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/ai/openai"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/config"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
)

// NewProvider constructs the raw backend selected by cfg.Provider.
func NewProvider(ctx context.Context, cfg config.AIConfig) (models.TextGenerator, error) {
	var (
		p   models.TextGenerator
		err error
	)
	switch cfg.Provider {
	case "gemini":
		p, err = gemini.NewProvider(ctx, cfg.Gemini)
	case "openai":
		p, err = openai.NewProvider(ctx, cfg.OpenAI)
	case "vllm":
		p, err = openai.NewVLLMProvider(ctx, cfg.VLLM)
	case "ollama":
		p, err = ollama.NewProvider(ctx, cfg.Ollama)
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of gemini, openai, vllm, ollama", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// NewGenerator builds the generator the analysis path uses: the configured
// backend behind the client-side rate limiter, with errors classified.
// Called once at startup.
func NewGenerator(ctx context.Context, cfg config.AIConfig) (models.TextGenerator, error) {
	backend, err := NewProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return Classify(RateLimited(backend, cfg.RequestsPerMinute, cfg.Burst)), nil
}
