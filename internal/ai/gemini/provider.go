package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/config"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
	"google.golang.org/genai"
)

// Provider implements models.TextGenerator using the Gemini API.
type Provider struct {
	client *genai.Client
	model  string
}

func NewProvider(ctx context.Context, cfg config.GeminiConfig) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: GEMINI_API_KEY is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &Provider{client: client, model: model}, nil
}

func (p *Provider) Name() string { return "gemini" }

func (p *Provider) Generate(ctx context.Context, req models.GenerationRequest) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.JSON {
		genCfg.ResponseMIMEType = "application/json"
	}
	if req.SystemInstruction != "" {
		genCfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemInstruction}},
		}
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(req.Prompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return result.Text(), nil
}

var _ models.TextGenerator = (*Provider)(nil)
