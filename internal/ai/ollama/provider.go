package ollama

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/ai/openai"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/config"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
	einoollama "github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino/components/model"
)

// Provider implements models.TextGenerator using a local Ollama server.
type Provider struct {
	chat     model.BaseChatModel
	jsonChat model.BaseChatModel
}

func NewProvider(ctx context.Context, cfg config.OllamaConfig) (*Provider, error) {
	chat, err := einoollama.NewChatModel(ctx, &einoollama.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama: create chat model: %w", err)
	}
	jsonChat, err := einoollama.NewChatModel(ctx, &einoollama.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Format:  json.RawMessage(`"json"`),
	})
	if err != nil {
		return nil, fmt.Errorf("ollama: create json chat model: %w", err)
	}
	return &Provider{chat: chat, jsonChat: jsonChat}, nil
}

func (p *Provider) Name() string { return "ollama" }

func (p *Provider) Generate(ctx context.Context, req models.GenerationRequest) (string, error) {
	chat := p.chat
	if req.JSON {
		chat = p.jsonChat
	}
	resp, err := chat.Generate(ctx, openai.Messages(req), model.WithTemperature(req.Temperature))
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return resp.Content, nil
}

var _ models.TextGenerator = (*Provider)(nil)
