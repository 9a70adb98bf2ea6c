// Package openai talks to any OpenAI-compatible chat completions endpoint.
// The same provider serves vLLM, which exposes that API.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/config"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Provider implements models.TextGenerator over an eino chat model. JSON
// requests go to a second model configured for json_object responses.
type Provider struct {
	name     string
	chat     model.BaseChatModel
	jsonChat model.BaseChatModel
}

func NewProvider(ctx context.Context, cfg config.OpenAIConfig) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: OPENAI_API_KEY is required")
	}
	return newProvider(ctx, "openai", &einoopenai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
}

// NewVLLMProvider targets a vLLM server. vLLM ignores the API key unless it
// was started with one, so a placeholder is sent.
func NewVLLMProvider(ctx context.Context, cfg config.VLLMConfig) (*Provider, error) {
	if cfg.Model == "" {
		return nil, errors.New("vllm: VLLM_MODEL is required")
	}
	return newProvider(ctx, "vllm", &einoopenai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  "EMPTY",
		Model:   cfg.Model,
	})
}

func newProvider(ctx context.Context, name string, cfg *einoopenai.ChatModelConfig) (*Provider, error) {
	chat, err := einoopenai.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: create chat model: %w", name, err)
	}

	jsonCfg := *cfg
	jsonCfg.ResponseFormat = &einoopenai.ChatCompletionResponseFormat{
		Type: einoopenai.ChatCompletionResponseFormatTypeJSONObject,
	}
	jsonChat, err := einoopenai.NewChatModel(ctx, &jsonCfg)
	if err != nil {
		return nil, fmt.Errorf("%s: create json chat model: %w", name, err)
	}
	return &Provider{name: name, chat: chat, jsonChat: jsonChat}, nil
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Generate(ctx context.Context, req models.GenerationRequest) (string, error) {
	chat := p.chat
	if req.JSON {
		chat = p.jsonChat
	}
	resp, err := chat.Generate(ctx, Messages(req), model.WithTemperature(req.Temperature))
	if err != nil {
		return "", fmt.Errorf("%s generate: %w", p.name, err)
	}
	return resp.Content, nil
}

// Messages converts a request into a system + user chat transcript.
func Messages(req models.GenerationRequest) []*schema.Message {
	msgs := make([]*schema.Message, 0, 2)
	if req.SystemInstruction != "" {
		msgs = append(msgs, &schema.Message{Role: schema.System, Content: req.SystemInstruction})
	}
	return append(msgs, &schema.Message{Role: schema.User, Content: req.Prompt})
}

var _ models.TextGenerator = (*Provider)(nil)
