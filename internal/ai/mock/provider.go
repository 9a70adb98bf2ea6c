package mock

import (
	"context"
	"sync"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/ai"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
)

// MockProvider satisfies models.TextGenerator for testing. Every call is
// recorded so tests can assert how many outbound requests were made.
type MockProvider struct {
	Name_        string
	GenerateFunc func(ctx context.Context, req models.GenerationRequest) (string, error)

	mu    sync.Mutex
	calls []models.GenerationRequest
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Generate(ctx context.Context, req models.GenerationRequest) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return "", nil
}

// Calls returns a copy of every request received so far.
func (m *MockProvider) Calls() []models.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.GenerationRequest(nil), m.calls...)
}

const (
	DefaultNarrative = "A empresa apresenta receita estável e endividamento moderado.\n\n" +
		"**Recomendação Preliminar:** Aprovar com ressalvas\n\n" +
		"**Justificativa:** O rating e a relação dívida/receita indicam risco controlado."
	DefaultProposal = "```json\n{\"valor_sugerido\": 150000, \"taxa_juros\": 1.8, \"prazo_pagamento\": 24, " +
		"\"justificativa\": \"Endividamento moderado e rating B permitem crédito parcial.\"}\n```"
)

// NewMockProvider returns a MockProvider that answers each profile with a
// well-formed response.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock",
		GenerateFunc: func(_ context.Context, req models.GenerationRequest) (string, error) {
			if req.Profile == ai.ProposalProfile.Name {
				return DefaultProposal, nil
			}
			return DefaultNarrative, nil
		},
	}
}

// NewScriptedProvider returns a MockProvider that answers the given profile
// names with fixed text.
func NewScriptedProvider(responses map[string]string) *MockProvider {
	return &MockProvider{
		Name_: "mock-scripted",
		GenerateFunc: func(_ context.Context, req models.GenerationRequest) (string, error) {
			return responses[req.Profile], nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		GenerateFunc: func(_ context.Context, _ models.GenerationRequest) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		GenerateFunc: func(ctx context.Context, _ models.GenerationRequest) (string, error) {
			<-ctx.Done()
			return "", ai.ErrInferenceTimeout
		},
	}
}

// Compile-time check that MockProvider implements TextGenerator.
var _ models.TextGenerator = (*MockProvider)(nil)
