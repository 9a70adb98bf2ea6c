package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
)

var (
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrInferenceTimeout    = errors.New("ai inference timeout")
	ErrInvalidResponse     = errors.New("ai provider returned invalid response")
)

// classified maps raw backend failures onto the package sentinels so callers
// never depend on a specific SDK's error types.
type classified struct {
	next models.TextGenerator
}

// Classify wraps g so every error it returns matches one of
// ErrProviderUnavailable, ErrInferenceTimeout or ErrInvalidResponse.
func Classify(g models.TextGenerator) models.TextGenerator {
	return &classified{next: g}
}

func (c *classified) Name() string { return c.next.Name() }

func (c *classified) Generate(ctx context.Context, req models.GenerationRequest) (string, error) {
	text, err := c.next.Generate(ctx, req)
	if err != nil {
		return "", classifyError(ctx, c.next.Name(), err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: empty completion: %w", c.next.Name(), ErrInvalidResponse)
	}
	return text, nil
}

func classifyError(ctx context.Context, provider string, err error) error {
	switch {
	case errors.Is(err, ErrProviderUnavailable), errors.Is(err, ErrInferenceTimeout), errors.Is(err, ErrInvalidResponse):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %v", provider, ErrInferenceTimeout, err)
	default:
		return fmt.Errorf("%s: %w: %v", provider, ErrProviderUnavailable, err)
	}
}
