package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
	"golang.org/x/time/rate"
)

type rateLimited struct {
	next    models.TextGenerator
	limiter *rate.Limiter
}

// RateLimited throttles outbound calls to requestsPerMinute with the given
// burst. A call waits for a token or fails when ctx ends first; it is never
// retried. A deadline that expires, or would expire, before a token is
// available fails with ErrInferenceTimeout.
func RateLimited(g models.TextGenerator, requestsPerMinute, burst int) models.TextGenerator {
	if requestsPerMinute <= 0 {
		return g
	}
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Limit(float64(requestsPerMinute) / 60.0)
	return &rateLimited{next: g, limiter: rate.NewLimiter(limit, burst)}
}

func (r *rateLimited) Name() string { return r.next.Name() }

func (r *rateLimited) Generate(ctx context.Context, req models.GenerationRequest) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return "", fmt.Errorf("waiting for rate limiter: %w", err)
		}
		return "", fmt.Errorf("%w: waiting for rate limiter: %v", ErrInferenceTimeout, err)
	}
	return r.next.Generate(ctx, req)
}
