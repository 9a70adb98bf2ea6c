// Package assessment runs the two-stage credit analysis: a qualitative
// narrative followed by a structured proposal derived from it.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/ai"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/proposal"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
)

// Fetcher looks companies up by exact name.
type Fetcher interface {
	Fetch(ctx context.Context, name string) (*models.Company, bool, error)
}

// Assessment is the outcome of a full analysis request.
type Assessment struct {
	Company   *models.Company
	Narrative string
	Proposal  *models.CreditProposal
	Stage     Stage
	Provider  string
}

// Service orchestrates the analysis path. It holds only immutable
// dependencies and is safe for concurrent use.
type Service struct {
	generator models.TextGenerator
	fetcher   Fetcher
	timeout   time.Duration
}

func NewService(generator models.TextGenerator, fetcher Fetcher, timeout time.Duration) *Service {
	return &Service{generator: generator, fetcher: fetcher, timeout: timeout}
}

// Narrate runs stage 1 and returns the raw report text.
func (s *Service) Narrate(ctx context.Context, c *models.Company) (string, error) {
	if c == nil {
		return "", fmt.Errorf("narrate: %w: company", ErrMissingInput)
	}
	return s.generate(ctx, ai.NarrativeProfile, narrativePrompt(c), c.Name)
}

// Propose runs stage 2 and returns the raw model text, unvalidated. Both
// inputs are checked before any outbound call.
func (s *Service) Propose(ctx context.Context, c *models.Company, narrative string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("propose: %w: company", ErrMissingInput)
	}
	if strings.TrimSpace(narrative) == "" {
		return "", fmt.Errorf("propose: %w: narrative", ErrMissingInput)
	}
	return s.generate(ctx, ai.ProposalProfile, proposalPrompt(c, narrative), c.Name)
}

// Suggest runs stage 2 and validates the result.
func (s *Service) Suggest(ctx context.Context, c *models.Company, narrative string) (*models.CreditProposal, error) {
	raw, err := s.Propose(ctx, c, narrative)
	if err != nil {
		return nil, err
	}
	p, err := proposal.Parse(raw)
	if err != nil {
		slog.Warn("proposal rejected", "company", c.Name, "error", err)
		return nil, err
	}
	return p, nil
}

// Assess runs fetch, narrative, proposal and validation for one company.
// On failure the returned error is a *StageError naming the terminal stage,
// and the partial Assessment records how far the request got.
func (s *Service) Assess(ctx context.Context, name string) (*Assessment, error) {
	a := &Assessment{Provider: s.generator.Name()}

	c, found, err := s.fetcher.Fetch(ctx, name)
	if err != nil {
		return s.fail(a, StageFetchFailed, err)
	}
	if !found {
		return s.fail(a, StageFetchFailed, fmt.Errorf("%w: %q", ErrCompanyNotFound, name))
	}
	a.Company, a.Stage = c, StageFetched

	narrative, err := s.Narrate(ctx, c)
	if err != nil {
		return s.fail(a, StageAnalysisFailed, err)
	}
	a.Narrative, a.Stage = narrative, StageNarrated

	raw, err := s.Propose(ctx, c, narrative)
	if err != nil {
		return s.fail(a, StageProposalFailed, err)
	}
	a.Stage = StageProposed

	p, err := proposal.Parse(raw)
	if err != nil {
		return s.fail(a, StageValidationFailed, err)
	}
	a.Proposal, a.Stage = p, StageValidated

	slog.Info("assessment completed",
		"company", c.Name,
		"provider", a.Provider,
		"suggested_amount", p.SuggestedAmount,
	)
	return a, nil
}

func (s *Service) fail(a *Assessment, stage Stage, err error) (*Assessment, error) {
	a.Stage = stage
	slog.Warn("assessment failed", "stage", stage, "provider", a.Provider, "error", err)
	return a, &StageError{Stage: stage, Err: err}
}

func (s *Service) generate(ctx context.Context, p ai.Profile, prompt, company string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.generator.Generate(callCtx, p.Request(prompt))
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, ai.ErrInferenceTimeout) {
			err = fmt.Errorf("%w: %v", ai.ErrInferenceTimeout, err)
		}
		return "", fmt.Errorf("%s: %w: %w", p.Name, ErrAnalysisUnavailable, err)
	}

	slog.Debug("generation finished",
		"profile", p.Name,
		"company", company,
		"provider", s.generator.Name(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}
