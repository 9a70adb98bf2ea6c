package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/api/response"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/assessment"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
)

// Assessor runs the full analysis path for a stored company.
type Assessor interface {
	Assess(ctx context.Context, name string) (*assessment.Assessment, error)
}

type assessmentResponse struct {
	Company  companyResponse        `json:"company"`
	Stage    assessment.Stage       `json:"stage"`
	Provider string                 `json:"provider"`
	Proposal *models.CreditProposal `json:"proposal"`
	narrativeResponse
}

// NewAssessmentHandler returns an http.HandlerFunc for
// POST /api/v1/companies/{name}/assessment.
func NewAssessmentHandler(assessor Assessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := assessor.Assess(r.Context(), companyName(r))
		if err != nil {
			var details map[string]any
			var se *assessment.StageError
			if errors.As(err, &se) {
				details = map[string]any{"stage": se.Stage}
			}
			writeError(w, r, err, details)
			return
		}

		response.JSON(w, assessmentResponse{
			Company:           toCompanyResponse(a.Company),
			Stage:             a.Stage,
			Provider:          a.Provider,
			Proposal:          a.Proposal,
			narrativeResponse: toNarrativeResponse(a.Narrative),
		})
	}
}
