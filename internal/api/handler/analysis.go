package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/api/response"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/assessment"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/narrative"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
)

const maxAnalysisBody = 1 << 20

// Analyst defines the two analysis stages the handlers depend on.
type Analyst interface {
	Narrate(ctx context.Context, c *models.Company) (string, error)
	Suggest(ctx context.Context, c *models.Company, narrative string) (*models.CreditProposal, error)
}

// companyPayload is the CompanyRecord shape accepted on the analysis
// endpoints. Any field may be absent; absent fields read N/A in the prompt.
type companyPayload struct {
	Name            string `json:"name"`
	AnnualRevenue   *int64 `json:"annual_revenue"`
	TotalDebt       *int64 `json:"total_debt"`
	PaymentTermDays *int   `json:"payment_term_days"`
	Sector          string `json:"sector"`
	Rating          string `json:"rating"`
	RecentNews      string `json:"recent_news"`
}

func (p *companyPayload) toCompany() (*models.Company, error) {
	c := &models.Company{
		Name:       p.Name,
		Sector:     p.Sector,
		Rating:     p.Rating,
		RecentNews: p.RecentNews,
	}

	if p.AnnualRevenue == nil {
		c.Missing |= models.FigureAnnualRevenue
	} else if c.AnnualRevenue = *p.AnnualRevenue; c.AnnualRevenue < 0 {
		return nil, errors.New("annual_revenue must not be negative")
	}
	if p.TotalDebt == nil {
		c.Missing |= models.FigureTotalDebt
	} else if c.TotalDebt = *p.TotalDebt; c.TotalDebt < 0 {
		return nil, errors.New("total_debt must not be negative")
	}
	if p.PaymentTermDays == nil {
		c.Missing |= models.FigurePaymentTerm
	} else if c.PaymentTermDays = *p.PaymentTermDays; c.PaymentTermDays < 0 {
		return nil, errors.New("payment_term_days must not be negative")
	}
	return c, nil
}

type narrativeResponse struct {
	Narrative     string            `json:"narrative"`
	NarrativeHTML string            `json:"narrative_html"`
	Summary       narrative.Summary `json:"summary"`
}

func toNarrativeResponse(text string) narrativeResponse {
	html, err := narrative.ToHTML(text)
	if err != nil {
		slog.Warn("narrative html rendering failed", "error", err)
	}
	return narrativeResponse{
		Narrative:     text,
		NarrativeHTML: html,
		Summary:       narrative.Summarize(text),
	}
}

// NewNarrativeHandler returns an http.HandlerFunc for POST /api/v1/analysis/narrative.
func NewNarrativeHandler(analyst Analyst) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req *companyPayload
		if err := decodeBody(w, r, &req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}
		if req == nil {
			writeError(w, r, fmt.Errorf("%w: company", assessment.ErrMissingInput), nil)
			return
		}
		c, err := req.toCompany()
		if err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}

		text, err := analyst.Narrate(r.Context(), c)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		response.JSON(w, toNarrativeResponse(text))
	}
}

// NewProposalHandler returns an http.HandlerFunc for POST /api/v1/analysis/proposal.
// Both parts of the request are checked before the model is called.
func NewProposalHandler(analyst Analyst) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Narrative string          `json:"narrative"`
			Company   *companyPayload `json:"company"`
		}
		if err := decodeBody(w, r, &req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}

		var c *models.Company
		if req.Company != nil {
			var err error
			if c, err = req.Company.toCompany(); err != nil {
				response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
				return
			}
		}

		p, err := analyst.Suggest(r.Context(), c, req.Narrative)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		response.JSON(w, p)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAnalysisBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return errors.New("invalid JSON body")
	}
	return nil
}
