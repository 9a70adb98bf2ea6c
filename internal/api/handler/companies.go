package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/api/response"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/company"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
	"github.com/go-chi/chi/v5"
)

// CompanyReader defines the lookups the company handlers depend on.
type CompanyReader interface {
	Fetch(ctx context.Context, name string) (*models.Company, bool, error)
	Search(ctx context.Context, query string, page, limit int) (*company.Page, error)
}

type companyResponse struct {
	Name            string    `json:"name"`
	AnnualRevenue   int64     `json:"annual_revenue"`
	TotalDebt       int64     `json:"total_debt"`
	PaymentTermDays int       `json:"payment_term_days"`
	Sector          string    `json:"sector"`
	Rating          string    `json:"rating"`
	RatingBand      string    `json:"rating_band,omitempty"`
	RecentNews      string    `json:"recent_news"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toCompanyResponse(c *models.Company) companyResponse {
	return companyResponse{
		Name:            c.Name,
		AnnualRevenue:   c.AnnualRevenue,
		TotalDebt:       c.TotalDebt,
		PaymentTermDays: c.PaymentTermDays,
		Sector:          c.Sector,
		Rating:          c.Rating,
		RatingBand:      models.RatingBand(c.Rating),
		RecentNews:      c.RecentNews,
		UpdatedAt:       c.UpdatedAt,
	}
}

// NewListCompaniesHandler returns an http.HandlerFunc for GET /api/v1/companies.
func NewListCompaniesHandler(companies CompanyReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		page, err := intParam(q.Get("page"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "page must be an integer", nil)
			return
		}
		limit, err := intParam(q.Get("limit"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "limit must be an integer", nil)
			return
		}

		result, err := companies.Search(r.Context(), q.Get("q"), page, limit)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}

		items := make([]companyResponse, 0, len(result.Companies))
		for _, c := range result.Companies {
			items = append(items, toCompanyResponse(c))
		}
		response.Collection(w, items, response.NewPaginationMeta(result.Page, result.Limit, result.Total))
	}
}

// NewGetCompanyHandler returns an http.HandlerFunc for GET /api/v1/companies/{name}.
func NewGetCompanyHandler(companies CompanyReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := companyName(r)

		c, found, err := companies.Fetch(r.Context(), name)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if !found {
			response.Error(w, http.StatusNotFound, "COMPANY_NOT_FOUND", "Company not found", nil)
			return
		}
		response.JSON(w, toCompanyResponse(c))
	}
}

// companyName reads the {name} URL parameter. chi matches on the escaped
// path when the name contains reserved characters such as "/".
func companyName(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
