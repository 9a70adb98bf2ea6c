package api

import (
	"net/http"

	mw "github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/api/middleware"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/api/response"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
	"github.com/go-chi/chi/v5"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler    http.HandlerFunc
	ListCompanies    http.HandlerFunc
	GetCompany       http.HandlerFunc
	AssessCompany    http.HandlerFunc
	NarrativeHandler http.HandlerFunc
	ProposalHandler  http.HandlerFunc
	IngestHandler    http.HandlerFunc
	CreateKeyHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope(models.ScopeRead))

			r.Get("/api/v1/companies", orNotImplemented(deps.ListCompanies))
			r.Get("/api/v1/companies/{name}", orNotImplemented(deps.GetCompany))
			r.Post("/api/v1/companies/{name}/assessment", orNotImplemented(deps.AssessCompany))

			r.Post("/api/v1/analysis/narrative", orNotImplemented(deps.NarrativeHandler))
			r.Post("/api/v1/analysis/proposal", orNotImplemented(deps.ProposalHandler))
		})

		r.With(deps.Auth.RequireScope(models.ScopeWrite)).
			Post("/api/v1/ingest", orNotImplemented(deps.IngestHandler))

		r.With(deps.Auth.RequireScope(models.ScopeAdmin)).
			Post("/api/v1/admin/keys", orNotImplemented(deps.CreateKeyHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
