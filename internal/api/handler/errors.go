package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/ai"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/api/response"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/assessment"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/ingest"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/proposal"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/store"
)

// writeError maps service errors onto status codes and stable error codes.
// Raw model output never reaches the client.
func writeError(w http.ResponseWriter, r *http.Request, err error, details any) {
	switch {
	case errors.Is(err, assessment.ErrMissingInput):
		response.Error(w, http.StatusBadRequest, "MISSING_INPUT",
			"Both the company record and the narrative are required", details)
	case errors.Is(err, assessment.ErrCompanyNotFound):
		response.Error(w, http.StatusNotFound, "COMPANY_NOT_FOUND", "Company not found", details)
	case errors.Is(err, proposal.ErrMalformedProposal):
		response.Error(w, http.StatusBadGateway, "PROPOSAL_UNAVAILABLE", proposal.UserMessage, details)
	case errors.Is(err, ai.ErrInferenceTimeout):
		response.Error(w, http.StatusGatewayTimeout, "AI_INFERENCE_TIMEOUT",
			"The analysis took too long and was cancelled", details)
	case errors.Is(err, assessment.ErrAnalysisUnavailable):
		response.Error(w, http.StatusBadGateway, "ANALYSIS_UNAVAILABLE",
			"The analysis service is not available", details)
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		response.Error(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT",
			"Supported formats are .csv, .xml, .json and .parquet", details)
	case errors.Is(err, store.ErrUnavailable):
		response.Error(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE",
			"The company store is not available", details)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", details)
	}
}
