package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/api/response"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/apikey"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/store"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
)

// KeyCreator persists new API keys.
type KeyCreator interface {
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
}

type createKeyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Key       string    `json:"key"`
	KeyPrefix string    `json:"key_prefix"`
	Scopes    []string  `json:"scopes"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCreateKeyHandler returns an http.HandlerFunc for POST /api/v1/admin/keys.
// The raw key appears only in this response.
func NewCreateKeyHandler(keys KeyCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name   string   `json:"name"`
			Scopes []string `json:"scopes"`
		}
		if err := decodeBody(w, r, &req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}

		raw, key, err := apikey.Generate(req.Name, req.Scopes)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}

		if err := keys.CreateAPIKey(r.Context(), key); err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				response.Error(w, http.StatusConflict, "DUPLICATE_KEY_NAME",
					"An API key with this name already exists", nil)
				return
			}
			writeError(w, r, err, nil)
			return
		}

		response.Created(w, createKeyResponse{
			ID:        key.ID.String(),
			Name:      key.Name,
			Key:       raw,
			KeyPrefix: key.KeyPrefix,
			Scopes:    key.Scopes,
			CreatedAt: key.CreatedAt,
		})
	}
}
