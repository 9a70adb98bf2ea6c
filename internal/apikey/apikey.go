// Package apikey issues API keys. Raw keys are returned once; only the
// bcrypt hash and an 8-character lookup prefix are persisted.
package apikey

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	rawPrefix = "cr_"
	PrefixLen = 8
	secretLen = 24
)

var ErrInvalidScope = errors.New("invalid scope")

var validScopes = []string{models.ScopeRead, models.ScopeWrite, models.ScopeAdmin}

// Generate creates a new key named name with the given scopes. An empty
// scope list defaults to read.
func Generate(name string, scopes []string) (string, *models.APIKey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, errors.New("key name is required")
	}
	if len(scopes) == 0 {
		scopes = []string{models.ScopeRead}
	}
	for _, s := range scopes {
		if !slices.Contains(validScopes, s) {
			return "", nil, fmt.Errorf("%w: %q", ErrInvalidScope, s)
		}
	}

	secret := make([]byte, secretLen)
	if _, err := rand.Read(secret); err != nil {
		return "", nil, fmt.Errorf("generating key: %w", err)
	}
	raw := rawPrefix + hex.EncodeToString(secret)

	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hashing key: %w", err)
	}

	now := time.Now().UTC()
	return raw, &models.APIKey{
		ID:        uuid.New(),
		Name:      name,
		KeyHash:   string(hash),
		KeyPrefix: raw[:PrefixLen],
		Scopes:    slices.Compact(slices.Sorted(slices.Values(scopes))),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
