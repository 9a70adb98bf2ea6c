package store

import (
	"context"
	"errors"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// ErrUnavailable marks a failure to reach the database at all, as opposed to
// the database rejecting a statement.
var ErrUnavailable = errors.New("store unavailable")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	// UpsertCompanies writes all companies in one transaction, each row under
	// its own savepoint. A row the database rejects is reported in its
	// UpsertResult and does not discard the others. The returned error is
	// reserved for failures that abort the whole batch.
	UpsertCompanies(ctx context.Context, companies []*models.Company) ([]UpsertResult, error)
	GetCompanyByName(ctx context.Context, name string) (*models.Company, error)
	SearchCompanies(ctx context.Context, filter CompanyFilter) ([]*models.Company, int, error)

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
}

// UpsertResult is the per-row outcome of UpsertCompanies, index-aligned with its input.
type UpsertResult struct {
	Inserted bool
	Err      error
}

// CompanyFilter selects companies whose name contains Query, case-insensitively.
type CompanyFilter struct {
	Query string
	Page  int
	Limit int
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Normalize clamps pagination to the defaults and returns the row offset.
func (f *CompanyFilter) Normalize() int {
	if f.Limit <= 0 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	return (f.Page - 1) * f.Limit
}
