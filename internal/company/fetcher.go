// Package company reads canonical company records for the analysis path.
package company

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/store"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
)

// Fetcher is a read-only view over the company store.
type Fetcher struct {
	store store.Store
}

func NewFetcher(s store.Store) *Fetcher {
	return &Fetcher{store: s}
}

// Fetch looks a company up by exact name. A missing company is a normal
// outcome reported as (nil, false, nil); only store faults return an error.
func (f *Fetcher) Fetch(ctx context.Context, name string) (*models.Company, bool, error) {
	c, err := f.store.GetCompanyByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("fetching company %q: %w", name, err)
	}
	return c, true, nil
}

// Page is one page of search results.
type Page struct {
	Companies []*models.Company
	Total     int
	Page      int
	Limit     int
}

// Search lists companies whose name contains query, case-insensitively,
// ordered by name. Page defaults to 1 and limit to 20, capped at 100.
func (f *Fetcher) Search(ctx context.Context, query string, page, limit int) (*Page, error) {
	filter := store.CompanyFilter{Query: query, Page: page, Limit: limit}
	filter.Normalize()

	companies, total, err := f.store.SearchCompanies(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("searching companies: %w", err)
	}
	if companies == nil {
		companies = []*models.Company{}
	}
	return &Page{Companies: companies, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}
