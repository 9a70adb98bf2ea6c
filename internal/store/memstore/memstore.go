// Package memstore is an in-memory store.Store for tests and local runs
// without PostgreSQL. It enforces the same row constraints as the schema.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/store"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
	"github.com/google/uuid"
)

var errConstraint = errors.New("check constraint violation")

type Store struct {
	mu        sync.RWMutex
	nextID    int64
	companies map[string]*models.Company
	keys      map[uuid.UUID]*models.APIKey

	// PingErr, when set, is returned by every call to simulate an outage.
	PingErr error
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		companies: make(map[string]*models.Company),
		keys:      make(map[uuid.UUID]*models.APIKey),
	}
}

func (s *Store) Ping(_ context.Context) error {
	return s.PingErr
}

func (s *Store) UpsertCompanies(ctx context.Context, companies []*models.Company) ([]store.UpsertResult, error) {
	if s.PingErr != nil {
		return nil, fmt.Errorf("begin upsert: %w: %w", store.ErrUnavailable, s.PingErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("begin upsert: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	results := make([]store.UpsertResult, len(companies))
	for i, c := range companies {
		if err := checkCompany(c); err != nil {
			results[i] = store.UpsertResult{Err: fmt.Errorf("upsert company %q: %w", c.Name, err)}
			continue
		}

		existing, ok := s.companies[c.Name]
		if !ok {
			s.nextID++
			c.ID = s.nextID
			c.CreatedAt = now
			c.UpdatedAt = now
			stored := *c
			s.companies[c.Name] = &stored
			results[i] = store.UpsertResult{Inserted: true}
			continue
		}

		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
		c.UpdatedAt = now
		stored := *c
		s.companies[c.Name] = &stored
		results[i] = store.UpsertResult{}
	}
	return results, nil
}

func checkCompany(c *models.Company) error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return fmt.Errorf("%w: name must not be blank", errConstraint)
	case c.AnnualRevenue < 0:
		return fmt.Errorf("%w: annual_revenue must be non-negative", errConstraint)
	case c.TotalDebt < 0:
		return fmt.Errorf("%w: total_debt must be non-negative", errConstraint)
	case c.PaymentTermDays < 0:
		return fmt.Errorf("%w: payment_term_days must be non-negative", errConstraint)
	}
	return nil
}

func (s *Store) GetCompanyByName(_ context.Context, name string) (*models.Company, error) {
	if s.PingErr != nil {
		return nil, fmt.Errorf("get company: %w: %w", store.ErrUnavailable, s.PingErr)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.companies[name]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (s *Store) SearchCompanies(_ context.Context, filter store.CompanyFilter) ([]*models.Company, int, error) {
	if s.PingErr != nil {
		return nil, 0, fmt.Errorf("search companies: %w: %w", store.ErrUnavailable, s.PingErr)
	}
	offset := filter.Normalize()
	query := strings.ToLower(filter.Query)

	s.mu.RLock()
	var matched []*models.Company
	for _, c := range s.companies {
		if strings.Contains(strings.ToLower(c.Name), query) {
			out := *c
			matched = append(matched, &out)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + filter.Limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (s *Store) GetAPIKeyByPrefix(_ context.Context, prefix string) ([]*models.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []*models.APIKey
	for _, k := range s.keys {
		if k.KeyPrefix == prefix && k.DeletedAt == nil {
			out := *k
			keys = append(keys, &out)
		}
	}
	return keys, nil
}

func (s *Store) UpdateAPIKeyLastUsed(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if k, ok := s.keys[id]; ok {
		now := time.Now().UTC()
		k.LastUsedAt = &now
		k.UpdatedAt = now
	}
	return nil
}

func (s *Store) CreateAPIKey(_ context.Context, key *models.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range s.keys {
		if k.Name == key.Name {
			return store.ErrDuplicateKey
		}
	}
	if _, ok := s.keys[key.ID]; ok {
		return store.ErrDuplicateKey
	}
	stored := *key
	s.keys[key.ID] = &stored
	return nil
}
