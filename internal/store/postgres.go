package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Companies ---

const companyColumns = `id, name, annual_revenue, total_debt, payment_term_days, sector, rating, recent_news, created_at, updated_at`

const upsertCompanySQL = `INSERT INTO companies (name, annual_revenue, total_debt, payment_term_days, sector, rating, recent_news)
	 VALUES ($1, $2, $3, $4, $5, $6, $7)
	 ON CONFLICT (name) DO UPDATE SET
	   annual_revenue = EXCLUDED.annual_revenue,
	   total_debt = EXCLUDED.total_debt,
	   payment_term_days = EXCLUDED.payment_term_days,
	   sector = EXCLUDED.sector,
	   rating = EXCLUDED.rating,
	   recent_news = EXCLUDED.recent_news,
	   updated_at = NOW()
	 RETURNING id, created_at, updated_at, (xmax = 0) AS inserted`

func (s *PostgresStore) UpsertCompanies(ctx context.Context, companies []*models.Company) ([]UpsertResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, classify("begin upsert", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	results := make([]UpsertResult, len(companies))
	for i, c := range companies {
		// pgx turns a nested Begin into SAVEPOINT / ROLLBACK TO SAVEPOINT.
		sp, err := tx.Begin(ctx)
		if err != nil {
			return nil, classify("begin savepoint", err)
		}

		var inserted bool
		err = sp.QueryRow(ctx, upsertCompanySQL,
			c.Name, c.AnnualRevenue, c.TotalDebt, c.PaymentTermDays, c.Sector, c.Rating, c.RecentNews,
		).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt, &inserted)
		if err != nil {
			if !isStatementError(err) {
				return nil, classify("upsert company", err)
			}
			if rbErr := sp.Rollback(ctx); rbErr != nil {
				return nil, classify("rollback savepoint", rbErr)
			}
			results[i] = UpsertResult{Err: fmt.Errorf("upsert company %q: %w", c.Name, err)}
			continue
		}

		if err := sp.Commit(ctx); err != nil {
			return nil, classify("release savepoint", err)
		}
		results[i] = UpsertResult{Inserted: inserted}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, classify("commit upsert", err)
	}
	return results, nil
}

func (s *PostgresStore) GetCompanyByName(ctx context.Context, name string) (*models.Company, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE name = $1`, name)
	c, err := scanCompany(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classify("get company", err)
	}
	return c, nil
}

func (s *PostgresStore) SearchCompanies(ctx context.Context, filter CompanyFilter) ([]*models.Company, int, error) {
	offset := filter.Normalize()
	pattern := "%" + escapeLike(filter.Query) + "%"

	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM companies WHERE name ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, classify("count companies", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE name ILIKE $1 ORDER BY name ASC LIMIT $2 OFFSET $3`,
		pattern, filter.Limit, offset)
	if err != nil {
		return nil, 0, classify("search companies", err)
	}
	defer rows.Close()

	var companies []*models.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify("search companies", err)
	}
	return companies, total, nil
}

func scanCompany(row pgx.Row) (*models.Company, error) {
	var c models.Company
	if err := row.Scan(&c.ID, &c.Name, &c.AnnualRevenue, &c.TotalDebt, &c.PaymentTermDays,
		&c.Sector, &c.Rating, &c.RecentNews, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, classify("get api key by prefix", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return classify("update api key last used", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		key.ID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return classify("create api key", err)
	}
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// isStatementError reports whether the server executed and rejected a
// statement, leaving the connection usable.
func isStatementError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr)
}

// classify wraps err with op, marking connection-level failures as ErrUnavailable.
func classify(op string, err error) error {
	if isStatementError(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
