package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/store"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/pkg/models"
)

// WriteResult summarizes one batch. Failed rows are attributed by line.
type WriteResult struct {
	Inserted int        `json:"inserted"`
	Updated  int        `json:"updated"`
	Failed   []RowError `json:"failed"`
}

// Writer upserts normalized records into the store keyed by company name.
type Writer struct {
	store store.Store
}

func NewWriter(s store.Store) *Writer {
	return &Writer{store: s}
}

// Write coerces and upserts records as one batch. Rows that cannot be coerced
// or that the store rejects are reported in the result and skipped; the
// remaining rows are still written. The error is non-nil only when the store
// could not take the batch at all.
func (w *Writer) Write(ctx context.Context, records []Record) (*WriteResult, error) {
	result := &WriteResult{}
	batch := make([]*models.Company, 0, len(records))
	origin := make([]Record, 0, len(records))

	for _, rec := range records {
		c, err := toCompany(rec)
		if err != nil {
			result.Failed = append(result.Failed, RowError{Line: rec.Line, Name: rec.Name, Err: err})
			continue
		}
		batch = append(batch, c)
		origin = append(origin, rec)
	}

	if len(batch) == 0 {
		return result, nil
	}

	outcomes, err := w.store.UpsertCompanies(ctx, batch)
	if err != nil {
		return result, fmt.Errorf("writing %d companies: %w", len(batch), err)
	}

	for i, o := range outcomes {
		switch {
		case o.Err != nil:
			result.Failed = append(result.Failed, RowError{Line: origin[i].Line, Name: origin[i].Name, Err: o.Err})
		case o.Inserted:
			result.Inserted++
		default:
			result.Updated++
		}
	}

	for _, f := range result.Failed {
		slog.Warn("ingest row skipped", "line", f.Line, "company", f.Name, "error", f.Err)
	}
	return result, nil
}

func toCompany(rec Record) (*models.Company, error) {
	if strings.TrimSpace(rec.Name) == "" {
		return nil, ErrMissingName
	}

	revenue, err := coerceCount(rec.Line, "annual_revenue", rec.AnnualRevenue, math.MaxInt64)
	if err != nil {
		return nil, err
	}
	debt, err := coerceCount(rec.Line, "total_debt", rec.TotalDebt, math.MaxInt64)
	if err != nil {
		return nil, err
	}
	term, err := coerceCount(rec.Line, "payment_term_days", rec.PaymentTermDays, math.MaxInt32)
	if err != nil {
		return nil, err
	}

	return &models.Company{
		Name:            strings.TrimSpace(rec.Name),
		AnnualRevenue:   revenue,
		TotalDebt:       debt,
		PaymentTermDays: int(term),
		Sector:          rec.Sector,
		Rating:          rec.Rating,
		RecentNews:      rec.RecentNews,
	}, nil
}

var (
	errNotInteger = errors.New("not an integer")
	errNegative   = errors.New("negative")
	errOutOfRange = errors.New("out of range")
)

// coerceCount parses integral decimal text. A zero fractional part is
// accepted ("1000000.0"), as float-typed sources produce it.
func coerceCount(line int, field, value string, max int64) (int64, error) {
	fail := func(err error) (int64, error) {
		return 0, &CoercionError{Line: line, Field: field, Value: value, Err: err}
	}

	s := strings.TrimSpace(value)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return fail(errNotInteger)
		}
		if f < 0 {
			return fail(errNegative)
		}
		if f >= 1<<63 || f > float64(max) {
			return fail(errOutOfRange)
		}
		n = int64(f)
	}
	if n < 0 {
		return fail(errNegative)
	}
	if n > max {
		return fail(errOutOfRange)
	}
	return n, nil
}
