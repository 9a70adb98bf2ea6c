package ingest_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/cache"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/ingest"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/store"
	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPipeline(s store.Store, c cache.Cache) *ingest.Pipeline {
	return ingest.NewPipeline(ingest.NewWriter(s), c, time.Minute)
}

func TestPipeline_EveryFormatYieldsOneRecordPerName(t *testing.T) {
	files := map[string]string{
		"csv":          fixture("empresas.csv"),
		"xml":          fixture("empresas.xml"),
		"json-columns": fixture("empresas.json"),
		"json-records": fixture("empresas_records.json"),
		"parquet":      writeParquetFixture(t),
	}

	for name, path := range files {
		t.Run(name, func(t *testing.T) {
			s := memstore.New()
			p := newPipeline(s, cache.NewMemory())
			ctx := context.Background()

			report, err := p.IngestFile(ctx, path)
			require.NoError(t, err)
			assert.Equal(t, 3, report.Rows)
			assert.Empty(t, report.Failed)
			assert.Equal(t, 2, report.Inserted)
			assert.Equal(t, 1, report.Updated)

			_, total, err := s.SearchCompanies(ctx, store.CompanyFilter{})
			require.NoError(t, err)
			assert.Equal(t, 2, total)

			acme, err := s.GetCompanyByName(ctx, "Acme Comércio")
			require.NoError(t, err)
			assert.Equal(t, int64(1200000), acme.AnnualRevenue)
			assert.Equal(t, int64(150000), acme.TotalDebt)
			assert.Equal(t, 30, acme.PaymentTermDays)
			assert.Equal(t, "B+", acme.Rating)
			assert.Equal(t, "Nova filial", acme.RecentNews)

			beta, err := s.GetCompanyByName(ctx, "Beta Ltda")
			require.NoError(t, err)
			assert.Equal(t, int64(2500000), beta.AnnualRevenue)
			assert.Equal(t, 45, beta.PaymentTermDays)
			assert.Equal(t, "Tecnologia", beta.Sector)
		})
	}
}

func TestPipeline_BadRowsAreReported(t *testing.T) {
	s := memstore.New()
	p := newPipeline(s, cache.NewMemory())

	report, err := p.IngestFile(context.Background(), fixture("bad_rows.csv"))
	require.NoError(t, err)
	assert.Equal(t, 4, report.Rows)
	assert.Equal(t, 2, report.Inserted)
	require.Len(t, report.Failed, 2)
	assert.Equal(t, 2, report.Failed[0].Line)
	assert.ErrorIs(t, report.Failed[0], ingest.ErrTypeCoercion)
	assert.Equal(t, 3, report.Failed[1].Line)
	assert.ErrorIs(t, report.Failed[1], ingest.ErrMissingName)
}

func TestPipeline_UnsupportedFormatTouchesNothing(t *testing.T) {
	s := memstore.New()
	p := newPipeline(s, cache.NewMemory())

	_, err := p.IngestFile(context.Background(), "empresas.xlsx")
	assert.ErrorIs(t, err, ingest.ErrUnsupportedFormat)

	_, total, err := s.SearchCompanies(context.Background(), store.CompanyFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestPipeline_IngestSource(t *testing.T) {
	f, err := os.Open(fixture("empresas.csv"))
	require.NoError(t, err)
	defer f.Close()
	info, err := f.Stat()
	require.NoError(t, err)

	s := memstore.New()
	report, err := newPipeline(s, cache.NewMemory()).IngestSource(context.Background(), "upload.CSV", f, info.Size())
	require.NoError(t, err)
	assert.Equal(t, "upload.CSV", report.File)
	assert.Equal(t, 2, report.Inserted)
}

func TestPipeline_WaitsForHeldLock(t *testing.T) {
	locks := cache.NewMemory()
	_, err := locks.AcquireLock(context.Background(), cache.IngestLockKey(""), time.Minute)
	require.NoError(t, err)

	p := newPipeline(memstore.New(), locks)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = p.IngestFile(ctx, fixture("empresas.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, ingest.ErrIngestBusy)
}

func TestPipeline_ConcurrentBatchesSerialize(t *testing.T) {
	s := memstore.New()
	p := newPipeline(s, cache.NewMemory())

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.IngestFile(context.Background(), fixture("empresas.csv"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	_, total, err := s.SearchCompanies(context.Background(), store.CompanyFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}
