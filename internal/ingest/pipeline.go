package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/cache"
)

const lockPollInterval = 250 * time.Millisecond

// Report is the outcome of ingesting one file.
type Report struct {
	File string `json:"file"`
	Rows int    `json:"rows"`
	WriteResult
}

// Pipeline runs load, normalize and write for one file at a time. Writes
// from concurrent callers, across processes, are serialized by a cache lock.
type Pipeline struct {
	writer  *Writer
	locks   cache.Cache
	lockTTL time.Duration
}

func NewPipeline(w *Writer, locks cache.Cache, lockTTL time.Duration) *Pipeline {
	if lockTTL <= 0 {
		lockTTL = 5 * time.Minute
	}
	return &Pipeline{writer: w, locks: locks, lockTTL: lockTTL}
}

// IngestFile loads path and upserts its records.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (*Report, error) {
	table, err := Load(path)
	if err != nil {
		return nil, err
	}
	return p.ingest(ctx, filepath.Base(path), table)
}

// IngestSource decodes an already-open file, such as an upload. name is only
// used to pick the format and label the report.
func (p *Pipeline) IngestSource(ctx context.Context, name string, src Source, size int64) (*Report, error) {
	format, err := FormatFromPath(name)
	if err != nil {
		return nil, err
	}
	table, err := Decode(format, src, size)
	if err != nil {
		return nil, err
	}
	return p.ingest(ctx, filepath.Base(name), table)
}

func (p *Pipeline) ingest(ctx context.Context, name string, table *Table) (*Report, error) {
	records := Normalize(table)

	release, err := p.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	result, err := p.writer.Write(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", name, err)
	}

	slog.Info("ingest finished",
		"file", name,
		"rows", len(records),
		"inserted", result.Inserted,
		"updated", result.Updated,
		"failed", len(result.Failed),
	)
	return &Report{File: name, Rows: len(records), WriteResult: *result}, nil
}

// lock blocks until the ingest lock is taken or ctx ends.
func (p *Pipeline) lock(ctx context.Context) (func(), error) {
	key := cache.IngestLockKey("")
	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		token, err := p.locks.AcquireLock(ctx, key, p.lockTTL)
		if err == nil {
			return func() {
				// The batch context may already be cancelled; release regardless.
				if err := p.locks.ReleaseLock(context.WithoutCancel(ctx), key, token); err != nil {
					slog.Warn("releasing ingest lock failed", "error", err)
				}
			}, nil
		}
		if !errors.Is(err, cache.ErrLockHeld) {
			return nil, fmt.Errorf("acquiring ingest lock: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for ingest lock: %w: %w", ErrIngestBusy, ctx.Err())
		case <-ticker.C:
		}
	}
}
