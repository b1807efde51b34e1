// Package ingest implements the write path: catalog records are embedded and
// upserted into the index in batches. The run is best-effort: a bad row is
// reported and skipped, never aborting the whole job. Re-running is safe
// because upsert replaces by id.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/furnilabs/furnireco/internal/domain"
)

// RowError records one skipped row for the run report.
type RowError struct {
	Row int
	ID  string
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d (id %q): %v", e.Row, e.ID, e.Err)
}

// Report summarizes an ingestion run. Indexed counts rows handed to upsert
// batches; Skipped counts rows dropped by per-row or batch failures.
type Report struct {
	Indexed int
	Skipped int
	Batches int
	Errors  []RowError
}

// Service runs the ingestion pipeline. Single-threaded by design: the job is
// offline and upsert idempotency is the only guard against overlapping runs.
type Service struct {
	store     Store
	embed     Embedder
	batchSize int
	logger    *zap.Logger
	progress  func(done int)
}

// New creates an ingestion service with the default batch size.
func New(store Store, embed Embedder, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		embed:     embed,
		batchSize: domain.DefaultBatchSize,
		logger:    logger,
	}
}

// WithBatchSize overrides the upsert batch size.
func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// WithProgress sets a callback invoked after each processed row.
func (s *Service) WithProgress(fn func(done int)) *Service {
	s.progress = fn
	return s
}

// Run ingests all records: ensure the index exists, then embed and upsert in
// batches, flushing the trailing partial batch so the last rows are never
// dropped.
func (s *Service) Run(ctx context.Context, records []domain.CatalogRecord) (Report, error) {
	if err := s.store.EnsureIndex(ctx); err != nil {
		return Report{}, fmt.Errorf("ensure index: %w", err)
	}

	var report Report
	batch := make([]domain.IndexEntry, 0, s.batchSize)

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("ingestion interrupted at row %d: %w", i, err)
		}

		entry, err := s.buildEntry(ctx, rec)
		if err != nil {
			s.logger.Warn("Skipping record",
				zap.Int("row", i),
				zap.String("id", rec.ID),
				zap.Error(err),
			)
			report.Skipped++
			report.Errors = append(report.Errors, RowError{Row: i, ID: rec.ID, Err: err})
			s.step(i)
			continue
		}

		batch = append(batch, entry)
		if len(batch) >= s.batchSize {
			s.flush(ctx, batch, &report)
			batch = make([]domain.IndexEntry, 0, s.batchSize)
		}
		s.step(i)
	}

	if len(batch) > 0 {
		s.flush(ctx, batch, &report)
	}

	return report, nil
}

func (s *Service) buildEntry(ctx context.Context, rec domain.CatalogRecord) (domain.IndexEntry, error) {
	if rec.ID == "" {
		return domain.IndexEntry{}, errors.New("missing record id")
	}

	emb, err := s.embed.Embed(ctx, rec.EmbeddingText())
	if err != nil {
		return domain.IndexEntry{}, fmt.Errorf("embed record: %w", err)
	}

	return domain.IndexEntry{
		ID:       rec.ID,
		Vector:   emb.Embedding,
		Metadata: rec.Metadata(),
	}, nil
}

// flush upserts one batch. A failed batch is logged and counted as skipped;
// the run continues with the next batch.
func (s *Service) flush(ctx context.Context, batch []domain.IndexEntry, report *Report) {
	report.Batches++
	if err := s.store.Upsert(ctx, batch); err != nil {
		s.logger.Error("Batch upsert failed",
			zap.Int("batch", report.Batches),
			zap.Int("size", len(batch)),
			zap.Error(err),
		)
		report.Skipped += len(batch)
		for _, e := range batch {
			report.Errors = append(report.Errors, RowError{ID: e.ID, Err: err})
		}
		return
	}
	report.Indexed += len(batch)
}

func (s *Service) step(i int) {
	if s.progress != nil {
		s.progress(i + 1)
	}
}
