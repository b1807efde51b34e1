package ingest

import (
	"context"

	"github.com/furnilabs/furnireco/internal/domain"
)

// Embedder vectorizes the canonical record text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Store is the write side of the product index.
type Store interface {
	EnsureIndex(ctx context.Context) error
	Upsert(ctx context.Context, entries []domain.IndexEntry) error
}
