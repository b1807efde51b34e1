// Package product is the gateway to the external similarity-search index.
// The engine itself (Redis Query Engine KNN) stays behind the db layer; this
// package owns the index definition, the key scheme and the match mapping.
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/furnilabs/furnireco/internal/db"
	"github.com/furnilabs/furnireco/internal/domain"
)

// metadataFields are the display fields stored next to the vector and
// returned by queries.
var metadataFields = []string{"title", "brand", "price", "material", "color", "categories"}

// store is the consumer interface for the product index (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// HNSWConfig carries HNSW build parameters for index creation.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements the vector store gateway: EnsureIndex, Upsert, Query.
type Repo struct {
	store     store
	indexName string
	keyPrefix string
	dim       int
	hnsw      HNSWConfig
}

// New creates a product index gateway. indexName is the FT index name;
// dim is the embedding dimension the index is created with.
func New(s store, indexName string, dim int) *Repo {
	return &Repo{
		store:     s,
		indexName: indexName,
		keyPrefix: domain.KeyPrefix + "product:",
		dim:       dim,
	}
}

// WithHNSW overrides HNSW build parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

// EnsureIndex creates the index if it does not exist yet. Existing index
// names are checked first so repeated runs never trip a duplicate-index
// error; a concurrent create racing past the check maps to success too.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.indexName)
	if err != nil {
		return fmt.Errorf("%w: check index %s: %w", domain.ErrStoreUnavailable, r.indexName, err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(r.indexName).
		Prefix(r.keyPrefix).
		VectorHNSW("vector", r.dim, db.DistanceCosine, r.hnsw.M, r.hnsw.EFConstruct).
		Build()
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("%w: create index %s: %w", domain.ErrStoreUnavailable, r.indexName, err)
	}
	return nil
}

// RecreateIndex drops the index and creates it fresh. Required after an
// embedding model change: the index must never mix vectors from two model
// versions, so a changed model means drop plus full re-ingestion.
func (r *Repo) RecreateIndex(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, r.indexName); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("%w: drop index %s: %w", domain.ErrStoreUnavailable, r.indexName, err)
	}
	return r.EnsureIndex(ctx)
}

// Upsert writes a batch of entries in one pipelined call. Writes replace by
// id: re-ingesting an id overwrites its vector and metadata.
func (r *Repo) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(entries))
	for i, e := range entries {
		fields := make(map[string]string, len(e.Metadata)+1)
		for k, v := range e.Metadata {
			fields[k] = v
		}
		fields["vector"] = string(db.EncodeVector(e.Vector))
		items[i] = db.HashSetItem{Key: r.keyPrefix + e.ID, Fields: fields}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("%w: upsert %d entries: %w", domain.ErrStoreUnavailable, len(entries), err)
	}
	return nil
}

// Query returns up to topK matches ranked by descending similarity, in the
// engine's order. Zero matches is a normal outcome, not an error.
func (r *Repo) Query(ctx context.Context, vector []float32, topK int) ([]domain.Match, error) {
	q := &db.KNNQuery{
		IndexName:    r.indexName,
		Vector:       vector,
		K:            topK,
		ReturnFields: append(append([]string{}, metadataFields...), "__vector_score"),
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: search knn: %w", domain.ErrStoreUnavailable, err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	matches := make([]domain.Match, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		matches = append(matches, r.toMatch(entry))
	}
	return matches, nil
}

// toMatch maps a raw hit to a Match. Missing metadata keys fall back to the
// placeholder so response fields are never absent.
func (r *Repo) toMatch(entry db.SearchEntry) domain.Match {
	get := func(key string) string {
		if v, ok := entry.Fields[key]; ok && v != "" {
			return v
		}
		return domain.Placeholder
	}

	return domain.Match{
		ID:         strings.TrimPrefix(entry.Key, r.keyPrefix),
		Score:      entry.Score,
		Title:      get("title"),
		Brand:      get("brand"),
		Price:      get("price"),
		Material:   get("material"),
		Color:      get("color"),
		Categories: get("categories"),
	}
}
