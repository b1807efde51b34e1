// Package furnireco embeds the recommendation engine as a library: the same
// ingestion, query and analytics services the API server runs, wired against
// a Redis Query Engine index without the HTTP layer.
package furnireco

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/furnilabs/furnireco/internal/db/redis"
	"github.com/furnilabs/furnireco/internal/domain"
	productrepo "github.com/furnilabs/furnireco/internal/repository/product"
	analyticsuc "github.com/furnilabs/furnireco/internal/usecase/analytics"
	ingestuc "github.com/furnilabs/furnireco/internal/usecase/ingest"
	recommenduc "github.com/furnilabs/furnireco/internal/usecase/recommend"
)

const defaultReadinessTimeout = 10 * time.Second

// ErrNoResults reports a query that matched nothing, distinct from a failure.
var ErrNoResults = errors.New("furnireco: no results found")

// Record is one catalog row handed to Ingest. Missing fields are replaced by
// a placeholder before embedding, so partial records are fine.
type Record struct {
	ID          string
	Title       string
	Description string
	Brand       string
	Price       string
	Material    string
	Color       string
	Categories  string
}

// Match is one recommendation hit in ranking order.
type Match struct {
	ID            string
	Score         float64
	Title         string
	Brand         string
	Price         string
	Material      string
	Color         string
	Categories    string
	AIDescription string
}

// IngestReport summarizes an Ingest call.
type IngestReport struct {
	Indexed int
	Skipped int
	Batches int
	Errors  []error
}

// Client is the furnireco SDK entry point.
type Client struct {
	store     *dbRedis.Store
	repo      *productrepo.Repo
	recommend *recommenduc.Service
	ingest    *ingestuc.Service
	logger    *zap.Logger
}

// New creates a Client and connects to the database. An embedder is required
// for Ingest and Recommend; without one those calls fail at use, not here.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, o := range opts {
		o(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("furnireco: create store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("furnireco: database not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store *dbRedis.Store, cfg *clientConfig) *Client {
	repo := productrepo.New(store, cfg.indexName, cfg.dimensions)
	if cfg.hnswM > 0 || cfg.hnswEFConstruct > 0 {
		repo = repo.WithHNSW(productrepo.HNSWConfig{
			M:           cfg.hnswM,
			EFConstruct: cfg.hnswEFConstruct,
		})
	}

	var emb domain.Embedder = noopEmbedder{}
	if cfg.embedder != nil {
		emb = &embedderAdapter{inner: cfg.embedder}
	}

	// Generator has the same method set as the internal contract; pass it
	// through only when set so the service sees a true nil interface.
	var gen recommenduc.Generator
	if cfg.generator != nil {
		gen = cfg.generator
	}

	ingestSvc := ingestuc.New(repo, emb, cfg.logger)
	if cfg.batchSize > 0 {
		ingestSvc = ingestSvc.WithBatchSize(cfg.batchSize)
	}

	return &Client{
		store:     store,
		repo:      repo,
		recommend: recommenduc.New(repo, emb, gen, cfg.logger),
		ingest:    ingestSvc,
		logger:    cfg.logger,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// EnsureIndex creates the product index if it does not exist yet.
func (c *Client) EnsureIndex(ctx context.Context) error {
	return c.repo.EnsureIndex(ctx)
}

// Ingest embeds the records and upserts them into the index in batches.
// Bad rows are skipped and reported, never aborting the run.
func (c *Client) Ingest(ctx context.Context, records []Record) (IngestReport, error) {
	domRecords := make([]domain.CatalogRecord, len(records))
	for i, r := range records {
		domRecords[i] = toDomainRecord(r)
	}

	report, err := c.ingest.Run(ctx, domRecords)
	if err != nil {
		return IngestReport{}, err
	}

	out := IngestReport{
		Indexed: report.Indexed,
		Skipped: report.Skipped,
		Batches: report.Batches,
	}
	for _, re := range report.Errors {
		out.Errors = append(out.Errors, re)
	}
	return out, nil
}

// Recommend returns the topK most similar products for the query, in ranking
// order. A query matching nothing returns ErrNoResults.
func (c *Client) Recommend(ctx context.Context, query string, topK int) ([]Match, error) {
	resp, err := c.recommend.Recommend(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	if resp.NoResults {
		return nil, ErrNoResults
	}

	matches := make([]Match, len(resp.Results))
	for i, m := range resp.Results {
		matches[i] = fromDomainMatch(m)
	}
	return matches, nil
}

// Analyze computes catalog statistics over the given records without touching
// the index. Pure and deterministic.
func Analyze(records []Record) analyticsuc.Report {
	domRecords := make([]domain.CatalogRecord, len(records))
	for i, r := range records {
		domRecords[i] = toDomainRecord(r)
	}
	return analyticsuc.Aggregate(domRecords)
}

func toDomainRecord(r Record) domain.CatalogRecord {
	return domain.CatalogRecord{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Brand:       r.Brand,
		Price:       domain.ParsePrice(r.Price),
		Material:    r.Material,
		Color:       r.Color,
		Categories:  r.Categories,
	}
}

func fromDomainMatch(m domain.Match) Match {
	return Match{
		ID:            m.ID,
		Score:         m.Score,
		Title:         m.Title,
		Brand:         m.Brand,
		Price:         m.Price,
		Material:      m.Material,
		Color:         m.Color,
		Categories:    m.Categories,
		AIDescription: m.AIDescription,
	}
}

// embedderAdapter wraps the public Embedder to satisfy internal contracts.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder returns an error on Embed call (used when no embedder configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"furnireco: embedder not configured (use WithEmbedder)",
	)
}
