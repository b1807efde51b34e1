package furnireco

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/furnilabs/furnireco/internal/domain"
)

// EmbeddingResult is an embedding plus its token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder maps text to a fixed-dimension vector. Implementations must be
// deterministic for a fixed model version and safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Generator produces a short marketing description from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs           []string
	password        string
	embedder        Embedder
	generator       Generator
	indexName       string
	dimensions      int
	hnswM           int
	hnswEFConstruct int
	batchSize       int
	logger          *zap.Logger
}

func newClientConfig() *clientConfig {
	return &clientConfig{
		indexName:  "furniture-products",
		dimensions: domain.DefaultDimensions,
		logger:     zap.NewNop(),
	}
}

func (c *clientConfig) validate() error {
	if len(c.addrs) == 0 {
		return errors.New("furnireco: database address required (use WithRedis)")
	}
	if c.dimensions <= 0 {
		return errors.New("furnireco: dimensions must be positive")
	}
	return nil
}

// WithRedis sets the Redis addresses to connect to.
func WithRedis(addrs ...string) Option {
	return func(c *clientConfig) { c.addrs = addrs }
}

// WithPassword sets the database password.
func WithPassword(password string) Option {
	return func(c *clientConfig) { c.password = password }
}

// WithEmbedder sets the embedding provider. Required for Ingest and Recommend.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) { c.embedder = e }
}

// WithGenerator enables AI description enrichment on Recommend results.
func WithGenerator(g Generator) Option {
	return func(c *clientConfig) { c.generator = g }
}

// WithIndexName overrides the product index name.
func WithIndexName(name string) Option {
	return func(c *clientConfig) { c.indexName = name }
}

// WithDimensions sets the embedding dimension the index is created with.
// Must match the embedder's output size.
func WithDimensions(d int) Option {
	return func(c *clientConfig) { c.dimensions = d }
}

// WithHNSW overrides HNSW build parameters for index creation.
func WithHNSW(m, efConstruct int) Option {
	return func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	}
}

// WithBatchSize overrides the ingestion upsert batch size.
func WithBatchSize(n int) Option {
	return func(c *clientConfig) { c.batchSize = n }
}

// WithLogger sets the logger; a no-op logger is used by default.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}
