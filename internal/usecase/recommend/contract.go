package recommend

import (
	"context"

	"github.com/furnilabs/furnireco/internal/domain"
)

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Searcher runs a top-k similarity query against the product index.
type Searcher interface {
	Query(ctx context.Context, vector []float32, topK int) ([]domain.Match, error)
}

// Generator produces a short marketing description from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
