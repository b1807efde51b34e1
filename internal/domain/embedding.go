package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
// An empty string is valid input and still produces a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the
// decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Generator produces a short marketing description from a templated prompt.
// Implementations wrap an external text-generation model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
