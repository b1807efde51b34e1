package health

import "context"

// StorePinger checks that the vector store answers.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks that the embedding provider answers.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
