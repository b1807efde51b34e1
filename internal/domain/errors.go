package domain

import "errors"

var (
	// ErrEmptyQuery signals a query that is empty after trimming. Rejected
	// before any external call is made.
	ErrEmptyQuery = errors.New("empty query")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrStoreUnavailable signals a vector store transport or command failure.
	ErrStoreUnavailable = errors.New("vector store unavailable")
)
