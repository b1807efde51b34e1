// Package recommend implements the read path: the query text is embedded,
// the index returns the top-k similar products, and matches are optionally
// enriched with generated descriptions.
package recommend

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/furnilabs/furnireco/internal/domain"
)

// Service handles product recommendations.
type Service struct {
	search Searcher
	embed  Embedder
	gen    Generator
	logger *zap.Logger
}

// New creates a recommendation service. gen may be nil, in which case
// matches are returned without generated descriptions.
func New(search Searcher, embed Embedder, gen Generator, logger *zap.Logger) *Service {
	return &Service{search: search, embed: embed, gen: gen, logger: logger}
}

// Response is the outcome of a recommendation query. NoResults distinguishes
// an empty index answer from an error.
type Response struct {
	Query     string
	Results   []domain.Match
	NoResults bool
}

// Recommend runs the full read path. The query must be non-empty after
// trimming; topK defaults when not positive. Matches keep the ranking order
// returned by the store, scores rounded to 3 decimals.
func (s *Service) Recommend(ctx context.Context, query string, topK int) (Response, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return Response{}, domain.ErrEmptyQuery
	}
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	emb, err := s.embed.Embed(ctx, q)
	if err != nil {
		return Response{}, fmt.Errorf("vectorize query: %w", err)
	}

	matches, err := s.search.Query(ctx, emb.Embedding, topK)
	if err != nil {
		return Response{}, fmt.Errorf("query index: %w", err)
	}
	if len(matches) == 0 {
		return Response{Query: q, NoResults: true}, nil
	}

	for i := range matches {
		matches[i].Score = roundScore(matches[i].Score)
	}

	if s.gen != nil {
		s.enrich(ctx, matches)
	}

	return Response{Query: q, Results: matches}, nil
}

// enrich adds a generated description to each match, best-effort: a failure
// on one match is logged and skipped without touching the others.
func (s *Service) enrich(ctx context.Context, matches []domain.Match) {
	for i := range matches {
		text, err := s.gen.Generate(ctx, promoPrompt(matches[i]))
		if err != nil {
			s.logger.Warn("Description generation failed",
				zap.String("id", matches[i].ID),
				zap.Error(err),
			)
			continue
		}
		matches[i].AIDescription = text
	}
}

func promoPrompt(m domain.Match) string {
	return fmt.Sprintf(
		"Write a short, appealing product description for a %s made of %s by %s.",
		m.Title, m.Material, m.Brand,
	)
}

func roundScore(score float64) float64 {
	return math.Round(score*1000) / 1000
}
