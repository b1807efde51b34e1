// Package analytics computes descriptive catalog statistics: brand frequency,
// a fixed-bin price histogram, and category frequency. It reads the catalog
// source directly and never touches the vector index.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/furnilabs/furnireco/internal/domain"
)

const (
	// UnknownLabel stands in for a missing brand or category.
	UnknownLabel = "Unknown"

	topBrands     = 10
	topCategories = 8
)

// priceEdges are the histogram boundaries. A price p falls into bin i when
// priceEdges[i] < p <= priceEdges[i+1]; values at or below zero and values
// above the last edge are not counted.
var priceEdges = []float64{0, 100, 500, 1000, 5000, 10000, 50000}

// Count is one labeled tally.
type Count struct {
	Name  string
	Value int
}

// Counts is an ordered set of tallies that marshals as a JSON object, keeping
// its order on the wire.
type Counts []Count

func (c Counts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", e.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Report is the analytics payload.
type Report struct {
	BrandCounts    Counts `json:"brand_counts"`
	PriceBins      Counts `json:"price_bins"`
	CategoryCounts Counts `json:"category_counts"`
}

// Source supplies the catalog records to aggregate over.
type Source interface {
	Read() ([]domain.CatalogRecord, error)
}

// Service serves on-demand catalog analytics.
type Service struct {
	source Source
	logger *zap.Logger
}

// New creates an analytics service over the given catalog source.
func New(source Source, logger *zap.Logger) *Service {
	return &Service{source: source, logger: logger}
}

// Report reads the catalog and aggregates it.
func (s *Service) Report(ctx context.Context) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	records, err := s.source.Read()
	if err != nil {
		return Report{}, fmt.Errorf("read catalog: %w", err)
	}

	s.logger.Debug("Aggregating catalog", zap.Int("records", len(records)))
	return Aggregate(records), nil
}

// Aggregate computes the full report over the records. Pure and
// deterministic: counts sort descending, ties break on name ascending.
func Aggregate(records []domain.CatalogRecord) Report {
	brands := make(map[string]int)
	categories := make(map[string]int)
	bins := make([]int, len(priceEdges)-1)

	for _, rec := range records {
		brand := strings.TrimSpace(rec.Brand)
		if brand == "" {
			brand = UnknownLabel
		}
		brands[brand]++

		if rec.Price.Known {
			if i := binIndex(rec.Price.Value); i >= 0 {
				bins[i]++
			}
		}

		cats := SplitCategories(rec.Categories)
		if len(cats) == 0 {
			cats = []string{UnknownLabel}
		}
		for _, c := range cats {
			categories[c]++
		}
	}

	return Report{
		BrandCounts:    topCounts(brands, topBrands),
		PriceBins:      binCounts(bins),
		CategoryCounts: topCounts(categories, topCategories),
	}
}

// SplitCategories parses a category cell that may be a serialized list such
// as "['Sofas', 'Living Room']": brackets and quotes are stripped, the rest
// split on commas, trimmed, empties dropped.
func SplitCategories(raw string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', '\'', '"':
			return -1
		}
		return r
	}, raw)

	var out []string
	for _, part := range strings.Split(cleaned, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// binIndex returns the histogram bin holding v, or -1 when v falls outside
// every bin.
func binIndex(v float64) int {
	for i := 0; i < len(priceEdges)-1; i++ {
		if v > priceEdges[i] && v <= priceEdges[i+1] {
			return i
		}
	}
	return -1
}

// binLabel renders an edge pair as an open-low, closed-high interval.
func binLabel(i int) string {
	return fmt.Sprintf("(%d, %d]", int(priceEdges[i]), int(priceEdges[i+1]))
}

// binCounts emits every bin in edge order, zeros included, so the histogram
// shape is stable across datasets.
func binCounts(bins []int) Counts {
	out := make(Counts, len(bins))
	for i, n := range bins {
		out[i] = Count{Name: binLabel(i), Value: n}
	}
	return out
}

// topCounts keeps the limit highest tallies, descending by count with name
// ascending as the tiebreak.
func topCounts(m map[string]int, limit int) Counts {
	out := make(Counts, 0, len(m))
	for name, n := range m {
		out = append(out, Count{Name: name, Value: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
