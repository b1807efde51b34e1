package furnireco

import (
	"context"
	"strings"
	"testing"

	"github.com/furnilabs/furnireco/internal/domain"
)

func TestClientConfig_Validate(t *testing.T) {
	cfg := newClientConfig()
	if err := cfg.validate(); err == nil {
		t.Fatal("expected error without a database address")
	}

	WithRedis("localhost:6379")(cfg)
	if err := cfg.validate(); err != nil {
		t.Fatalf("unexpected error with an address: %v", err)
	}

	WithDimensions(-1)(cfg)
	if err := cfg.validate(); err == nil {
		t.Fatal("expected error for non-positive dimensions")
	}
}

func TestClientConfig_Defaults(t *testing.T) {
	cfg := newClientConfig()
	if cfg.indexName != "furniture-products" {
		t.Errorf("index name = %q", cfg.indexName)
	}
	if cfg.dimensions != domain.DefaultDimensions {
		t.Errorf("dimensions = %d, want %d", cfg.dimensions, domain.DefaultDimensions)
	}
	if cfg.logger == nil {
		t.Error("default logger must not be nil")
	}
}

func TestToDomainRecord_ParsesPrice(t *testing.T) {
	rec := toDomainRecord(Record{ID: "a", Title: "Sofa", Price: "$1,250.00"})
	if !rec.Price.Known || rec.Price.Value != 1250 {
		t.Errorf("price = %+v, want parsed 1250", rec.Price)
	}
	if rec.Price.Raw != "$1,250.00" {
		t.Errorf("raw price = %q, must stay untouched", rec.Price.Raw)
	}
}

func TestNoopEmbedder(t *testing.T) {
	_, err := noopEmbedder{}.Embed(context.Background(), "text")
	if err == nil || !strings.Contains(err.Error(), "embedder not configured") {
		t.Errorf("error = %v, want the configuration hint", err)
	}
}

func TestAnalyze(t *testing.T) {
	report := Analyze([]Record{
		{Brand: "Woodly", Price: "$1,250.00", Categories: "['Sofas', 'Living Room']"},
		{Brand: "Woodly", Price: "80", Categories: "Sofas"},
	})

	if len(report.BrandCounts) != 1 || report.BrandCounts[0].Value != 2 {
		t.Errorf("brand counts = %v", report.BrandCounts)
	}
	if len(report.PriceBins) != 6 {
		t.Fatalf("price bins = %d, want all 6", len(report.PriceBins))
	}
	if report.CategoryCounts[0].Name != "Sofas" || report.CategoryCounts[0].Value != 2 {
		t.Errorf("category counts = %v", report.CategoryCounts)
	}
}
