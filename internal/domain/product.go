package domain

import "strings"

// Placeholder substitutes any missing catalog field. Embedding text and stored
// metadata always carry it instead of an empty value, so vectors keep the same
// shape across records with missing fields.
const Placeholder = "Not specified"

// KeyPrefix namespaces all keys written by this service.
const KeyPrefix = "furnireco:"

const (
	// DefaultDimensions matches the embedding model output size.
	DefaultDimensions = 384
	// DefaultTopK is the result count when the request omits top_k.
	DefaultTopK = 5
	// DefaultBatchSize is the ingestion upsert batch size.
	DefaultBatchSize = 50
)

// CatalogRecord is one row of the product dataset. Field values are kept as
// read from the source; use Normalized to apply placeholders.
type CatalogRecord struct {
	ID          string
	Title       string
	Description string
	Brand       string
	Price       Price
	Material    string
	Color       string
	Categories  string
}

// Normalized returns a copy with every empty display field replaced by
// Placeholder.
func (r CatalogRecord) Normalized() CatalogRecord {
	n := r
	n.Title = orPlaceholder(r.Title)
	n.Description = orPlaceholder(r.Description)
	n.Brand = orPlaceholder(r.Brand)
	n.Material = orPlaceholder(r.Material)
	n.Color = orPlaceholder(r.Color)
	n.Categories = orPlaceholder(r.Categories)
	if n.Price.Raw == "" {
		n.Price.Raw = Placeholder
	}
	return n
}

// EmbeddingText composes the canonical text vectorized for this record:
// title, description, categories, material and color joined by single spaces.
// Missing fields contribute the placeholder, never an empty string.
func (r CatalogRecord) EmbeddingText() string {
	n := r.Normalized()
	return strings.Join([]string{n.Title, n.Description, n.Categories, n.Material, n.Color}, " ")
}

// Metadata builds the denormalized display-field map stored next to the
// vector. All values are strings; price stays raw, consumers decide how to
// interpret it.
func (r CatalogRecord) Metadata() map[string]string {
	n := r.Normalized()
	return map[string]string{
		"title":      n.Title,
		"brand":      n.Brand,
		"price":      n.Price.Raw,
		"material":   n.Material,
		"color":      n.Color,
		"categories": n.Categories,
	}
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}

// IndexEntry is the long-lived queryable state: one vector plus its display
// metadata, keyed by the record id. Upsert by the same id replaces both.
type IndexEntry struct {
	ID       string
	Vector   []float32
	Metadata map[string]string
}

// Match is a single query hit in ranking order. Score is cosine similarity
// (higher = more similar). Display fields default to Placeholder when the
// stored metadata lacks them.
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
