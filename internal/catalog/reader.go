// Package catalog loads the product dataset from a CSV file. The dataset is
// a plain tabular source shared by ingestion and analytics; rows are mapped
// by header name so extra columns are ignored.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/furnilabs/furnireco/internal/domain"
)

// column names the reader looks up in the header.
const (
	colID          = "uniq_id"
	colTitle       = "title"
	colDescription = "description"
	colCategories  = "categories"
	colMaterial    = "material"
	colColor       = "color"
	colBrand       = "brand"
	colPrice       = "price"
)

// Reader reads catalog records from a CSV file. Malformed rows are logged
// with their index and skipped; one bad row never aborts the load.
type Reader struct {
	path   string
	logger *zap.Logger
}

// NewReader creates a catalog reader for the given CSV path.
func NewReader(path string, logger *zap.Logger) *Reader {
	return &Reader{path: path, logger: logger}
}

// Read loads all catalog records. Field values are trimmed; missing cells
// stay empty and are filled with the placeholder downstream.
func (r *Reader) Read() ([]domain.CatalogRecord, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", r.path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1 // tolerate ragged rows, validated per-row below

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}
	cols := indexColumns(header)
	if _, ok := cols[colID]; !ok {
		return nil, fmt.Errorf("dataset %s has no %q column", r.path, colID)
	}

	var records []domain.CatalogRecord
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			r.logger.Warn("Skipping malformed dataset row", zap.Int("row", row), zap.Error(err))
			continue
		}

		rec, err := parseRecord(fields, cols)
		if err != nil {
			r.logger.Warn("Skipping dataset row", zap.Int("row", row), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	return cols
}

func parseRecord(fields []string, cols map[string]int) (domain.CatalogRecord, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	id := get(colID)
	if id == "" {
		return domain.CatalogRecord{}, errors.New("missing uniq_id")
	}

	return domain.CatalogRecord{
		ID:          id,
		Title:       get(colTitle),
		Description: get(colDescription),
		Brand:       get(colBrand),
		Price:       domain.ParsePrice(get(colPrice)),
		Material:    get(colMaterial),
		Color:       get(colColor),
		Categories:  get(colCategories),
	}, nil
}
