package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/furnilabs/furnireco/internal/domain"
)

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

func TestRead_MapsColumnsByHeader(t *testing.T) {
	path := writeDataset(t, `uniq_id,title,description,categories,material,color,brand,price,extra
p1,Oak Table,Solid oak,"['Tables', 'Dining']",Oak,Brown,Woodly,"$1,250.00",ignored
`)

	records, err := NewReader(path, zap.NewNop()).Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}

	rec := records[0]
	if rec.ID != "p1" || rec.Title != "Oak Table" || rec.Brand != "Woodly" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Categories != "['Tables', 'Dining']" {
		t.Errorf("categories = %q", rec.Categories)
	}
	if !rec.Price.Known || rec.Price.Value != 1250 {
		t.Errorf("price = %+v, want parsed 1250", rec.Price)
	}
	if rec.Price.Raw != "$1,250.00" {
		t.Errorf("price raw = %q", rec.Price.Raw)
	}
}

func TestRead_MissingCellsStayEmpty(t *testing.T) {
	path := writeDataset(t, `uniq_id,title,brand,price
p1,Lamp,,
`)

	records, err := NewReader(path, zap.NewNop()).Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	rec := records[0]
	if rec.Brand != "" || rec.Price.Raw != "" {
		t.Errorf("missing cells should stay empty before normalization: %+v", rec)
	}
	// normalization fills placeholders for the index metadata
	if meta := rec.Metadata(); meta["brand"] != domain.Placeholder {
		t.Errorf("brand metadata = %q", meta["brand"])
	}
}

func TestRead_SkipsRowsWithoutID(t *testing.T) {
	path := writeDataset(t, `uniq_id,title
p1,Chair
,NoID
p2,Sofa
`)

	records, err := NewReader(path, zap.NewNop()).Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2 (row without id skipped)", len(records))
	}
	if records[0].ID != "p1" || records[1].ID != "p2" {
		t.Errorf("records = %+v", records)
	}
}

func TestRead_MissingIDColumnFails(t *testing.T) {
	path := writeDataset(t, "title,brand\nChair,Acme\n")

	_, err := NewReader(path, zap.NewNop()).Read()
	if err == nil {
		t.Fatal("expected error for dataset without uniq_id column")
	}
}
