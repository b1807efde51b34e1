package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/furnilabs/furnireco/internal/domain"
)

type fakeSource struct {
	records []domain.CatalogRecord
	err     error
}

func (f *fakeSource) Read() ([]domain.CatalogRecord, error) {
	return f.records, f.err
}

func rec(brand, price, categories string) domain.CatalogRecord {
	return domain.CatalogRecord{
		Brand:      brand,
		Price:      domain.ParsePrice(price),
		Categories: categories,
	}
}

func TestAggregate_PriceBinning(t *testing.T) {
	records := []domain.CatalogRecord{
		rec("", "$1,250.00", ""),
		rec("", "99.99", ""),
		rec("", "100", ""),
		rec("", "100.01", ""),
		rec("", "0", ""),     // at the open lower edge, outside every bin
		rec("", "0.00", ""),  // likewise
		rec("", "60000", ""), // above the last edge
		rec("", "", ""),      // missing price
		rec("", "N/A", ""),   // strips to nothing
		rec("", "50000", ""), // inclusive upper edge of the last bin
	}

	report := Aggregate(records)

	want := Counts{
		{Name: "(0, 100]", Value: 2},
		{Name: "(100, 500]", Value: 1},
		{Name: "(500, 1000]", Value: 0},
		{Name: "(1000, 5000]", Value: 1},
		{Name: "(5000, 10000]", Value: 0},
		{Name: "(10000, 50000]", Value: 1},
	}
	if !reflect.DeepEqual(report.PriceBins, want) {
		t.Errorf("price bins:\ngot:  %v\nwant: %v", report.PriceBins, want)
	}
}

func TestAggregate_CategoriesFromSerializedList(t *testing.T) {
	records := []domain.CatalogRecord{
		rec("", "", "['Sofas', 'Living Room']"),
		rec("", "", "Sofas"),
		rec("", "", "  "),
	}

	report := Aggregate(records)

	want := Counts{
		{Name: "Sofas", Value: 2},
		{Name: "Living Room", Value: 1},
		{Name: UnknownLabel, Value: 1},
	}
	if !reflect.DeepEqual(report.CategoryCounts, want) {
		t.Errorf("category counts:\ngot:  %v\nwant: %v", report.CategoryCounts, want)
	}
}

func TestSplitCategories(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"['A', 'B']", []string{"A", "B"}},
		{`["A","B"]`, []string{"A", "B"}},
		{"A, B , ,C", []string{"A", "B", "C"}},
		{"Plain Text", []string{"Plain Text"}},
		{"[]", nil},
		{"", nil},
	}
	for _, tt := range tests {
		if got := SplitCategories(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitCategories(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAggregate_TopNCapsAndTiebreak(t *testing.T) {
	var records []domain.CatalogRecord
	for i := 0; i < 12; i++ {
		brand := fmt.Sprintf("brand-%02d", i)
		for j := 0; j <= i; j++ {
			records = append(records, rec(brand, "", fmt.Sprintf("cat-%02d", i)))
		}
	}
	// two brands tied at one occurrence each; Alpha must win the tiebreak
	records = append(records, rec("Zeta", "", "z"), rec("Alpha", "", "a"))

	report := Aggregate(records)

	if len(report.BrandCounts) != 10 {
		t.Errorf("brand counts = %d entries, want cap of 10", len(report.BrandCounts))
	}
	if len(report.CategoryCounts) != 8 {
		t.Errorf("category counts = %d entries, want cap of 8", len(report.CategoryCounts))
	}
	for i := 1; i < len(report.BrandCounts); i++ {
		if report.BrandCounts[i].Value > report.BrandCounts[i-1].Value {
			t.Fatalf("brand counts not descending: %v", report.BrandCounts)
		}
	}

	ties := topCounts(map[string]int{"Zeta": 1, "Alpha": 1}, 10)
	if ties[0].Name != "Alpha" {
		t.Errorf("tiebreak order = %v, want Alpha first", ties)
	}
}

func TestAggregate_UnknownBrand(t *testing.T) {
	report := Aggregate([]domain.CatalogRecord{
		rec("", "", ""),
		rec("  ", "", ""),
		rec("Woodly", "", ""),
	})

	want := Counts{
		{Name: UnknownLabel, Value: 2},
		{Name: "Woodly", Value: 1},
	}
	if !reflect.DeepEqual(report.BrandCounts, want) {
		t.Errorf("brand counts:\ngot:  %v\nwant: %v", report.BrandCounts, want)
	}
}

func TestCounts_MarshalPreservesOrder(t *testing.T) {
	c := Counts{{Name: "(0, 100]", Value: 2}, {Name: "(100, 500]", Value: 0}}
	got, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"(0, 100]":2,"(100, 500]":0}`
	if string(got) != want {
		t.Errorf("marshal = %s, want %s", got, want)
	}
}

func TestReport_SourceFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("dataset missing")}
	svc := New(src, zap.NewNop())

	_, err := svc.Report(context.Background())
	if err == nil {
		t.Fatal("expected an error when the source fails")
	}
}

func TestReport_EmptyCatalog(t *testing.T) {
	svc := New(&fakeSource{}, zap.NewNop())

	report, err := svc.Report(context.Background())
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(report.BrandCounts) != 0 {
		t.Errorf("brand counts = %v, want none", report.BrandCounts)
	}
	if len(report.PriceBins) != 6 {
		t.Errorf("price bins = %d, want all 6 bins present at zero", len(report.PriceBins))
	}
}
