package tabular

import (
	"testing"

	"github.com/mlucchetti/rfdrelax/internal/core/domain"
)

func TestBuildCatalogParsesThresholdsAndBlanks(t *testing.T) {
	header := []string{"RHS", "age", "city", "price"}
	rows := [][]string{
		{"price", "2", "1", "10"},
		{"price", "", "1.5", "5"},
	}

	catalog, err := BuildCatalog(header, rows)
	if err != nil {
		t.Fatalf("BuildCatalog() error = %v", err)
	}
	if catalog.Len() != 2 {
		t.Fatalf("expected 2 dependencies, got %d", catalog.Len())
	}
	attrs := catalog.Attributes()
	if len(attrs) != 3 || attrs[0] != "age" || attrs[2] != "price" {
		t.Fatalf("expected schema without the RHS column, got %v", attrs)
	}
	second := catalog.RFDs()[1]
	if _, ok := second.Threshold("age"); ok {
		t.Fatalf("expected the blank age cell to mean no bound")
	}
	if tv, _ := second.Threshold("city"); tv != 1.5 {
		t.Fatalf("expected city threshold 1.5, got %v", tv)
	}
}

func TestBuildCatalogRequiresRHSColumn(t *testing.T) {
	_, err := BuildCatalog([]string{"age", "price"}, nil)
	if !domain.IsKind(err, domain.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch without RHS column, got %v", err)
	}
}

func TestBuildCatalogRejectsNonNumericThreshold(t *testing.T) {
	header := []string{"RHS", "age", "price"}
	rows := [][]string{{"price", "two", "10"}}

	_, err := BuildCatalog(header, rows)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for non-numeric threshold, got %v", err)
	}
}

func TestBuildCatalogRejectsMissingRHSThreshold(t *testing.T) {
	header := []string{"RHS", "age", "price"}
	rows := [][]string{{"price", "2", ""}}

	_, err := BuildCatalog(header, rows)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput when the RHS has no threshold, got %v", err)
	}
}

func TestBuildCatalogRejectsEmptyRHSCell(t *testing.T) {
	header := []string{"RHS", "age", "price"}
	rows := [][]string{{"", "2", "10"}}

	_, err := BuildCatalog(header, rows)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty RHS cell, got %v", err)
	}
}

func TestBuildDatasetClassifiesCells(t *testing.T) {
	header := []string{"age", "city", "score"}
	rows := [][]string{
		{"30", "Rome", "1.5"},
		{"28", "Roma", ""},
		{"40", "Turin"},
	}

	dataset, err := BuildDataset(header, rows)
	if err != nil {
		t.Fatalf("BuildDataset() error = %v", err)
	}
	if dataset.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", dataset.Len())
	}
	ages, err := dataset.Column("age")
	if err != nil {
		t.Fatalf("Column() error = %v", err)
	}
	if ages[0] != domain.Number(30) {
		t.Fatalf("expected Number(30), got %#v", ages[0])
	}
	scores, _ := dataset.Column("score")
	if scores[0] != domain.Decimal(1.5) {
		t.Fatalf("expected Decimal(1.5), got %#v", scores[0])
	}
	if scores[1] != (domain.Null{}) || scores[2] != (domain.Null{}) {
		t.Fatalf("expected blank and short-row cells to be null, got %#v, %#v", scores[1], scores[2])
	}
}
