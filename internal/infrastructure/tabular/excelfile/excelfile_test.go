package excelfile

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/mlucchetti/rfdrelax/internal/core/domain"
)

func writeWorkbook(t *testing.T, name string, rows [][]any) string {
	t.Helper()
	book := excelize.NewFile()
	defer book.Close()

	sheet := book.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := book.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row %d: %v", i+1, err)
		}
	}
	path := filepath.Join(t.TempDir(), name)
	if err := book.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestLoadCatalogFromWorkbook(t *testing.T) {
	path := writeWorkbook(t, "rfds.xlsx", [][]any{
		{"RHS", "age", "city", "price"},
		{"price", 2, 1, 10},
		{"price", nil, 1.5, 5},
	})
	src := NewCatalogSource(path, "")

	catalog, err := src.LoadCatalog(context.Background())
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if catalog.Len() != 2 {
		t.Fatalf("expected 2 dependencies, got %d", catalog.Len())
	}
	second := catalog.RFDs()[1]
	if _, ok := second.Threshold("age"); ok {
		t.Fatalf("expected the blank age cell to mean no bound")
	}
	if tv, _ := second.Threshold("city"); tv != 1.5 {
		t.Fatalf("expected city threshold 1.5, got %v", tv)
	}
}

func TestLoadDatasetFromWorkbook(t *testing.T) {
	path := writeWorkbook(t, "data.xlsx", [][]any{
		{"age", "city", "price"},
		{28, "Roma", 120},
		{31, "Rome", 100},
	})
	src := NewDatasetSource(path, "")

	dataset, err := src.LoadDataset(context.Background())
	if err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}
	if dataset.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", dataset.Len())
	}
	ages, err := dataset.Column("age")
	if err != nil {
		t.Fatalf("Column() error = %v", err)
	}
	if ages[0] != domain.Number(28) {
		t.Fatalf("expected Number(28), got %#v", ages[0])
	}
}

func TestLoadCatalogUnknownSheet(t *testing.T) {
	path := writeWorkbook(t, "rfds.xlsx", [][]any{
		{"RHS", "age", "price"},
		{"price", 2, 10},
	})
	src := NewCatalogSource(path, "NoSuchSheet")

	if _, err := src.LoadCatalog(context.Background()); err == nil {
		t.Fatalf("expected error for unknown sheet")
	}
}
