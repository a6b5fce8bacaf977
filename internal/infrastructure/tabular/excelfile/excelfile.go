package excelfile

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/mlucchetti/rfdrelax/internal/core/domain"
	"github.com/mlucchetti/rfdrelax/internal/infrastructure/tabular"
)

// CatalogSource reads the dependency catalog from one sheet of an XLSX
// workbook. An empty sheet name selects the workbook's first sheet.
type CatalogSource struct {
	path  string
	sheet string
}

func NewCatalogSource(path, sheet string) *CatalogSource {
	return &CatalogSource{path: path, sheet: sheet}
}

func (s *CatalogSource) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	header, rows, err := readSheet(ctx, s.path, s.sheet)
	if err != nil {
		return domain.Catalog{}, err
	}
	catalog, err := tabular.BuildCatalog(header, rows)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("catalog %s: %w", s.path, err)
	}
	return catalog, nil
}

// DatasetSource reads the search-space table from one sheet of an XLSX
// workbook.
type DatasetSource struct {
	path  string
	sheet string
}

func NewDatasetSource(path, sheet string) *DatasetSource {
	return &DatasetSource{path: path, sheet: sheet}
}

func (s *DatasetSource) LoadDataset(ctx context.Context) (domain.Dataset, error) {
	header, rows, err := readSheet(ctx, s.path, s.sheet)
	if err != nil {
		return domain.Dataset{}, err
	}
	dataset, err := tabular.BuildDataset(header, rows)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("dataset %s: %w", s.path, err)
	}
	return dataset, nil
}

func readSheet(ctx context.Context, path, sheet string) ([]string, [][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer book.Close()

	if sheet == "" {
		sheet = book.GetSheetName(0)
	}
	rows, err := book.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q of %s: %w", sheet, path, err)
	}
	if len(rows) == 0 {
		return nil, nil, domain.WrapError(domain.ErrInvalidInput, "read table",
			fmt.Errorf("sheet %q of %s has no header row", sheet, path))
	}
	return rows[0], rows[1:], nil
}
