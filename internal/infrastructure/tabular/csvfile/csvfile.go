package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/mlucchetti/rfdrelax/internal/core/domain"
	"github.com/mlucchetti/rfdrelax/internal/infrastructure/tabular"
)

// CatalogSource reads the dependency catalog from a CSV file. Each load
// re-reads the file; callers decide how long to hold the result.
type CatalogSource struct {
	path string
}

func NewCatalogSource(path string) *CatalogSource {
	return &CatalogSource{path: path}
}

func (s *CatalogSource) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	header, rows, err := readAll(ctx, s.path)
	if err != nil {
		return domain.Catalog{}, err
	}
	catalog, err := tabular.BuildCatalog(header, rows)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("catalog %s: %w", s.path, err)
	}
	return catalog, nil
}

// DatasetSource reads the search-space table from a CSV file.
type DatasetSource struct {
	path string
}

func NewDatasetSource(path string) *DatasetSource {
	return &DatasetSource{path: path}
}

func (s *DatasetSource) LoadDataset(ctx context.Context) (domain.Dataset, error) {
	header, rows, err := readAll(ctx, s.path)
	if err != nil {
		return domain.Dataset{}, err
	}
	dataset, err := tabular.BuildDataset(header, rows)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("dataset %s: %w", s.path, err)
	}
	return dataset, nil
}

func readAll(ctx context.Context, path string) ([]string, [][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, domain.WrapError(domain.ErrInvalidInput, "read table",
			fmt.Errorf("%s has no header row", path))
	}
	return records[0], records[1:], nil
}
